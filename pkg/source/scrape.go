package source

import (
	"bytes"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/flanksource/commons/logger"
	"github.com/google/cel-go/cel"
	"github.com/samber/lo"
	"golang.org/x/net/html"
)

// archiveLinkPattern matches public release archive links, e.g.
// https://github.com/.../ghidra_11.3.1_PUBLIC_20250219.zip
var archiveLinkPattern = regexp.MustCompile(`https://[^\s"'<>]*_PUBLIC_[^\s"'<>]*\.zip`)

var archiveLinkExact = regexp.MustCompile(`^` + archiveLinkPattern.String() + `$`)

// ScrapeLinks returns every public archive link on an HTML page in document order,
// without duplicates. Relative hrefs are resolved against base. When the page cannot
// be parsed, or no anchor matches, the raw body is searched instead.
func ScrapeLinks(base *url.URL, body []byte) []string {
	log := logger.GetLogger()

	var links []string
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		log.Warnf("Failed to parse download page: %v", err)
	} else {
		var hrefs []string
		var findLinks func(*html.Node)
		findLinks = func(n *html.Node) {
			if n.Type == html.ElementNode && n.Data == "a" {
				for _, attr := range n.Attr {
					if attr.Key == "href" {
						hrefs = append(hrefs, attr.Val)
						break
					}
				}
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				findLinks(c)
			}
		}
		findLinks(doc)

		links = lo.FilterMap(hrefs, func(href string, _ int) (string, bool) {
			resolved := resolveHref(base, href)
			return resolved, archiveLinkExact.MatchString(resolved)
		})
	}

	if len(links) == 0 {
		log.V(2).Infof("No archive anchors found, searching raw page")
		links = archiveLinkPattern.FindAllString(string(body), -1)
	}

	return lo.Uniq(links)
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// LinkFilter is a compiled CEL expression over the variables url and filename
type LinkFilter struct {
	expression string
	program    cel.Program
}

// NewLinkFilter compiles expr; an empty expression yields a nil filter that accepts every link
func NewLinkFilter(expr string) (*LinkFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("url", cel.StringType),
		cel.Variable("filename", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("invalid link_filter %q: %w", expr, issues.Err())
	}
	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("link_filter %q must return a bool, got %s", expr, ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("invalid link_filter %q: %w", expr, err)
	}
	return &LinkFilter{expression: expr, program: program}, nil
}

// Match evaluates the filter for link. A nil filter matches everything.
func (f *LinkFilter) Match(link string) (bool, error) {
	if f == nil {
		return true, nil
	}
	out, _, err := f.program.Eval(map[string]interface{}{
		"url":      link,
		"filename": linkFilename(link),
	})
	if err != nil {
		return false, fmt.Errorf("link_filter %q failed for %s: %w", f.expression, link, err)
	}
	matched, ok := out.Value().(bool)
	return ok && matched, nil
}

func (f *LinkFilter) String() string {
	if f == nil {
		return "true"
	}
	return f.expression
}

func linkFilename(link string) string {
	if u, err := url.Parse(link); err == nil {
		return path.Base(u.Path)
	}
	return path.Base(link)
}
