package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/flanksource/ghidra-install/pkg/version"
)

// tokenEnvVars are checked in order for a GitHub token
var tokenEnvVars = []string{"GITHUB_TOKEN", "GH_TOKEN"}

// ReleaseFinder discovers the latest archive from a release API
type ReleaseFinder interface {
	LatestArchive(ctx context.Context, tool string) (string, error)
}

// GitHubReleases looks up the latest release of owner/repo
type GitHubReleases struct {
	client      *github.Client
	owner       string
	repo        string
	tokenSource string
}

// NewGitHubReleases creates a finder for repo ("owner/name") on top of base,
// authenticated when GITHUB_TOKEN or GH_TOKEN is set
func NewGitHubReleases(repo string, base *http.Client) (*GitHubReleases, error) {
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || owner == "" || name == "" {
		return nil, fmt.Errorf("invalid github repo %q, expected owner/name", repo)
	}

	g := &GitHubReleases{owner: owner, repo: name}
	for _, env := range tokenEnvVars {
		if token := os.Getenv(env); token != "" {
			ctx := context.Background()
			if base != nil {
				ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
			}
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
			g.client = github.NewClient(oauth2.NewClient(ctx, ts))
			g.tokenSource = env
			break
		}
	}
	if g.client == nil {
		g.client = github.NewClient(base)
	}
	return g, nil
}

// WithBaseURL points the client at another API endpoint (GitHub Enterprise, tests)
func (g *GitHubReleases) WithBaseURL(baseURL string) (*GitHubReleases, error) {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url %s: %w", baseURL, err)
	}
	g.client.BaseURL = u
	return g, nil
}

// LatestArchive returns the download URL of the first asset of the latest release whose
// name parses as a public archive for tool
func (g *GitHubReleases) LatestArchive(ctx context.Context, tool string) (string, error) {
	release, _, err := g.client.Repositories.GetLatestRelease(ctx, g.owner, g.repo)
	if err != nil {
		if g.tokenSource == "" {
			return "", fmt.Errorf("failed to get latest release of %s/%s (set GITHUB_TOKEN to avoid rate limits): %w", g.owner, g.repo, err)
		}
		return "", fmt.Errorf("failed to get latest release of %s/%s: %w", g.owner, g.repo, err)
	}

	var names []string
	for _, asset := range release.Assets {
		names = append(names, asset.GetName())
		if version.IsArchiveName(tool, asset.GetName()) && asset.GetBrowserDownloadURL() != "" {
			return asset.GetBrowserDownloadURL(), nil
		}
	}
	return "", fmt.Errorf("release %s of %s/%s has no %s_*_PUBLIC*.zip asset (found: %s)",
		release.GetTagName(), g.owner, g.repo, tool, strings.Join(names, ", "))
}
