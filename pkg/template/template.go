package template

import (
	"fmt"
	"strings"

	"github.com/flanksource/gomplate/v3"
)

// RenderTemplate renders a template string using flanksource/gomplate
func RenderTemplate(templateStr string, data map[string]interface{}) (string, error) {
	result, err := gomplate.RunTemplate(data, gomplate.Template{
		Template: templateStr,
	})
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// RenderCELExpression evaluates a CEL expression using flanksource/gomplate
func RenderCELExpression(expression string, data map[string]interface{}) (string, error) {
	result, err := gomplate.RunTemplate(data, gomplate.Template{
		Expression: expression,
	})
	if err != nil {
		return "", fmt.Errorf("CEL expression execution failed: %w", err)
	}

	return result, nil
}

// isCELExpression checks if a string looks like a CEL expression rather than a go template
func isCELExpression(expr string) bool {
	if strings.Contains(expr, "{{") {
		return false
	}
	return strings.Contains(expr, "\n") ||
		strings.Contains(expr, " + ") ||
		strings.Contains(expr, " ? ") ||
		strings.Contains(expr, "==") ||
		strings.Contains(expr, "!=")
}

// EvaluateCELOrTemplate evaluates a string as CEL if it looks like CEL, otherwise as a template
func EvaluateCELOrTemplate(expr string, data map[string]interface{}) (string, error) {
	if isCELExpression(expr) {
		return RenderCELExpression(expr, data)
	}
	return RenderTemplate(expr, data)
}

// ReleaseURL renders the download url of a known release. urlTemplate may be a go template
// or a CEL expression over tool, version and name.
func ReleaseURL(urlTemplate, tool, version, name string) (string, error) {
	return EvaluateCELOrTemplate(urlTemplate, map[string]interface{}{
		"tool":    tool,
		"version": version,
		"name":    name,
	})
}
