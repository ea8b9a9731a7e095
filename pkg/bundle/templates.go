package bundle

import (
	"fmt"
	"strings"

	"github.com/flanksource/ghidra-install/pkg/template"
)

const launcherTemplate = `#!/bin/sh
# {{.name}} {{.version}} launcher, generated by ghidra-install
cd {{.extraction}} || exit 1
exec ./{{.entry_point}} "$@"
`

const desktopTemplate = `[Desktop Entry]
Type=Application
Name={{.name}}
Comment={{.name}} {{.version}} software reverse engineering suite
Exec={{.exec}} %F
Icon={{.icon}}
Terminal=false
Categories=Development;
StartupWMClass=ghidra-Ghidra
` + desktopVersionKey + `={{.version}}
` + desktopIdentifierKey + `={{.identifier}}
`

// RenderLauncher renders the script that changes into the extraction and runs its entry point
func RenderLauncher(name, version, extractionPath, entryPoint string) (string, error) {
	return render(launcherTemplate, map[string]any{
		"name":        name,
		"version":     version,
		"extraction":  shellQuote(extractionPath),
		"entry_point": entryPoint,
	})
}

// RenderDesktopEntry renders a freedesktop .desktop file
func RenderDesktopEntry(m Manifest, launcherPath, iconPath string) (string, error) {
	return render(desktopTemplate, map[string]any{
		"name":       m.DisplayName,
		"version":    m.Version,
		"identifier": m.Identifier,
		"exec":       desktopQuote(launcherPath),
		"icon":       iconPath,
	})
}

func render(tmpl string, data map[string]any) (string, error) {
	out, err := template.RenderTemplate(tmpl, data)
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out, nil
}

// shellQuote wraps s in single quotes for /bin/sh
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// desktopQuote quotes an Exec path containing spaces per the desktop entry spec
func desktopQuote(s string) string {
	if !strings.ContainsAny(s, " \t\"'\\") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "`", "\\`", `$`, `\$`)
	return `"` + r.Replace(s) + `"`
}

func desktopUnquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	r := strings.NewReplacer(`\\`, `\`, `\"`, `"`, "\\`", "`", `\$`, `$`)
	return r.Replace(s[1 : len(s)-1])
}

func shellUnquote(s string) string {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return s
	}
	return strings.ReplaceAll(s[1:len(s)-1], `'\''`, "'")
}
