package types

import (
	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/api/icons"
)

// CheckStatus represents the status of a single installation component
type CheckStatus string

const (
	CheckStatusOK       CheckStatus = "OK"
	CheckStatusOutdated CheckStatus = "OUTDATED"
	CheckStatusMissing  CheckStatus = "MISSING"
	CheckStatusError    CheckStatus = "ERROR"
	CheckStatusUnknown  CheckStatus = "UNKNOWN"
)

func (s CheckStatus) Pretty() api.Text {
	switch s {
	case CheckStatusOK:
		return clicky.Text("").Add(icons.Success).Append(" OK", "text-green-500")
	case CheckStatusOutdated:
		return clicky.Text("").Add(icons.Warning).Append(" OUTDATED", "text-yellow-500")
	case CheckStatusMissing:
		return clicky.Text("").Add(icons.Error).Append(" MISSING", "text-red-500")
	case CheckStatusError:
		return clicky.Text("").Add(icons.Error).Append(" ERROR", "text-red-500")
	default:
		return clicky.Text(string(s))
	}
}

// StatusReport describes what is currently installed
type StatusReport struct {
	BundlePath        string      `json:"bundle_path"`
	BundleStatus      CheckStatus `json:"bundle_status"`
	InstalledVersion  string      `json:"installed_version,omitempty"`
	KnownVersion      string      `json:"known_version,omitempty"`
	ExtractionPath    string      `json:"extraction_path,omitempty"`
	ExtractionStatus  CheckStatus `json:"extraction_status"`
	// ExtractionVersion is read from the extraction's application.properties
	ExtractionVersion string      `json:"extraction_version,omitempty"`
	DockStatus        CheckStatus `json:"dock_status"`
	JavaVersion       string      `json:"java_version,omitempty"`
	JavaStatus        CheckStatus `json:"java_status"`
	Error             string      `json:"error,omitempty"`
}

func (r StatusReport) Pretty() api.Text {
	text := clicky.Text("").Append("bundle: ", "muted").Add(r.BundleStatus.Pretty()).Append(" " + r.BundlePath)
	if r.InstalledVersion != "" {
		text = text.Append(" (" + r.InstalledVersion + ")")
	}
	if r.BundleStatus == CheckStatusOutdated && r.KnownVersion != "" {
		text = text.Append(" newer: ", "muted").Append(r.KnownVersion)
	}
	text = text.Append("\n").Append("extraction: ", "muted").Add(r.ExtractionStatus.Pretty())
	if r.ExtractionPath != "" {
		text = text.Append(" " + r.ExtractionPath)
	}
	if r.ExtractionVersion != "" {
		text = text.Append(" (" + r.ExtractionVersion + ")")
	}
	text = text.Append("\n").Append("dock: ", "muted").Add(r.DockStatus.Pretty())
	text = text.Append("\n").Append("java: ", "muted").Add(r.JavaStatus.Pretty())
	if r.JavaVersion != "" {
		text = text.Append(" " + r.JavaVersion)
	}
	if r.Error != "" {
		text = text.Append("\n").Append(r.Error, "text-red-500")
	}
	return text
}
