package types

import (
	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/api"
	"github.com/flanksource/clicky/api/icons"
	"github.com/samber/lo"
)

// Origin records which acquisition path produced an archive
type Origin string

const (
	// OriginExistingLocal is an archive already present at the expected path
	OriginExistingLocal Origin = "existing-local"
	// OriginFreshlyDownloaded is an archive downloaded from a scraped or API-discovered link
	OriginFreshlyDownloaded Origin = "freshly-downloaded"
	// OriginFallbackURL is an archive downloaded from the built-in known-good reference
	OriginFallbackURL Origin = "fallback-url"
)

// IsDownload returns true if the archive was fetched over the network during this run
func (o Origin) IsDownload() bool {
	return o == OriginFreshlyDownloaded || o == OriginFallbackURL
}

// ArchiveReference points at the distribution archive used for this run
type ArchiveReference struct {
	// Location is a local path (after download it is the temp file)
	Location string `json:"location" yaml:"location"`
	// URL is the remote URL the archive came from, empty for existing-local archives
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Origin describes how the archive was acquired
	Origin Origin `json:"origin" yaml:"origin"`
	// Checksum is the sha256 digest of a downloaded archive, recorded for reference
	Checksum string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
}

// DistributionDescriptor is derived from the archive filename
type DistributionDescriptor struct {
	// Version is the dotted release version, e.g. 11.3.1
	Version string `json:"version" yaml:"version"`
	// RootDirName is the archive filename without extension; it must equal the
	// archive's top-level directory
	RootDirName string `json:"root_dir_name" yaml:"root_dir_name"`
}

// IsZero returns true if neither field has been set
func (d DistributionDescriptor) IsZero() bool {
	return d.Version == "" && d.RootDirName == ""
}

func (d DistributionDescriptor) String() string {
	return d.RootDirName + "@" + d.Version
}

// ResolutionContext carries the values produced by each install stage.
// It is passed by value and extended with the With* methods, never mutated in place.
type ResolutionContext struct {
	InstallRoot    string                 `json:"install_root" yaml:"install_root"`
	Archive        *ArchiveReference      `json:"archive,omitempty" yaml:"archive,omitempty"`
	Descriptor     DistributionDescriptor `json:"descriptor" yaml:"descriptor"`
	ExtractionPath string                 `json:"extraction_path,omitempty" yaml:"extraction_path,omitempty"`
	BundlePath     string                 `json:"bundle_path,omitempty" yaml:"bundle_path,omitempty"`
}

func (r ResolutionContext) WithArchive(ref ArchiveReference) ResolutionContext {
	r.Archive = &ref
	return r
}

func (r ResolutionContext) WithDescriptor(d DistributionDescriptor) ResolutionContext {
	r.Descriptor = d
	return r
}

func (r ResolutionContext) WithExtractionPath(path string) ResolutionContext {
	r.ExtractionPath = path
	return r
}

func (r ResolutionContext) WithBundlePath(path string) ResolutionContext {
	r.BundlePath = path
	return r
}

func (r ResolutionContext) Pretty() api.Text {
	text := clicky.Text("").Append("ghidra", "bold")
	if r.Descriptor.Version != "" {
		text = text.Append("@" + r.Descriptor.Version)
	}
	if r.Archive != nil {
		text = text.Append(" from ", "text-muted").Append(string(r.Archive.Origin))
		if r.Archive.URL != "" {
			text = text.Append(" ").Append(lo.Ellipsis(r.Archive.URL, 80), "text-underline")
		}
	}
	if r.BundlePath != "" {
		text = text.Append(" -> ", "text-muted").Append(r.BundlePath)
	}
	return text
}

// InstallStatus summarises what a run did
type InstallStatus string

const (
	InstallStatusInstalled       InstallStatus = "installed"
	InstallStatusForcedInstalled InstallStatus = "forced_installed"
	InstallStatusRefreshed       InstallStatus = "refreshed"
	InstallStatusDownloaded      InstallStatus = "downloaded"
	InstallStatusUninstalled     InstallStatus = "uninstalled"
	InstallStatusFailed          InstallStatus = "failed"
)

func (s InstallStatus) Pretty() api.Text {
	switch s {
	case InstallStatusInstalled:
		return clicky.Text("").Add(icons.Success).Append(" Installed", "text-green-500")
	case InstallStatusForcedInstalled:
		return clicky.Text("").Add(icons.InfoAlt).Append(" Forced Installed", "text-blue-500")
	case InstallStatusRefreshed:
		return clicky.Text("").Add(icons.Skip).Append(" Bundle Refreshed", "text-yellow-500")
	case InstallStatusDownloaded:
		return clicky.Text("").Add(icons.Success).Append(" Downloaded", "text-green-500")
	case InstallStatusUninstalled:
		return clicky.Text("").Add(icons.Success).Append(" Uninstalled", "text-green-500")
	case InstallStatusFailed:
		return clicky.Text("").Add(icons.Error).Append(" Failed", "text-red-500")
	default:
		return clicky.Text(string(s))
	}
}
