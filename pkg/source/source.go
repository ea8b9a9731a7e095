package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"

	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/pkg/checksum"
	"github.com/flanksource/ghidra-install/pkg/download"
	depshttp "github.com/flanksource/ghidra-install/pkg/http"
	"github.com/flanksource/ghidra-install/pkg/system"
	"github.com/flanksource/ghidra-install/pkg/template"
	"github.com/flanksource/ghidra-install/pkg/types"
	"github.com/flanksource/ghidra-install/pkg/utils"
	"github.com/flanksource/ghidra-install/pkg/version"
)

// ErrDownloadDeclined is returned when no local archive exists and the operator refuses the download
var ErrDownloadDeclined = errors.New("download declined")

// Tier names the step that produced the download URL
type Tier string

const (
	TierLocal    Tier = "local"
	TierScrape   Tier = "scrape"
	TierGitHub   Tier = "github"
	TierFallback Tier = "fallback"
)

// DownloadFunc fetches url into dest
type DownloadFunc func(ctx context.Context, url, dest string, t *task.Task) error

// Result is the outcome of source acquisition
type Result struct {
	Archive types.ArchiveReference
	// Descriptor is set when the archive name is already known from the link or fallback
	Descriptor types.DistributionDescriptor
	Tier       Tier
	// TempDir holds the downloaded archive; empty for local archives
	TempDir string
	// Warnings are the failures of tiers that were tried before the one used
	Warnings []error
}

// Acquirer locates or downloads the distribution archive
type Acquirer struct {
	config   *types.Config
	prompter system.Prompter
	client   *http.Client
	releases ReleaseFinder
	filter   *LinkFilter
	download DownloadFunc
}

// Option configures an Acquirer
type Option func(*Acquirer)

// WithPrompter sets the consent prompter
func WithPrompter(p system.Prompter) Option {
	return func(a *Acquirer) {
		a.prompter = p
	}
}

// WithHTTPClient sets the client used for page scraping
func WithHTTPClient(client *http.Client) Option {
	return func(a *Acquirer) {
		a.client = client
	}
}

// WithReleaseFinder replaces the GitHub release lookup, nil disables that tier
func WithReleaseFinder(finder ReleaseFinder) Option {
	return func(a *Acquirer) {
		a.releases = finder
	}
}

// WithDownloader replaces the archive downloader
func WithDownloader(fn DownloadFunc) Option {
	return func(a *Acquirer) {
		a.download = fn
	}
}

// New creates an Acquirer for config. The link filter is compiled here so a
// bad expression fails before anything is downloaded.
func New(config *types.Config, opts ...Option) (*Acquirer, error) {
	filter, err := NewLinkFilter(config.LinkFilter)
	if err != nil {
		return nil, err
	}

	a := &Acquirer{
		config: config,
		filter: filter,
		download: func(ctx context.Context, url, dest string, t *task.Task) error {
			return download.Download(ctx, url, dest, t)
		},
	}
	if config.GitHubRepo != "" {
		releases, err := NewGitHubReleases(config.GitHubRepo, depshttp.GetHttpClient())
		if err != nil {
			return nil, err
		}
		a.releases = releases
	}

	for _, opt := range opts {
		opt(a)
	}
	if a.prompter == nil {
		a.prompter = system.NewPrompter(false)
	}
	if a.client == nil {
		a.client = depshttp.GetHttpClient()
	}
	return a, nil
}

// Acquire returns the archive at the expected path, or asks for consent and downloads one
func (a *Acquirer) Acquire(ctx context.Context, t *task.Task) (Result, error) {
	expected := a.config.ExpectedArchivePath()
	if utils.FileExists(expected) {
		t.Infof("Using existing archive %s", utils.LogPath(expected))
		return Result{
			Archive: types.ArchiveReference{Location: expected, Origin: types.OriginExistingLocal},
			Tier:    TierLocal,
		}, nil
	}

	t.Infof("Archive not found at %s", utils.LogPath(expected))
	for _, similar := range FindSimilarArchives(a.config.InstallRoot, a.config.Tool, a.config.DefaultArchiveName()) {
		t.Warnf("Found %s, only %s is used automatically", utils.LogPath(similar.Path), a.config.DefaultArchiveName())
	}

	prompt := fmt.Sprintf("%s was not found in %s. Download it now? [y/N]: ", a.config.DefaultArchiveName(), utils.LogPath(a.config.InstallRoot))
	if !a.prompter.Confirm(prompt) {
		hint := ""
		if !system.IsInteractive() {
			hint = ", or rerun with --yes"
		}
		return Result{}, fmt.Errorf("%w: download %s manually and place it at %s%s",
			ErrDownloadDeclined, a.config.DefaultArchiveName(), expected, hint)
	}

	result := a.resolveURL(ctx, t)
	if err := a.fetch(ctx, t, &result); err != nil {
		return result, err
	}
	return result, nil
}

// resolveURL walks scrape, GitHub and fallback tiers. Only the fallback can not fail.
func (a *Acquirer) resolveURL(ctx context.Context, t *task.Task) Result {
	var warnings []error

	if a.config.DownloadPage != "" {
		link, descriptor, err := a.scrape(ctx, t)
		if err == nil {
			return Result{
				Archive:    types.ArchiveReference{URL: link, Origin: types.OriginFreshlyDownloaded},
				Descriptor: descriptor,
				Tier:       TierScrape,
			}
		}
		t.Warnf("Could not find the latest release on %s: %v", utils.ShortenURL(a.config.DownloadPage), err)
		warnings = append(warnings, err)
	}

	if a.releases != nil {
		link, err := a.releases.LatestArchive(ctx, a.config.Tool)
		if err == nil {
			descriptor, parseErr := version.ParseArchiveNameFor(a.config.Tool, linkFilename(link))
			if parseErr == nil {
				t.Infof("Latest release from GitHub: %s", descriptor.Version)
				return Result{
					Archive:    types.ArchiveReference{URL: link, Origin: types.OriginFreshlyDownloaded},
					Descriptor: descriptor,
					Tier:       TierGitHub,
					Warnings:   warnings,
				}
			}
			err = parseErr
		}
		t.Warnf("GitHub release lookup failed: %v", err)
		warnings = append(warnings, err)
	}

	fallback, err := a.fallbackURL()
	if err != nil {
		// Validate guarantees a template; a broken one is reported and used raw
		warnings = append(warnings, err)
		fallback = a.config.Fallback.URLTemplate
	}
	t.Infof("Using known-good release %s", a.config.Fallback.Version)
	return Result{
		Archive: types.ArchiveReference{URL: fallback, Origin: types.OriginFallbackURL},
		Descriptor: types.DistributionDescriptor{
			Version:     a.config.Fallback.Version,
			RootDirName: a.config.Fallback.Name,
		},
		Tier:     TierFallback,
		Warnings: warnings,
	}
}

// scrape returns the first acceptable archive link on the download page and its descriptor
func (a *Acquirer) scrape(ctx context.Context, t *task.Task) (string, types.DistributionDescriptor, error) {
	t.V(2).Infof("Scraping %s", a.config.DownloadPage)
	body, err := download.FetchPage(ctx, a.client, a.config.DownloadPage)
	if err != nil {
		return "", types.DistributionDescriptor{}, err
	}

	base, _ := url.Parse(a.config.DownloadPage)
	links := ScrapeLinks(base, body)
	t.V(3).Infof("Found %d archive links", len(links))

	for _, link := range links {
		descriptor, err := version.ParseArchiveNameFor(a.config.Tool, linkFilename(link))
		if err != nil {
			t.V(4).Infof("Skipping %s: %v", link, err)
			continue
		}
		ok, err := a.filter.Match(link)
		if err != nil {
			return "", types.DistributionDescriptor{}, err
		}
		if !ok {
			t.V(4).Infof("Skipping %s: rejected by link_filter %s", link, a.filter)
			continue
		}
		t.Infof("Latest release from download page: %s", descriptor.Version)
		return link, descriptor, nil
	}
	return "", types.DistributionDescriptor{}, fmt.Errorf("no %s_*_PUBLIC_*.zip link found", a.config.Tool)
}

func (a *Acquirer) fallbackURL() (string, error) {
	rendered, err := template.ReleaseURL(a.config.Fallback.URLTemplate, a.config.Tool, a.config.Fallback.Version, a.config.Fallback.Name)
	if err != nil {
		return "", fmt.Errorf("failed to render fallback url template: %w", err)
	}
	return rendered, nil
}

// fetch downloads result.Archive.URL into a fresh temp directory, keeping the remote filename
func (a *Acquirer) fetch(ctx context.Context, t *task.Task, result *Result) error {
	if err := os.MkdirAll(a.config.TmpDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory %s: %w", a.config.TmpDir, err)
	}
	tmpDir, err := os.MkdirTemp(a.config.TmpDir, "ghidra-install-")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	filename := linkFilename(result.Archive.URL)
	if filename == "" || filename == "." || filename == "/" {
		filename = a.config.DefaultArchiveName()
	}
	dest := filepath.Join(tmpDir, filename)

	if err := a.download(ctx, result.Archive.URL, dest, t); err != nil {
		_ = os.RemoveAll(tmpDir)
		if !errors.Is(err, download.ErrDownloadFailed) {
			err = fmt.Errorf("%w: %v", download.ErrDownloadFailed, err)
		}
		return err
	}

	if digest, err := checksum.Digest(dest); err != nil {
		t.V(2).Infof("Could not hash %s: %v", filename, err)
	} else {
		result.Archive.Checksum = digest
		t.V(2).Infof("Downloaded %s (%s)", filename, digest)
	}

	result.Archive.Location = dest
	result.TempDir = tmpDir
	return nil
}
