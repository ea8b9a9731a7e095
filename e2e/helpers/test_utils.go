package helpers

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/pkg/bundle"
	"github.com/flanksource/ghidra-install/pkg/config"
	"github.com/flanksource/ghidra-install/pkg/download"
	"github.com/flanksource/ghidra-install/pkg/installer"
	"github.com/flanksource/ghidra-install/pkg/platform"
	"github.com/flanksource/ghidra-install/pkg/types"
)

// TestContext holds the directories and configuration for a single test
type TestContext struct {
	TempDir string
	Config  *types.Config
	Cleanup func()
	// Client trusts the release server's certificate, nil until Serve is called
	Client *http.Client
}

// Serve points the download page at s and routes page and archive requests through its client
func (c *TestContext) Serve(s *ReleaseServer) {
	c.Config.DownloadPage = s.PageURL()
	c.Client = s.Client()
}

// CreateInstallTestEnvironment sets up an install root, applications and temp directory
// under a fresh temporary directory, laid out for goos
func CreateInstallTestEnvironment(goos string) (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "ghidra-install-e2e-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	platform.SetOSOverride(goos)

	cfg, err := config.Defaults()
	if err != nil {
		os.RemoveAll(tempDir)
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}
	cfg.InstallRoot = filepath.Join(tempDir, "ghidra")
	cfg.AppsDir = filepath.Join(tempDir, "applications")
	cfg.TmpDir = filepath.Join(tempDir, "tmp")
	cfg.GitHubRepo = ""

	cleanup := func() {
		os.RemoveAll(tempDir)
		// Reset global platform overrides
		platform.SetOSOverride("")
	}

	return &TestContext{
		TempDir: tempDir,
		Config:  cfg,
		Cleanup: cleanup,
	}, nil
}

// BuildArchive returns a release archive with the single top-level directory root,
// holding a launch script, release properties and an icon
func BuildArchive(root, version string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	files := []struct {
		name    string
		mode    os.FileMode
		content string
	}{
		{name: root + "/", mode: os.ModeDir | 0755},
		{name: root + "/ghidraRun", mode: 0755, content: "#!/bin/sh\necho ghidra\n"},
		{name: root + "/Ghidra/application.properties", mode: 0644, content: "application.name=Ghidra\napplication.version=" + version + "\napplication.release.name=PUBLIC\n"},
		{name: root + "/docs/images/GhidraIcon256.png", mode: 0644, content: "\x89PNG\r\n\x1a\n"},
	}
	for _, f := range files {
		header := &zip.FileHeader{Name: f.name, Method: zip.Deflate}
		header.SetMode(f.mode)
		fw, err := w.CreateHeader(header)
		if err != nil {
			return nil, err
		}
		if f.content != "" {
			if _, err := fw.Write([]byte(f.content)); err != nil {
				return nil, err
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReleaseServer serves over https a release listing page linking to a single archive
type ReleaseServer struct {
	*httptest.Server
	ArchiveName string
	Archive     []byte
	// Digest is the archive's sha256 in the form the installer records it
	Digest    string
	downloads atomic.Int32
}

// NewReleaseServer starts a server publishing archive as name
func NewReleaseServer(name string, archive []byte) *ReleaseServer {
	s := &ReleaseServer{
		ArchiveName: name,
		Archive:     archive,
		Digest:      fmt.Sprintf("sha256:%x", sha256.Sum256(archive)),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/releases", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<html><body>
<h2>Ghidra release</h2>
<a href="/download/%s">%s</a>
<a href="/archive/refs/tags/source.zip">Source code (zip)</a>
</body></html>`, s.ArchiveName, s.ArchiveName)
	})
	mux.HandleFunc("/download/", func(w http.ResponseWriter, r *http.Request) {
		if strings.TrimPrefix(r.URL.Path, "/download/") != s.ArchiveName {
			http.NotFound(w, r)
			return
		}
		s.downloads.Add(1)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(s.Archive)
	})
	s.Server = httptest.NewTLSServer(mux)
	return s
}

// PageURL is the release listing to configure as the download page
func (s *ReleaseServer) PageURL() string {
	return s.URL + "/releases"
}

// Downloads counts archive requests served
func (s *ReleaseServer) Downloads() int {
	return int(s.downloads.Load())
}

// RunResult holds the outcome of one installer run
type RunResult struct {
	Result   *types.InstallResult
	Duration time.Duration
	Error    error
}

// NewInstaller creates an installer over the real collaborators, answering yes to the
// download prompt and skipping the Java check
func NewInstaller(testCtx *TestContext, opts ...installer.InstallOption) (*installer.Installer, error) {
	all := []installer.InstallOption{
		installer.WithAssumeYes(true),
		installer.WithSkipJava(true),
	}
	if client := testCtx.Client; client != nil {
		all = append(all,
			installer.WithHTTPClient(client),
			installer.WithDownloader(func(ctx context.Context, url, dest string, t *task.Task) error {
				return download.Download(ctx, url, dest, t, download.WithHTTPClient(client), download.WithoutProgress())
			}),
		)
	}
	return installer.New(testCtx.Config, append(all, opts...)...)
}

// Run performs one operation against a fresh installer
func Run(testCtx *TestContext, op func(*installer.Installer, context.Context, *task.Task) (*types.InstallResult, error), opts ...installer.InstallOption) *RunResult {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	inst, err := NewInstaller(testCtx, opts...)
	if err != nil {
		return &RunResult{Error: err, Duration: time.Since(start)}
	}
	result, err := op(inst, ctx, &task.Task{})
	return &RunResult{Result: result, Error: err, Duration: time.Since(start)}
}

// ValidateLinuxInstall checks the desktop entry, launcher and icon written for the
// extraction named rootDirName
func ValidateLinuxInstall(cfg *types.Config, rootDirName, version string) error {
	m := bundle.NewFor("linux", cfg.AppsDir, cfg.Bundle)
	if !m.Exists() {
		return fmt.Errorf("bundle %s not found", m.Path())
	}

	manifest, err := m.Installed()
	if err != nil {
		return fmt.Errorf("failed to read desktop entry: %w", err)
	}
	if manifest.Version != version {
		return fmt.Errorf("desktop entry version %q, expected %q", manifest.Version, version)
	}

	target, err := m.ExtractionTarget()
	if err != nil {
		return fmt.Errorf("failed to read launcher: %w", err)
	}
	expected := filepath.Join(cfg.InstallRoot, rootDirName)
	if target != expected {
		return fmt.Errorf("launcher points at %s, expected %s", target, expected)
	}

	info, err := os.Stat(m.LauncherPath())
	if err != nil {
		return err
	}
	if info.Mode().Perm()&0111 == 0 {
		return fmt.Errorf("launcher %s is not executable", m.LauncherPath())
	}

	icon := filepath.Join(m.Path(), cfg.Bundle.Icon+".png")
	if _, err := os.Stat(icon); err != nil {
		return fmt.Errorf("icon not written: %w", err)
	}
	return nil
}

// TempEntries lists what a run left behind in the temp directory
func TempEntries(cfg *types.Config) []string {
	entries, err := os.ReadDir(cfg.TmpDir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
