package mock

import (
	"context"
	"os"
	"path/filepath"

	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/pkg/runtime"
)

// MockPrompter gives a fixed answer and counts how often it was asked
type MockPrompter struct {
	Answer bool
	Asked  int
	Last   string
}

func NewPrompter(answer bool) *MockPrompter {
	return &MockPrompter{Answer: answer}
}

func (p *MockPrompter) Confirm(message string) bool {
	p.Asked++
	p.Last = message
	return p.Answer
}

// MockReleaseFinder returns a canned latest release
type MockReleaseFinder struct {
	URL   string
	Err   error
	Calls int
}

func (f *MockReleaseFinder) LatestArchive(ctx context.Context, tool string) (string, error) {
	f.Calls++
	if f.Err != nil {
		return "", f.Err
	}
	return f.URL, nil
}

// MockDownloader writes Content to the destination, or fails with Err
type MockDownloader struct {
	Content []byte
	Err     error
	URLs    []string
}

func NewDownloader(content []byte) *MockDownloader {
	return &MockDownloader{Content: content}
}

func (d *MockDownloader) Download(ctx context.Context, url, dest string, t *task.Task) error {
	d.URLs = append(d.URLs, url)
	if d.Err != nil {
		return d.Err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.WriteFile(dest, d.Content, 0644)
}

// MockIconConverter records calls and writes a placeholder icon unless GenerateErr is set
type MockIconConverter struct {
	GenerateErr      error
	AssignErr        error
	GenerateCalls    int
	AssignCalls      int
	AssignedBundles  []string
	GeneratedIconExt string
}

func NewIconConverter() *MockIconConverter {
	return &MockIconConverter{GeneratedIconExt: ".icns"}
}

func (c *MockIconConverter) WithGenerateError(err error) *MockIconConverter {
	c.GenerateErr = err
	return c
}

func (c *MockIconConverter) WithAssignError(err error) *MockIconConverter {
	c.AssignErr = err
	return c
}

func (c *MockIconConverter) Generate(ctx context.Context, extractionPath, resourcesDir, name string, t *task.Task) (string, error) {
	c.GenerateCalls++
	if c.GenerateErr != nil {
		return "", c.GenerateErr
	}
	dest := filepath.Join(resourcesDir, name+c.GeneratedIconExt)
	if err := os.MkdirAll(resourcesDir, 0755); err != nil {
		return "", err
	}
	return dest, os.WriteFile(dest, []byte("icon"), 0644)
}

func (c *MockIconConverter) AssignGeneric(ctx context.Context, bundlePath string, t *task.Task) error {
	c.AssignCalls++
	c.AssignedBundles = append(c.AssignedBundles, bundlePath)
	return c.AssignErr
}

// MockDockRegistrar keeps the pinned list in memory
type MockDockRegistrar struct {
	Pinned        []string
	ReadErr       error
	RegisterErr   error
	RegisterCalls int
	Restarts      int
}

func NewDockRegistrar(pinned ...string) *MockDockRegistrar {
	return &MockDockRegistrar{Pinned: pinned}
}

func (d *MockDockRegistrar) IsRegistered(ctx context.Context, displayName string) (bool, error) {
	if d.ReadErr != nil {
		return false, d.ReadErr
	}
	for _, p := range d.Pinned {
		if p == displayName || filepath.Base(p) == displayName+".app" {
			return true, nil
		}
	}
	return false, nil
}

func (d *MockDockRegistrar) Register(ctx context.Context, bundlePath string, t *task.Task) error {
	d.RegisterCalls++
	if d.RegisterErr != nil {
		return d.RegisterErr
	}
	d.Pinned = append(d.Pinned, bundlePath)
	d.Restarts++
	return nil
}

// MockRuntimeChecker returns a fixed status
type MockRuntimeChecker struct {
	Status         runtime.Status
	CheckErr       error
	RemediateErr   error
	CheckCalls     int
	RemediateCalls int
}

// NewRuntimeChecker reports java at version, satisfying the constraint
func NewRuntimeChecker(version string) *MockRuntimeChecker {
	return &MockRuntimeChecker{Status: runtime.Status{Path: "/usr/bin/java", Version: version, Constraint: ">=21", Satisfied: true}}
}

// NewMissingRuntimeChecker reports java as absent
func NewMissingRuntimeChecker() *MockRuntimeChecker {
	return &MockRuntimeChecker{CheckErr: runtime.ErrRuntimeNotFound, RemediateErr: runtime.ErrNoRemediation}
}

func (r *MockRuntimeChecker) Check(ctx context.Context, t *task.Task) (runtime.Status, error) {
	r.CheckCalls++
	return r.Status, r.CheckErr
}

func (r *MockRuntimeChecker) Remediate(ctx context.Context, t *task.Task) error {
	r.RemediateCalls++
	return r.RemediateErr
}
