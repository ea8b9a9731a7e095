package bundle_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flanksource/clicky/task"
	"github.com/flanksource/ghidra-install/pkg/bundle"
	"github.com/flanksource/ghidra-install/pkg/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestBundle(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Bundle Suite")
}

var bundleConfig = types.BundleConfig{
	Name:       "Ghidra",
	Identifier: "org.ghidra-sre.Ghidra",
	Launcher:   "ghidra-launcher",
	Icon:       "Ghidra",
	EntryPoint: "ghidraRun",
}

var descriptor = types.DistributionDescriptor{Version: "11.3.1", RootDirName: "ghidra_11.3.1_PUBLIC"}

func read(path string) string {
	data, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())
	return string(data)
}

var _ = Describe("Materializer", func() {
	var (
		appsDir    string
		extraction string
		t          *task.Task
	)

	BeforeEach(func() {
		appsDir = GinkgoT().TempDir()
		extraction = filepath.Join(GinkgoT().TempDir(), "ghidra", descriptor.RootDirName)
		t = &task.Task{}
	})

	Describe("on darwin", func() {
		var m *bundle.Materializer

		BeforeEach(func() {
			m = bundle.NewFor("darwin", appsDir, bundleConfig)
		})

		It("uses a fixed .app path", func() {
			Expect(m.Path()).To(Equal(filepath.Join(appsDir, "Ghidra.app")))
		})

		It("stages the layout, manifest and launcher without touching the final path", func() {
			staged, err := m.Stage(descriptor, extraction, t)
			Expect(err).NotTo(HaveOccurred())
			defer staged.Discard()

			Expect(staged.Dir).To(Equal(m.Path() + ".staging"))
			Expect(filepath.Join(staged.Dir, "Contents", "MacOS")).To(BeADirectory())
			Expect(staged.ResourcesDir).To(Equal(filepath.Join(staged.Dir, "Contents", "Resources")))
			Expect(staged.ResourcesDir).To(BeADirectory())
			Expect(m.Path()).NotTo(BeAnExistingFile())
		})

		It("writes a manifest with the version twice", func() {
			staged, err := m.Stage(descriptor, extraction, t)
			Expect(err).NotTo(HaveOccurred())
			_, err = staged.Commit(t)
			Expect(err).NotTo(HaveOccurred())

			plist := read(filepath.Join(m.Path(), "Contents", "Info.plist"))
			Expect(plist).To(ContainSubstring("<key>CFBundleShortVersionString</key>"))
			Expect(plist).To(ContainSubstring("<key>CFBundleExecutable</key>"))
			Expect(plist).To(ContainSubstring("<string>APPL</string>"))

			manifest, err := m.Installed()
			Expect(err).NotTo(HaveOccurred())
			Expect(manifest.Name).To(Equal("Ghidra"))
			Expect(manifest.Identifier).To(Equal("org.ghidra-sre.Ghidra"))
			Expect(manifest.ShortVersion).To(Equal("11.3.1"))
			Expect(manifest.Version).To(Equal("11.3.1"))
			Expect(manifest.IconFile).To(Equal("Ghidra"))
			Expect(manifest.Executable).To(Equal("ghidra-launcher"))
		})

		It("writes an executable launcher that changes into the extraction", func() {
			staged, err := m.Stage(descriptor, extraction, t)
			Expect(err).NotTo(HaveOccurred())
			_, err = staged.Commit(t)
			Expect(err).NotTo(HaveOccurred())

			launcher := m.LauncherPath()
			Expect(launcher).To(Equal(filepath.Join(m.Path(), "Contents", "MacOS", "ghidra-launcher")))
			info, err := os.Stat(launcher)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm()).To(Equal(os.FileMode(0755)))

			script := read(launcher)
			Expect(script).To(HavePrefix("#!/bin/sh\n"))
			Expect(script).To(ContainSubstring("cd '" + extraction + "' || exit 1"))
			Expect(script).To(ContainSubstring(`exec ./ghidraRun "$@"`))
		})

		It("replaces an existing bundle completely", func() {
			stale := filepath.Join(m.Path(), "Contents", "Resources", "custom.icns")
			Expect(os.MkdirAll(filepath.Dir(stale), 0755)).To(Succeed())
			Expect(os.WriteFile(stale, []byte("x"), 0644)).To(Succeed())

			staged, err := m.Stage(descriptor, extraction, t)
			Expect(err).NotTo(HaveOccurred())
			path, err := staged.Commit(t)
			Expect(err).NotTo(HaveOccurred())

			Expect(path).To(Equal(m.Path()))
			Expect(stale).NotTo(BeAnExistingFile())
			Expect(m.Path() + ".staging").NotTo(BeAnExistingFile())

			entries, err := os.ReadDir(appsDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
		})

		It("rejects an empty descriptor", func() {
			_, err := m.Stage(types.DistributionDescriptor{}, extraction, t)
			Expect(err).To(HaveOccurred())
			Expect(m.Path() + ".staging").NotTo(BeAnExistingFile())
		})

		It("removes the bundle", func() {
			staged, err := m.Stage(descriptor, extraction, t)
			Expect(err).NotTo(HaveOccurred())
			_, err = staged.Commit(t)
			Expect(err).NotTo(HaveOccurred())

			removed, err := m.Remove(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeTrue())
			Expect(m.Exists()).To(BeFalse())

			removed, err = m.Remove(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(removed).To(BeFalse())
		})
	})

	Describe("on linux", func() {
		var m *bundle.Materializer

		BeforeEach(func() {
			m = bundle.NewFor("linux", appsDir, bundleConfig)
		})

		It("writes a desktop entry pointing at the launcher", func() {
			staged, err := m.Stage(descriptor, extraction, t)
			Expect(err).NotTo(HaveOccurred())
			_, err = staged.Commit(t)
			Expect(err).NotTo(HaveOccurred())

			Expect(m.Path()).To(Equal(filepath.Join(appsDir, "ghidra")))
			entry := read(filepath.Join(m.Path(), "ghidra.desktop"))
			Expect(entry).To(HavePrefix("[Desktop Entry]\n"))
			Expect(entry).To(ContainSubstring("Name=Ghidra\n"))
			Expect(entry).To(ContainSubstring("Exec=" + filepath.Join(m.Path(), "ghidra-launcher") + " %F\n"))
			Expect(entry).To(ContainSubstring("Icon=" + filepath.Join(m.Path(), "Ghidra.png") + "\n"))

			manifest, err := m.Installed()
			Expect(err).NotTo(HaveOccurred())
			Expect(manifest.Version).To(Equal("11.3.1"))
			Expect(manifest.Identifier).To(Equal("org.ghidra-sre.Ghidra"))
			Expect(manifest.Executable).To(Equal(filepath.Join(m.Path(), "ghidra-launcher")))
		})

		It("places the launcher next to the entry", func() {
			staged, err := m.Stage(descriptor, extraction, t)
			Expect(err).NotTo(HaveOccurred())
			Expect(staged.ResourcesDir).To(Equal(staged.Dir))
			_, err = staged.Commit(t)
			Expect(err).NotTo(HaveOccurred())
			Expect(read(m.LauncherPath())).To(ContainSubstring(`exec ./ghidraRun "$@"`))
		})
	})
})

var _ = Describe("RenderLauncher", func() {
	It("quotes paths with spaces and quotes", func() {
		script, err := bundle.RenderLauncher("Ghidra", "11.3.1", "/Users/o'neil/My Tools/ghidra_11.3.1_PUBLIC", "ghidraRun")
		Expect(err).NotTo(HaveOccurred())
		Expect(script).To(ContainSubstring(`cd '/Users/o'\''neil/My Tools/ghidra_11.3.1_PUBLIC' || exit 1`))
	})
})

var _ = Describe("ReadDesktopManifest", func() {
	It("unquotes Exec paths with spaces", func() {
		path := filepath.Join(GinkgoT().TempDir(), "ghidra.desktop")
		Expect(os.WriteFile(path, []byte("[Desktop Entry]\nName=Ghidra\nExec=\"/opt/my apps/ghidra-launcher\" %F\nX-GhidraInstall-Version=11.2\n"), 0644)).To(Succeed())

		manifest, err := bundle.ReadDesktopManifest(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(manifest.Executable).To(Equal("/opt/my apps/ghidra-launcher"))
		Expect(manifest.Version).To(Equal("11.2"))
	})

	It("requires a version", func() {
		path := filepath.Join(GinkgoT().TempDir(), "other.desktop")
		Expect(os.WriteFile(path, []byte("[Desktop Entry]\nName=Other\n"), 0644)).To(Succeed())
		_, err := bundle.ReadDesktopManifest(path)
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("ReadLauncherTarget", func() {
	It("reads back the quoted extraction directory", func() {
		dir := "/Users/o'neil/My Tools/ghidra_11.3.1_PUBLIC"
		script, err := bundle.RenderLauncher("Ghidra", "11.3.1", dir, "ghidraRun")
		Expect(err).NotTo(HaveOccurred())

		target, err := bundle.ReadLauncherTarget(script)
		Expect(err).NotTo(HaveOccurred())
		Expect(target).To(Equal(dir))
	})

	It("fails for scripts that do not change directory", func() {
		_, err := bundle.ReadLauncherTarget("#!/bin/sh\nexec ghidraRun\n")
		Expect(err).To(HaveOccurred())
	})
})
