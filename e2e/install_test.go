package e2e

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/clicky/task"

	"github.com/flanksource/ghidra-install/e2e/helpers"
	"github.com/flanksource/ghidra-install/pkg/installer"
	"github.com/flanksource/ghidra-install/pkg/types"
)

var _ = Describe("Installation tests", func() {
	var (
		testCtx     *helpers.TestContext
		server      *helpers.ReleaseServer
		rootDirName string
		install     = (*installer.Installer).Install
	)

	BeforeEach(func() {
		var err error
		testCtx, err = helpers.CreateInstallTestEnvironment("linux")
		Expect(err).ToNot(HaveOccurred(), "Test environment creation should succeed")

		rootDirName = testCtx.Config.Fallback.Name
		archive, err := helpers.BuildArchive(rootDirName, testCtx.Config.Fallback.Version)
		Expect(err).ToNot(HaveOccurred())

		server = helpers.NewReleaseServer(testCtx.Config.DefaultArchiveName(), archive)
		testCtx.Serve(server)
	})

	AfterEach(func() {
		if server != nil {
			server.Close()
		}
		if testCtx != nil {
			testCtx.Cleanup()
		}
	})

	It("downloads, extracts and registers the latest release", func() {
		run := helpers.Run(testCtx, install)
		Expect(run.Error).ToNot(HaveOccurred())
		GinkgoWriter.Printf("✓ installed in %v\n", run.Duration)

		Expect(run.Result.Status).To(Equal(types.InstallStatusInstalled))
		Expect(run.Result.Context.Archive.Origin).To(Equal(types.OriginFreshlyDownloaded))
		Expect(run.Result.Context.Archive.URL).To(Equal(server.URL + "/download/" + server.ArchiveName))
		Expect(run.Result.Context.Archive.Checksum).To(Equal(server.Digest))
		Expect(run.Result.Context.Descriptor.Version).To(Equal(testCtx.Config.Fallback.Version))
		Expect(run.Result.IconGenerated).To(BeTrue())
		Expect(server.Downloads()).To(Equal(1))

		Expect(helpers.ValidateLinuxInstall(testCtx.Config, rootDirName, testCtx.Config.Fallback.Version)).To(Succeed())
		Expect(helpers.TempEntries(testCtx.Config)).To(BeEmpty(), "downloads are removed after the run")
	})

	It("refreshes the bundle on a second run without re-extracting", func() {
		Expect(helpers.Run(testCtx, install).Error).ToNot(HaveOccurred())
		marker := filepath.Join(testCtx.Config.InstallRoot, rootDirName, "user-data")
		Expect(os.WriteFile(marker, []byte("keep"), 0644)).To(Succeed())

		run := helpers.Run(testCtx, install)
		Expect(run.Error).ToNot(HaveOccurred())
		Expect(run.Result.Status).To(Equal(types.InstallStatusRefreshed))
		Expect(run.Result.ExtractionSkipped).To(BeTrue())
		Expect(marker).To(BeAnExistingFile())
	})

	It("installs from the install root after a download-only run", func() {
		run := helpers.Run(testCtx, (*installer.Installer).DownloadOnly)
		Expect(run.Error).ToNot(HaveOccurred())
		Expect(run.Result.Status).To(Equal(types.InstallStatusDownloaded))
		Expect(testCtx.Config.ExpectedArchivePath()).To(BeAnExistingFile())

		run = helpers.Run(testCtx, install)
		Expect(run.Error).ToNot(HaveOccurred())
		Expect(run.Result.Context.Archive.Origin).To(Equal(types.OriginExistingLocal))
		Expect(server.Downloads()).To(Equal(1))
	})

	It("reports the installed release", func() {
		Expect(helpers.Run(testCtx, install).Error).ToNot(HaveOccurred())

		inst, err := helpers.NewInstaller(testCtx)
		Expect(err).ToNot(HaveOccurred())
		report := inst.Status(context.Background(), &task.Task{})
		Expect(report.BundleStatus).To(Equal(types.CheckStatusOK))
		Expect(report.ExtractionStatus).To(Equal(types.CheckStatusOK))
		Expect(report.ExtractionVersion).To(Equal(testCtx.Config.Fallback.Version))
		Expect(report.DockStatus).To(Equal(types.CheckStatusUnknown))
		Expect(report.JavaStatus).To(Equal(types.CheckStatusUnknown))
	})

	It("removes the bundle and the extraction on uninstall", func() {
		Expect(helpers.Run(testCtx, install).Error).ToNot(HaveOccurred())

		run := helpers.Run(testCtx, (*installer.Installer).Uninstall)
		Expect(run.Error).ToNot(HaveOccurred())
		Expect(run.Result.Status).To(Equal(types.InstallStatusUninstalled))
		Expect(filepath.Join(testCtx.Config.AppsDir, strings.ToLower(testCtx.Config.Bundle.Name))).ToNot(BeADirectory())
		Expect(filepath.Join(testCtx.Config.InstallRoot, rootDirName)).ToNot(BeADirectory())
	})
})
