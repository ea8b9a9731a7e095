package e2e

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/flanksource/ghidra-install/pkg/platform"
)

func TestE2E(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "E2E Suite")
}

var _ = BeforeSuite(func() {
	GinkgoLogr.Info("Starting ghidra-install E2E suite", "host", platform.Current().String())
})

var _ = AfterSuite(func() {
	platform.SetOSOverride("")
})
