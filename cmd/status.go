package cmd

import (
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"
	"github.com/spf13/cobra"

	"github.com/flanksource/ghidra-install/pkg/installer"
	"github.com/flanksource/ghidra-install/pkg/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what is installed",
	Long: `Show the installed application version, whether its extraction and Dock
entry exist, the detected Java runtime, and whether a newer known release exists.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	var report types.StatusReport
	var statusErr error

	task.StartTask("status", func(ctx flanksourceContext.Context, t *task.Task) (interface{}, error) {
		inst, err := installer.New(ghidraConfig, installOptions()...)
		if err != nil {
			statusErr = err
			return nil, err
		}
		report = inst.Status(ctx.Context, t)
		return report, nil
	})

	if exitCode := clicky.WaitForGlobalCompletion(); statusErr == nil && exitCode != 0 {
		statusErr = fmt.Errorf("status failed with exit code %d", exitCode)
	}
	if statusErr != nil {
		return statusErr
	}

	out, err := clicky.Format(report)
	if err != nil {
		return err
	}
	cmd.Println(out)
	return nil
}
