package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flanksource/ghidra-install/pkg/config"
	"github.com/flanksource/ghidra-install/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the current configuration to a config file",
	Long: `Write the effective configuration, defaults plus any flags such as -p or
--apps-dir, to the config file so later runs pick it up.

Examples:
  ghidra-install init                       # Write $XDG_CONFIG_HOME/ghidra-install/config.yaml
  ghidra-install init -p /opt/ghidra        # Persist another install root
  ghidra-install init -c ./ghidra.yaml -f   # Overwrite a specific file`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			path = config.DefaultConfigPath()
		}
		if err := writeConfig(ghidraConfig, path, force); err != nil {
			return err
		}
		cmd.Printf("Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

// writeConfig saves cfg to path, refusing to replace an existing file unless overwrite is set
func writeConfig(cfg *types.Config, path string, overwrite bool) error {
	if _, err := os.Stat(path); err == nil && !overwrite {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return config.Save(cfg, path)
}
