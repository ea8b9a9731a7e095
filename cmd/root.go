package cmd

import (
	"fmt"

	"github.com/flanksource/clicky"
	"github.com/flanksource/clicky/task"
	flanksourceContext "github.com/flanksource/commons/context"
	"github.com/flanksource/commons/logger"
	"github.com/spf13/cobra"

	"github.com/flanksource/ghidra-install/pkg/config"
	"github.com/flanksource/ghidra-install/pkg/installer"
	"github.com/flanksource/ghidra-install/pkg/platform"
	"github.com/flanksource/ghidra-install/pkg/types"
)

var (
	installRoot  string
	appsDir      string
	tmpDir       string
	configFile   string
	osOverride   string
	downloadOnly bool
	force        bool
	uninstall    bool
	assumeYes    bool
	debug        bool
	skipJava     bool
	skipDock     bool
	showVersion  bool
	ghidraConfig *types.Config
)

var rootCmd = &cobra.Command{
	Use:   "ghidra-install",
	Short: "Install Ghidra as a desktop application",
	Long: `ghidra-install installs the Ghidra reverse engineering suite from its
public release archive and registers it as a desktop application.

The archive is looked up in the install root first. When it is missing you are
asked before the latest public release is downloaded.

Examples:
  ghidra-install                  # Install from ~/ghidra or download the latest release
  ghidra-install -p /opt/ghidra   # Use another install root
  ghidra-install -d               # Only download the archive into the install root
  ghidra-install -f               # Re-extract and rebuild everything
  ghidra-install --uninstall      # Remove the application and its extraction`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Apply clicky flags after command line parsing
		clicky.Flags.UseFlags()

		if showVersion {
			return nil
		}

		if err := applyPlatform(); err != nil {
			return err
		}
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("error loading config: %w", err)
		}
		if err := applyOverrides(cfg); err != nil {
			return err
		}
		ghidraConfig = cfg

		logger.Debugf("Installing to %s, application in %s (%s)", cfg.InstallRoot, cfg.AppsDir, platform.Current())
		return nil
	},
	RunE: runRoot,
}

func Execute() error {
	return rootCmd.Execute()
}

// applyPlatform selects the bundle layout from --os before any defaults are derived from it
func applyPlatform() error {
	if osOverride == "" {
		platform.SetOSOverride("")
		return nil
	}
	p, err := platform.Parse(osOverride)
	if err != nil {
		return err
	}
	platform.SetOSOverride(p.OS)
	return nil
}

// applyOverrides copies the path flags over the loaded configuration
func applyOverrides(cfg *types.Config) error {
	if installRoot != "" {
		cfg.InstallRoot = installRoot
	}
	if appsDir != "" {
		cfg.AppsDir = appsDir
	}
	if tmpDir != "" {
		cfg.TmpDir = tmpDir
	}
	if skipJava {
		cfg.Java.Skip = true
	}
	if skipDock {
		cfg.SkipDock = true
	}
	return config.Finalize(cfg)
}

func installOptions() []installer.InstallOption {
	return []installer.InstallOption{
		installer.WithForce(force),
		installer.WithDebug(debug),
		installer.WithAssumeYes(assumeYes),
		installer.WithSkipJava(skipJava),
		installer.WithSkipDock(skipDock),
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	if showVersion {
		cmd.Println(versionString())
		return nil
	}
	name := "install"
	switch {
	case uninstall:
		name = "uninstall"
	case downloadOnly:
		name = "download"
	}

	var result *types.InstallResult
	var runErr error

	task.StartTask(name, func(ctx flanksourceContext.Context, t *task.Task) (interface{}, error) {
		inst, err := installer.New(ghidraConfig, installOptions()...)
		if err != nil {
			runErr = err
			return nil, err
		}
		switch {
		case uninstall:
			result, runErr = inst.Uninstall(ctx.Context, t)
		case downloadOnly:
			result, runErr = inst.DownloadOnly(ctx.Context, t)
		default:
			result, runErr = inst.Install(ctx.Context, t)
		}
		return result, runErr
	})

	exitCode := clicky.WaitForGlobalCompletion()
	if runErr != nil {
		return runErr
	}
	if exitCode != 0 {
		return fmt.Errorf("%s failed with exit code %d", name, exitCode)
	}

	if result != nil {
		out, err := clicky.Format(result)
		if err != nil {
			return err
		}
		cmd.Println(out)
	}
	return nil
}

func init() {
	clicky.BindAllFlags(rootCmd.PersistentFlags(), "tasks", "!format")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&installRoot, "path", "p", "", "Install root holding the archive and its extraction (default ~/ghidra)")
	flags.StringVar(&appsDir, "apps-dir", "", "Directory for the application bundle (default /Applications on macOS, $XDG_DATA_HOME/applications elsewhere)")
	flags.StringVar(&tmpDir, "tmp-dir", "", "Directory for downloads")
	flags.StringVarP(&configFile, "config", "c", "", "Path to config file (default "+config.DefaultConfigPath()+")")
	flags.StringVar(&osOverride, "os", "", "Target OS layout (darwin, macos, linux)")
	flags.BoolVarP(&force, "force", "f", false, "Re-extract and re-register even if already installed")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "Download without asking when the archive is missing")
	flags.BoolVar(&debug, "debug", false, "Keep downloaded files")
	flags.BoolVar(&skipJava, "skip-java", false, "Skip the Java runtime check")
	flags.BoolVar(&skipDock, "skip-dock", false, "Do not add the application to the Dock")

	rootCmd.Flags().BoolVarP(&downloadOnly, "download-only", "d", false, "Only download the archive into the install root")
	rootCmd.Flags().BoolVar(&uninstall, "uninstall", false, "Remove the application and its extraction")
	rootCmd.MarkFlagsMutuallyExclusive("download-only", "uninstall")

	// clicky may already own -v for verbosity
	if flags.ShorthandLookup("v") == nil {
		rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print the version and exit")
	} else {
		rootCmd.Flags().BoolVar(&showVersion, "version", false, "Print the version and exit")
	}
}
