package main

import (
	"fmt"
	"os"

	"cosmossdk.io/log"
	"github.com/spf13/cobra"

	"github.com/oxygene76/orrery/internal/logging"
	"github.com/oxygene76/orrery/pkg/catalog"
	"github.com/oxygene76/orrery/pkg/utils"
)

const (
	// Application constants
	appName = "orrery"
	version = "v1.0.0"
)

var (
	// Configuration
	cfgFile  string
	logLevel string

	config *utils.Config
	logger log.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Keplerian orrery of the solar system",
	Long: `Orrery propagates the planets along their J2000 Keplerian orbits. It can
report a single body's heliocentric position, summarize an orbit over one period,
or drive a frame-based simulation that streams sampled positions as JSONL.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "init" || cmd.Name() == "version" {
			config = utils.DefaultConfig()
		} else {
			loaded, err := utils.LoadConfig(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize config: %w", err)
			}
			config = loaded
		}

		if logLevel != "" {
			config.Logging.Level = logLevel
		}
		l, err := logging.New(cmd.ErrOrStderr(), logging.Config{
			Level:  config.Logging.Level,
			Format: config.Logging.Format,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
}

// initCmd writes the default configuration file
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize orrery configuration",
	Long: `Write the default configuration file. Without --config the file is created at
$HOME/.orrery/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		path := cfgFile
		if path == "" {
			p, err := utils.GetConfigPath()
			if err != nil {
				return fmt.Errorf("failed to resolve config path: %w", err)
			}
			path = p
		}

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}

		if err := utils.SaveConfig(utils.DefaultConfig(), path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at: %s\n", path)
		return nil
	},
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", appName, version)
	},
}

// loadCatalog opens the configured catalog, falling back to the embedded J2000 table.
func loadCatalog() (*catalog.Catalog, error) {
	if config.Catalog.Path == "" {
		return catalog.Default()
	}
	c, err := catalog.LoadFile(config.Catalog.Path)
	if err != nil {
		return nil, err
	}
	logger.Debug("catalog loaded", "path", config.Catalog.Path, "bodies", c.Len())
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.orrery/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	initCmd.Flags().Bool("force", false, "overwrite an existing config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
