// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/GenziCode/genzi-rms-sub003/internal/config"
	"github.com/GenziCode/genzi-rms-sub003/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "genzi-rms-authz",
	Short: "genzi-rms-authz decides who may do what in a tenant",
	Long: `genzi-rms-authz is the authorization engine of the genzi retail management system.
It resolves role assignments, category grants, form and field rules into decisions.`,
	Args: cobra.OnlyValidArgs,
}

var (
	configPath string // Path to the configuration directory
	devMode    bool

	cfg config.Config
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "./etc/", "Directory containing main.toml")
	rootCmd.PersistentFlags().BoolVar(&devMode, "dev", false, "Enable dev mode")
}

// loadConfig reads the configuration and initialises the logger.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	if devMode {
		cfg.DevMode = true
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
