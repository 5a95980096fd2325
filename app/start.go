package app

import (
	"github.com/spf13/cobra"

	"github.com/GenziCode/genzi-rms-sub003/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "Do not migrate the schema and seed the catalog on start")

	rootCmd.AddCommand(startCmd)
}

var (
	skipMigrate bool

	startCmd = &cobra.Command{
		Use:     "start",
		Short:   "Start the authorization web service",
		PreRunE: loadConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := daemon.New(cmd.Context(), &cfg)
			if err != nil {
				return err
			}

			if !skipMigrate {
				if err = d.Migrate(cmd.Context()); err != nil {
					d.Close()

					return err
				}
			}

			return d.Start(cmd.Context())
		},
	}
)
