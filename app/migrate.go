package app

import (
	"github.com/spf13/cobra"

	"github.com/GenziCode/genzi-rms-sub003/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	Short:   "Migrate the schema and seed the permission catalog and system roles",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := daemon.New(cmd.Context(), &cfg)
		if err != nil {
			return err
		}

		defer d.Close()

		return d.Migrate(cmd.Context())
	},
}
