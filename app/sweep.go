package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GenziCode/genzi-rms-sub003/internal/daemon"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(sweepCmd)
}

var sweepCmd = &cobra.Command{
	Use:     "sweep",
	Short:   "Delete role assignments that expired before the retention period",
	PreRunE: loadConfig,
	RunE: func(cmd *cobra.Command, _ []string) error {
		d, err := daemon.New(cmd.Context(), &cfg)
		if err != nil {
			return err
		}

		defer d.Close()

		n, err := d.Sweeper().Sweep(cmd.Context())
		if err != nil {
			return err
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired assignments\n", n)

		return err
	},
}
