package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Creates or updates the database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return err
			}
			s, closeDB, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeDB()
			fmt.Fprintln(cmd.OutOrStdout(), "✅ migrations applied")

			if backfill, _ := cmd.Flags().GetBool("backfill-credits"); backfill {
				n, err := s.BackfillCredits(cmd.Context(), cfg.Policy.DefaultCredits)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ gave %d credits to %d accounts\n", cfg.Policy.DefaultCredits, n)
			}
			return nil
		},
	}
	cmd.Flags().Bool("backfill-credits", false, "Also sets the default credit balance on standard accounts that have none")
	return cmd
}
