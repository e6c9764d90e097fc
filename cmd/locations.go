package cmd

import (
	"fmt"

	"ride-booking-api/models"

	"github.com/spf13/cobra"
)

func newSeedLocationsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "seed-locations",
		Short: "Inserts the default drop-off locations that are missing",
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

			n, err := s.SeedLocations(cmd.Context(), models.DefaultDropoffLocations())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ added %d drop-off locations\n", n)
			return nil
		},
	}
}
