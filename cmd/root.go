package cmd

import (
	"fmt"
	"strings"

	"ride-booking-api/config"
	"ride-booking-api/logging"
	"ride-booking-api/store"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gorm.io/gorm"
)

var availableOutputs = []string{"text", "json"}

var availableLogLevels = []string{
	logging.LevelTrace,
	logging.LevelDebug,
	logging.LevelInfo,
	logging.LevelWarn,
	logging.LevelError,
}

// NewRootCommand assembles the CLI. Each call returns an independent tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ride-booking-api",
		Short:         "Account and authorization backend for the ride booking app",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringP("config", "C", "", "Path to a config file (yaml, json or toml); RIDES_* environment variables always apply")
	root.PersistentFlags().StringP("log-level", "l", "", fmt.Sprintf("Overrides the log level (one of [%s])", strings.Join(availableLogLevels, ", ")))
	root.PersistentFlags().StringP("output", "o", "text", fmt.Sprintf("Sets the output format where applicable (one of [%s])", strings.Join(availableOutputs, ", ")))

	root.AddCommand(
		newServeCommand(),
		newMigrateCommand(),
		newCreatePrimeAdminCommand(),
		newSeedLocationsCommand(),
		newRemoveAdminsCommand(),
		newListAccountsCommand(),
	)
	return root
}

func Execute() error {
	return NewRootCommand().Execute()
}

// loadConfig reads file and environment, then applies flag overrides.
// bindings maps a local flag name to its config key.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	v, err := config.New(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		v.Set("log.level", level)
	}
	for flagName, key := range bindings {
		if f := cmd.Flags().Lookup(flagName); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag[%s]: %w", flagName, err)
			}
		}
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.Log.Level, cfg.Log.File, cfg.Env == config.EnvProduction)
	return cfg, nil
}

// openStore connects, migrates and returns the store plus a close func.
func openStore(cfg *config.Config) (*store.Store, func(), error) {
	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { closeQuietly(db) }
	if err := config.Migrate(db); err != nil {
		closeDB()
		return nil, nil, err
	}
	return store.New(db, store.WithMaxIDAttempts(cfg.Database.MaxIDAttempts)), closeDB, nil
}

func closeQuietly(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Warn("failed to close database")
	}
}

func outputFormat(flags *pflag.FlagSet) string {
	output, _ := flags.GetString("output")
	return output
}
