package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"waitlist-rank-system/config"
	"waitlist-rank-system/utils"
)

const programName = "waitlist-rank-system"

var globalFlags = struct {
	envFile string
}{}

// runtime is what every subcommand needs once config is loaded.
type runtime struct {
	cfg    *config.Config
	logger *slog.Logger
}

var rt runtime

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Referral waitlist with scoring, ranking and reward tiers",
		RunE:  serveRun,
	}

	rootCmd.PersistentFlags().
		StringVar(&globalFlags.envFile, "env-file", "", "path to a .env file (default .env)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var files []string
		if globalFlags.envFile != "" {
			files = append(files, globalFlags.envFile)
		}
		cfg, err := config.Load(files...)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		rt.cfg = cfg
		rt.logger = cfg.NewLogger()
		slog.SetDefault(rt.logger)
		return nil
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(snapshotCommand())
	rootCmd.AddCommand(migrateCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func openDatabase() (*gorm.DB, error) {
	db, err := utils.OpenDatabase(rt.cfg.DatabaseURL, rt.cfg.SlogLevel())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := utils.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDatabase()
			if err != nil {
				rt.logger.Error("migration failed", "error", err)
				return err
			}
			closeDatabase(db)
			rt.logger.Info("database schema is up to date", "component", programName)
			return nil
		},
	}
}
