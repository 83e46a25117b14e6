package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"resume-assistant/internal/assistant"
	"resume-assistant/internal/bootstrap"
	"resume-assistant/internal/documents"
	"resume-assistant/internal/session"
	"resume-assistant/internal/shared/config"
	"resume-assistant/internal/shared/storage/db"
)

var purgeCmd = &cobra.Command{
	Use:   "purge-sessions",
	Short: "Delete expired sessions and their uploaded documents",
	RunE:  runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is not set")
	}
	sqlDB, err := db.Connect(cmd.Context(), cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultCLIOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	store, err := bootstrap.BuildObjectStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	svc := assistant.NewService(session.NewPGStore(sqlDB), documents.NewService(store), nil, cfg.SessionTTL)

	n, err := svc.PurgeExpired(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "purged %d expired sessions\n", n)
	return err
}
