package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/regimen/internal/config"
	"github.com/hyperengineering/regimen/internal/report"
	"github.com/hyperengineering/regimen/internal/store"
)

var (
	exportUser string
	exportOut  string
	exportDB   string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a user's protocol progress to an Excel workbook",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "user id to export (required)")
	exportCmd.Flags().StringVar(&exportOut, "out", "regimen-report.xlsx", "output workbook path")
	exportCmd.Flags().StringVar(&exportDB, "db", "", "database path (defaults to configured path)")
	exportCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	dbPath := exportDB
	if dbPath == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		dbPath = cfg.Database.Path
	}

	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer db.Close()

	progress, err := db.GetProgress(context.Background(), exportUser)
	if err != nil {
		return fmt.Errorf("failed to load progress: %w", err)
	}

	if err := report.WriteReport(exportOut, exportUser, *progress); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Printf("report written to %s\n", exportOut)
	return nil
}
