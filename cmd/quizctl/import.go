package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gokatarajesh/techquiz/internal/app"
	"github.com/gokatarajesh/techquiz/internal/question"
)

var importCmd = &cobra.Command{
	Use:   "import <export.json>",
	Short: "Load a Realtime Database export into the postgres or mongo store",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	qs, err := question.ParseExport(f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	backends, err := app.OpenBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer backends.Close(ctx)

	sink, ok := backends.Source.(question.Sink)
	if !ok {
		return fmt.Errorf("question source %q is read-only", cfg.QuestionSource)
	}

	n, err := question.Import(ctx, sink, qs)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d questions into %s\n", n, cfg.QuestionSource)
	return nil
}
