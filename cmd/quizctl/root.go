package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gokatarajesh/techquiz/internal/config"
	"github.com/gokatarajesh/techquiz/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "quizctl",
	Short:         "Operate the tech quiz question store",
	Long:          "quizctl imports question exports into the configured store and runs selections against it.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("env-file", "configs/.env", "Env file loaded outside production")
	rootCmd.PersistentFlags().String("source", "", "Question source (overrides QUESTION_SOURCE)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(drawCmd)
}

// loadConfig reads the env file, applies flag overrides and validates.
func loadConfig(cmd *cobra.Command) (*config.App, zerolog.Logger, error) {
	if os.Getenv("APP_ENV") != "production" {
		if p, _ := cmd.Flags().GetString("env-file"); p != "" {
			_ = godotenv.Load(p)
		}
	}
	if src, _ := cmd.Flags().GetString("source"); src != "" {
		if err := os.Setenv("QUESTION_SOURCE", src); err != nil {
			return nil, zerolog.Nop(), err
		}
	}

	cfg, err := config.Load(context.Background())
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}
	logger := logging.New(cfg.Name+"-ctl", cfg.Env, cfg.LogLevel)
	return cfg, logger, nil
}
