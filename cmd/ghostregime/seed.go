package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"GhostRegime/internal/di"
	applogger "GhostRegime/pkg/logger"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a JSON-lines history file and mark the store seeded",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := seedFile
		if path == "" {
			path = cfg.History.SeedFile
		}
		if path == "" {
			return errors.New("seed: --file is required when history.seed_file is unset")
		}

		app, cleanup, err := di.InitializeApp(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		n, err := app.Seed(cmd.Context(), path)
		if err != nil {
			return err
		}
		app.Logger().Info("seed complete", applogger.String("file", path), applogger.Int("rows", n))
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d rows from %s\n", n, path)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedFile, "file", "", "JSON-lines history file (default: history.seed_file)")
	rootCmd.AddCommand(seedCmd)
}
