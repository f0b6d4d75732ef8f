package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"GhostRegime/internal/di"
	applogger "GhostRegime/pkg/logger"
)

var (
	buildDate  string
	buildForce bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build one snapshot and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, cleanup, err := di.InitializeApp(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		res, err := app.BuildOnce(ctx, buildDate, buildForce)
		if err != nil {
			app.Logger().Error("build failed", applogger.String("date", buildDate), applogger.Error(err))
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildDate, "date", "", "as-of date YYYY-MM-DD (default: current business day)")
	buildCmd.Flags().BoolVar(&buildForce, "force", false, "recompute even when a row exists")
	rootCmd.AddCommand(buildCmd)
}
