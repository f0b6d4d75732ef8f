package main

import (
	"github.com/spf13/cobra"

	"GhostRegime/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run the daily build schedule",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, cleanup, err := di.InitializeApp(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		return app.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
