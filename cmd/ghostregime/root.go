package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"GhostRegime/pkg/config"
)

var (
	cfg        *config.Config
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ghostregime",
	Short: "Daily market regime classifier",
	Long:  "Fetches cross-asset daily series, votes a fixed signal bank onto risk and inflation axes, and publishes a regime with sleeve scales.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadWithEnv(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
