package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"CryptoBrain/internal/di"
	"CryptoBrain/pkg/config"
	"CryptoBrain/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, websocket stream, mining schedule and request consumer",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}
	c, err := di.InitializeContainer(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	c.Log.Info("starting",
		logger.Int("port", cfg.Server.Port),
		logger.Strings("symbols", cfg.Analysis.Symbols),
		logger.Bool("kafka", cfg.Kafka.Enabled),
		logger.Bool("redis", cfg.Redis.Enabled),
	)
	return c.App.Run(cmd.Context())
}
