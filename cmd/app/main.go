package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"CryptoBrain/internal/di"
	"CryptoBrain/pkg/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "cryptobrain",
	Short: "Multi-timeframe crypto analysis and pattern mining",
	Long: `CryptoBrain reads OHLCV candles from ClickHouse, scores every timeframe,
classifies market regimes and mines multi-timeframe patterns that are
re-validated out of sample.

Examples:
  cryptobrain serve --config configs/config.yaml
  cryptobrain analyze BTC/USDT
  cryptobrain brain BTC/USDT --prompt
  cryptobrain mine BTC/USDT --days 180`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "config file path (empty for defaults plus env)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// withContainer loads config, wires dependencies and releases them after fn.
func withContainer(fn func(ctx context.Context, c *di.Container) error) error {
	cfg, err := config.LoadWithEnv(configPath)
	if err != nil {
		return err
	}
	c, err := di.InitializeContainer(cfg)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer c.Close()
	return fn(context.Background(), c)
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
