package main

import (
	"context"

	"github.com/spf13/cobra"

	"CryptoBrain/internal/di"
)

var (
	mineDays  int
	minTrades int
)

var mineCmd = &cobra.Command{
	Use:   "mine <symbol>",
	Short: "Run one mining and tuning pass and print the result",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *di.Container) error {
			res, err := c.Mining.MinePatterns(ctx, args[0], mineDays)
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List the best active patterns",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withContainer(func(ctx context.Context, c *di.Container) error {
			rows, err := c.Mining.GetActivePatterns(ctx, minTrades)
			if err != nil {
				return err
			}
			return printJSON(rows)
		})
	},
}

func init() {
	mineCmd.Flags().IntVar(&mineDays, "days", 90, "lookback in days")
	patternsCmd.Flags().IntVar(&minTrades, "min-trades", 10, "minimum validated trades")
	rootCmd.AddCommand(mineCmd, patternsCmd)
}
