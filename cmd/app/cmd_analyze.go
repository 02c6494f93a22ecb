package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"CryptoBrain/internal/di"
	domrepo "CryptoBrain/internal/domain/repository"
)

var (
	analyzeRefresh bool
	regimeTF       string
	regimeCandles  int
	brainPrompt    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <symbol>",
	Short: "Print the multi-timeframe confluence analysis as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *di.Container) error {
			res, err := c.Analysis.AnalyzeAllTimeframes(ctx, args[0], analyzeRefresh)
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

var regimeCmd = &cobra.Command{
	Use:   "regime <symbol>",
	Short: "Print the market regime of one timeframe, or all with --tf all",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *di.Container) error {
			if regimeTF == "all" {
				res, err := c.Regime.MarketRegime(ctx, args[0], regimeCandles)
				if err != nil {
					return err
				}
				return printJSON(res)
			}
			tf, err := domrepo.ParseTimeframe(regimeTF)
			if err != nil {
				return err
			}
			res, err := c.Regime.DetectRegime(ctx, args[0], tf, regimeCandles)
			if err != nil {
				return err
			}
			return printJSON(res)
		})
	},
}

var brainCmd = &cobra.Command{
	Use:   "brain <symbol>",
	Short: "Print the master decision report, or only its prompt with --prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return withContainer(func(ctx context.Context, c *di.Container) error {
			rep, err := c.Brain.Report(ctx, args[0])
			if err != nil {
				return err
			}
			if brainPrompt {
				fmt.Println(rep.Prompt)
				return nil
			}
			return printJSON(rep)
		})
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeRefresh, "refresh", false, "bypass the analysis cache")
	regimeCmd.Flags().StringVar(&regimeTF, "tf", "1h", "timeframe, or all")
	regimeCmd.Flags().IntVar(&regimeCandles, "n", 200, "candles per timeframe")
	brainCmd.Flags().BoolVar(&brainPrompt, "prompt", false, "print only the decision prompt")
	rootCmd.AddCommand(analyzeCmd, regimeCmd, brainCmd)
}
