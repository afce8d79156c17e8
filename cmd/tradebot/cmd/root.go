package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tradebot",
	Short: "An automated single-symbol trading agent",
	Long: `Tradebot is an automated trading agent for a single symbol.

It fuses three live signals into a trading decision:
  - Price trend from a simple moving average over live ticks
  - Candlestick pattern classification over recent bars
  - News sentiment refreshed from recent headlines

Decisions are reconciled against the live brokerage position, throttled by
an order cooldown, and every action is recorded in an append-only ledger
with realized-PnL bookkeeping.`,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}
