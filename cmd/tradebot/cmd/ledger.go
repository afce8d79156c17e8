package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexroth/tradebot/journal"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Query the trade ledger",
	Long: `Query and display trade ledger records from the SQLite database.

Examples:
  tradebot ledger today
  tradebot ledger day 2026-08-31
  tradebot ledger summary`,
}

var ledgerTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "List ledger entries recorded today",
	Args:  cobra.NoArgs,
	RunE:  runLedgerToday,
}

var ledgerDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List ledger entries for a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runLedgerDay,
}

var ledgerSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show realized PnL per symbol",
	Args:  cobra.NoArgs,
	RunE:  runLedgerSummary,
}

var ledgerDBPath string

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerTodayCmd)
	ledgerCmd.AddCommand(ledgerDayCmd)
	ledgerCmd.AddCommand(ledgerSummaryCmd)

	ledgerCmd.PersistentFlags().StringVarP(&ledgerDBPath, "db", "d", "./ledger.db", "path to SQLite ledger DB")
}

func runLedgerToday(cmd *cobra.Command, args []string) error {
	loc := time.Local
	return printDay(time.Now().In(loc).Format("2006-01-02"), loc)
}

func runLedgerDay(cmd *cobra.Command, args []string) error {
	return printDay(args[0], time.Local)
}

func printDay(day string, loc *time.Location) error {
	start, end, err := dayBounds(loc, day)
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	store, err := journal.NewSQLite(ledgerDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	entries, err := store.ListEntriesBetween(start, end)
	if err != nil {
		return fmt.Errorf("query entries: %w", err)
	}

	fmt.Println(journal.FormatEntriesOrg(entries))
	return nil
}

func runLedgerSummary(cmd *cobra.Command, args []string) error {
	store, err := journal.NewSQLite(ledgerDBPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	sums, err := store.Summarize()
	if err != nil {
		return fmt.Errorf("query summary: %w", err)
	}

	fmt.Print(journal.FormatSummaries(sums))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.Add(24 * time.Hour), nil
}
