package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatEntryOrg renders one ledger entry as an Org-mode block suitable for
// pasting into a trading journal. Structured facts live in a PROPERTIES
// drawer for easy search.
func FormatEntryOrg(e Entry) string {
	heading := fmt.Sprintf("** %s %s (%s)", e.Symbol, e.Action, shortID(e.ID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":ENTRY_ID: %s\n", e.ID))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", e.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":ACTION: %s\n", e.Action))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", e.Symbol))
	b.WriteString(fmt.Sprintf(":QTY: %.0f\n", e.Qty))
	b.WriteString(fmt.Sprintf(":PRICE: %.2f\n", e.Price))
	b.WriteString(fmt.Sprintf(":SENTIMENT: %s\n", e.Sentiment))
	b.WriteString(fmt.Sprintf(":TREND: %s\n", e.Trend))
	b.WriteString(fmt.Sprintf(":INVESTED_USD: %.2f\n", e.InvestedUSD))
	if e.PnLUSD != nil {
		b.WriteString(fmt.Sprintf(":PNL_USD: %.2f\n", *e.PnLUSD))
	}
	b.WriteString(fmt.Sprintf(":CASH: %.2f\n", e.CashAfter))
	b.WriteString(":END:\n")

	return b.String()
}

// FormatEntriesOrg renders multiple entries separated by blank lines.
func FormatEntriesOrg(entries []Entry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatEntryOrg(e))
	}
	return b.String()
}

// FormatSummaries renders per-symbol realized PnL as a plain table.
func FormatSummaries(sums []Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%-8s %8s %14s\n", "SYMBOL", "TRADES", "REALIZED_PNL"))
	for _, s := range sums {
		b.WriteString(fmt.Sprintf("%-8s %8d %14.2f\n", s.Symbol, s.Trades, s.RealizedPnL))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
