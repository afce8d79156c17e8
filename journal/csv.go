package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

// csvHeader is written once, when the file is created.
var csvHeader = []string{
	"timestamp", "action", "symbol", "quantity", "price",
	"sentiment", "trend", "invested_usd", "pnl_usd", "cash",
}

// CSVStore appends ledger rows to a CSV file. The file is opened in append
// mode so restarts keep extending the same log.
type CSVStore struct {
	w *csv.Writer
	f *os.File
}

// NewCSV opens (or creates) the ledger file at path.
func NewCSV(path string) (*CSVStore, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("journal: open csv: %w", err)
	}

	w := csv.NewWriter(f)

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("journal: stat csv: %w", err)
	}
	if info.Size() == 0 {
		if err := w.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("journal: write csv header: %w", err)
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, err
		}
	}

	return &CSVStore{w: w, f: f}, nil
}

// Append writes one row and flushes it to disk.
func (s *CSVStore) Append(e Entry) error {
	pnl := ""
	if e.PnLUSD != nil {
		pnl = f(*e.PnLUSD)
	}

	if err := s.w.Write([]string{
		e.Time.UTC().Format(time.RFC3339),
		string(e.Action),
		e.Symbol,
		f(e.Qty),
		f(e.Price),
		e.Sentiment,
		e.Trend,
		f(e.InvestedUSD),
		pnl,
		f(e.CashAfter),
	}); err != nil {
		return err
	}

	s.w.Flush()
	return s.w.Error()
}

func (s *CSVStore) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		return err
	}
	return s.f.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
