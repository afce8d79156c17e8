package journal

import (
	"database/sql"
	"time"
)

// ListEntriesBetween returns entries whose timestamp is within [start, end),
// oldest first.
func (s *SQLiteStore) ListEntriesBetween(start, end time.Time) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT entry_id, ts, action, symbol, quantity, price, sentiment, trend, invested_usd, pnl_usd, cash
		FROM entries
		WHERE ts >= ? AND ts < ?
		ORDER BY ts ASC`, start.UTC(), end.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Summary aggregates realized PnL and trade counts per symbol.
type Summary struct {
	Symbol      string
	Trades      int
	RealizedPnL float64
}

// Summarize reports realized PnL per symbol over closing entries.
func (s *SQLiteStore) Summarize() ([]Summary, error) {
	rows, err := s.db.Query(`
		SELECT symbol, COUNT(*) AS trades, COALESCE(SUM(pnl_usd), 0) AS pnl
		FROM entries
		WHERE pnl_usd IS NOT NULL
		GROUP BY symbol
		ORDER BY symbol`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		if err := rows.Scan(&sum.Symbol, &sum.Trades, &sum.RealizedPnL); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e   Entry
		pnl sql.NullFloat64
	)
	if err := rows.Scan(
		&e.ID, &e.Time, &e.Action, &e.Symbol, &e.Qty, &e.Price,
		&e.Sentiment, &e.Trend, &e.InvestedUSD, &pnl, &e.CashAfter,
	); err != nil {
		return Entry{}, err
	}
	if pnl.Valid {
		v := pnl.Float64
		e.PnLUSD = &v
	}
	return e, nil
}
