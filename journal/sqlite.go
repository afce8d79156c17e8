package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists ledger rows in a SQLite database, giving the ledger
// crash-durability and a query surface for the CLI.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the ledger database at path.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("journal: open sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("journal: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Append(e Entry) error {
	var pnl sql.NullFloat64
	if e.PnLUSD != nil {
		pnl = sql.NullFloat64{Float64: *e.PnLUSD, Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO entries
		(entry_id, ts, action, symbol, quantity, price, sentiment, trend, invested_usd, pnl_usd, cash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Time.UTC(), string(e.Action), e.Symbol, e.Qty, e.Price,
		e.Sentiment, e.Trend, e.InvestedUSD, pnl, e.CashAfter,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
