package journal

const schema = `
CREATE TABLE IF NOT EXISTS entries (
	entry_id TEXT PRIMARY KEY,
	ts DATETIME NOT NULL,
	action TEXT NOT NULL,
	symbol TEXT NOT NULL,
	quantity REAL NOT NULL,
	price REAL NOT NULL,
	sentiment TEXT NOT NULL,
	trend TEXT NOT NULL,
	invested_usd REAL NOT NULL,
	pnl_usd REAL,
	cash REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_ts ON entries(ts);
CREATE INDEX IF NOT EXISTS idx_entries_symbol ON entries(symbol);
`
