package journal

const Schema = `
CREATE TABLE IF NOT EXISTS positions (
	position_id TEXT PRIMARY KEY,
	session_date DATETIME NOT NULL,
	strategy TEXT NOT NULL,
	side TEXT NOT NULL,
	requested_at DATETIME NOT NULL,
	entry_price REAL NOT NULL,
	size INTEGER NOT NULL,
	realized_pl REAL NOT NULL,
	status TEXT NOT NULL,
	reason TEXT NOT NULL,
	closed_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	date DATETIME NOT NULL,
	realized_pl REAL NOT NULL,
	capital REAL NOT NULL,
	positions INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_positions_session ON positions(session_date);
CREATE INDEX IF NOT EXISTS idx_sessions_date ON sessions(date);
`
