package feed

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/chartkit/market"
)

// SQLiteStore keeps bar series keyed by symbol and interval.
type SQLiteStore struct {
	db *sql.DB
}

// Series describes one stored symbol/interval pair.
type Series struct {
	Symbol   string
	Interval string
	Count    int
	First    int64
	Last     int64
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save upserts bars in one transaction and returns the number written.
func (s *SQLiteStore) Save(ctx context.Context, symbol, interval string, bars []market.Bar) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO bars (symbol, interval, time, open, high, low, close, volume)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(symbol, interval, time) DO UPDATE SET
	open = excluded.open,
	high = excluded.high,
	low = excluded.low,
	close = excluded.close,
	volume = excluded.volume`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, b := range bars {
		if _, err := stmt.ExecContext(ctx, symbol, interval, b.Time, b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return 0, fmt.Errorf("insert bar %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(bars), nil
}

// Load returns bars with from <= time < to in time order. A zero to means
// no upper bound.
func (s *SQLiteStore) Load(ctx context.Context, symbol, interval string, from, to int64) ([]market.Bar, error) {
	q := `SELECT time, open, high, low, close, volume FROM bars
WHERE symbol = ? AND interval = ? AND time >= ?`
	args := []any{symbol, interval, from}
	if to > 0 {
		q += ` AND time < ?`
		args = append(args, to)
	}
	q += ` ORDER BY time`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []market.Bar
	for rows.Next() {
		var b market.Bar
		if err := rows.Scan(&b.Time, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		bars = append(bars, b)
	}
	return bars, rows.Err()
}

// List summarises what the store holds.
func (s *SQLiteStore) List(ctx context.Context) ([]Series, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT symbol, interval, COUNT(*), MIN(time), MAX(time)
FROM bars GROUP BY symbol, interval ORDER BY symbol, interval`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Series
	for rows.Next() {
		var sr Series
		if err := rows.Scan(&sr.Symbol, &sr.Interval, &sr.Count, &sr.First, &sr.Last); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}
