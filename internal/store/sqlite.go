package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"gomentum/internal/domain"
)

// Series names for stored value points.
const (
	SeriesPortfolio = "portfolio"
	SeriesBenchmark = "benchmark"
)

// RunSummary is the stored header of a completed backtest run.
type RunSummary struct {
	ID             int64
	CreatedAt      time.Time
	StartDate      time.Time
	EndDate        time.Time
	InitialCapital float64
	FinalValue     float64
	TotalReturn    float64
	MaxDrawdown    float64
	Sharpe         float64
	SharpeDefined  bool
	TradeCount     int
}

// RunStore records backtest runs in SQLite: one header row per run plus the
// full value series and trade ledger.
type RunStore struct {
	db *sql.DB
}

// OpenRunStore opens (or creates) the SQLite database at path and applies
// the schema.
func OpenRunStore(path string) (*RunStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// Single writer. WAL keeps readers unblocked while a run is saved.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring sqlite: %w", err)
	}

	s := &RunStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *RunStore) Close() error { return s.db.Close() }

func (s *RunStore) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	created_at      TEXT NOT NULL,
	start_date      TEXT NOT NULL,
	end_date        TEXT NOT NULL,
	initial_capital REAL NOT NULL,
	final_value     REAL NOT NULL,
	total_return    REAL NOT NULL,
	max_drawdown    REAL NOT NULL,
	sharpe          REAL,
	trade_count     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_values (
	run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	series TEXT NOT NULL,
	date   TEXT NOT NULL,
	value  REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_values ON run_values(run_id, series, date);

CREATE TABLE IF NOT EXISTS run_trades (
	run_id   INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	date     TEXT NOT NULL,
	symbol   TEXT NOT NULL,
	action   TEXT NOT NULL,
	quantity INTEGER NOT NULL,
	price    REAL NOT NULL,
	costs    REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_trades ON run_trades(run_id, date);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrating schema: %w", err)
	}
	return nil
}

// SaveRun stores a run header with its value series and trades in one
// transaction and returns the new run ID.
func (s *RunStore) SaveRun(ctx context.Context, summary RunSummary, values, benchmark []domain.ValuePoint, trades []domain.Trade) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var sharpe any
	if summary.SharpeDefined {
		sharpe = summary.Sharpe
	}
	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (created_at, start_date, end_date, initial_capital,
			final_value, total_return, max_drawdown, sharpe, trade_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339),
		summary.StartDate.Format(time.DateOnly),
		summary.EndDate.Format(time.DateOnly),
		summary.InitialCapital, summary.FinalValue, summary.TotalReturn,
		summary.MaxDrawdown, sharpe, len(trades))
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	insertValue, err := tx.PrepareContext(ctx,
		`INSERT INTO run_values (run_id, series, date, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insertValue.Close()

	for _, p := range values {
		if _, err := insertValue.ExecContext(ctx, runID, SeriesPortfolio, p.Date.Format(time.DateOnly), p.Value); err != nil {
			return 0, fmt.Errorf("inserting value point: %w", err)
		}
	}
	for _, p := range benchmark {
		if _, err := insertValue.ExecContext(ctx, runID, SeriesBenchmark, p.Date.Format(time.DateOnly), p.Value); err != nil {
			return 0, fmt.Errorf("inserting benchmark point: %w", err)
		}
	}

	insertTrade, err := tx.PrepareContext(ctx, `
		INSERT INTO run_trades (run_id, date, symbol, action, quantity, price, costs)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer insertTrade.Close()

	for _, t := range trades {
		if _, err := insertTrade.ExecContext(ctx, runID, t.Date.Format(time.DateOnly),
			t.Symbol, string(t.Action), t.Quantity, t.Price, t.Costs); err != nil {
			return 0, fmt.Errorf("inserting trade: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return runID, nil
}

// ListRuns returns the headers of all stored runs, newest first.
func (s *RunStore) ListRuns(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, start_date, end_date, initial_capital,
			final_value, total_return, max_drawdown, sharpe, trade_count
		FROM runs ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun returns the header of a single run. A missing run yields
// sql.ErrNoRows.
func (s *RunStore) GetRun(ctx context.Context, id int64) (RunSummary, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, start_date, end_date, initial_capital,
			final_value, total_return, max_drawdown, sharpe, trade_count
		FROM runs WHERE id = ?`, id)
	return scanRun(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunSummary, error) {
	var r RunSummary
	var createdAt, startDate, endDate string
	var sharpe sql.NullFloat64
	if err := row.Scan(&r.ID, &createdAt, &startDate, &endDate, &r.InitialCapital,
		&r.FinalValue, &r.TotalReturn, &r.MaxDrawdown, &sharpe, &r.TradeCount); err != nil {
		return RunSummary{}, err
	}
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.StartDate, _ = time.Parse(time.DateOnly, startDate)
	r.EndDate, _ = time.Parse(time.DateOnly, endDate)
	r.Sharpe, r.SharpeDefined = sharpe.Float64, sharpe.Valid
	return r, nil
}

// RunValues returns one stored value series of a run, ordered by date.
func (s *RunStore) RunValues(ctx context.Context, id int64, series string) ([]domain.ValuePoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, value FROM run_values
		WHERE run_id = ? AND series = ? ORDER BY date`, id, series)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []domain.ValuePoint
	for rows.Next() {
		var date string
		var p domain.ValuePoint
		if err := rows.Scan(&date, &p.Value); err != nil {
			return nil, err
		}
		p.Date, _ = time.Parse(time.DateOnly, date)
		points = append(points, p)
	}
	return points, rows.Err()
}

// RunTrades returns the trade ledger of a run, ordered by date.
func (s *RunStore) RunTrades(ctx context.Context, id int64) ([]domain.Trade, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, symbol, action, quantity, price, costs
		FROM run_trades WHERE run_id = ? ORDER BY date, symbol`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []domain.Trade
	for rows.Next() {
		var date, action string
		var t domain.Trade
		if err := rows.Scan(&date, &t.Symbol, &action, &t.Quantity, &t.Price, &t.Costs); err != nil {
			return nil, err
		}
		t.Date, _ = time.Parse(time.DateOnly, date)
		t.Action = domain.TradeAction(action)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
