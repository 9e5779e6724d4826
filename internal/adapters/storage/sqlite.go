package storage

// sqlite.go: historial de apuestas y cache diaria sobre database/sql.
//
// Estrategia:
//   - `bets`: una fila por apuesta. Se inserta pending y se actualiza una
//     única vez al liquidar (UPDATE ... WHERE status = 'pending').
//   - `daily_runs`: una fila por día con el reporte serializado en JSON.
//   - Las fechas se guardan como TEXT con layout fijo, así el orden
//     lexicográfico coincide con el cronológico en SQLite y en Postgres.
//   - Prune automático al arrancar: daily_runs > 30d.

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/valuebot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bets (
    id          TEXT PRIMARY KEY,
    match_name  TEXT             NOT NULL,
    competition TEXT             NOT NULL DEFAULT '',
    market      TEXT             NOT NULL,
    odds        DOUBLE PRECISION NOT NULL,
    stake       DOUBLE PRECISION NOT NULL,
    probability DOUBLE PRECISION NOT NULL DEFAULT 0,
    ev          DOUBLE PRECISION NOT NULL DEFAULT 0,
    phase       INTEGER          NOT NULL,
    legs        INTEGER          NOT NULL DEFAULT 1,
    status      TEXT             NOT NULL,
    profit      DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at  TEXT             NOT NULL,
    closed_at   TEXT
);

CREATE TABLE IF NOT EXISTS daily_runs (
    day        TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bets_status  ON bets(status);
CREATE INDEX IF NOT EXISTS idx_bets_created ON bets(created_at);
`

const (
	retentionRuns = 30 * 24 * time.Hour
	timeLayout    = "2006-01-02T15:04:05.000000Z"
	betColumns    = `id, match_name, competition, market, odds, stake, probability, ev,
		phase, legs, status, profit, created_at, closed_at`
)

// Storage implementa ports.BetStore y ports.RunCache sobre SQLite o Postgres.
type Storage struct {
	db      *sql.DB
	dialect dialect
}

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// Open abre el store con el driver dado: "sqlite" (default) o "postgres".
func Open(driver, dsn string) (*Storage, error) {
	switch driver {
	case "", "sqlite":
		return NewSQLiteStorage(dsn)
	case "postgres":
		return NewPostgresStorage(dsn)
	default:
		return nil, fmt.Errorf("storage.Open: unknown driver %q", driver)
	}
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada y aplica el schema.
func NewSQLiteStorage(path string) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	return initStorage(db, dialectSQLite)
}

func initStorage(db *sql.DB, d dialect) (*Storage, error) {
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: apply schema: %w", err)
	}
	s := &Storage{db: db, dialect: d}
	if err := s.pruneOld(context.Background()); err != nil {
		slog.Warn("daily run prune failed", "err", err)
	}
	return s, nil
}

// Insert implementa ports.BetStore.
func (s *Storage) Insert(ctx context.Context, bet domain.Bet) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO bets (`+betColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		bet.ID, bet.Match, bet.Competition, bet.Market,
		bet.Odds, bet.Stake, bet.Probability, bet.EV,
		int(bet.Phase), bet.Legs, string(bet.Status), bet.Profit,
		formatTime(bet.CreatedAt), formatTimePtr(bet.ClosedAt),
	); err != nil {
		return fmt.Errorf("storage.Insert: %w", err)
	}
	return nil
}

// Settle implementa ports.BetStore. Solo actualiza apuestas pending.
func (s *Storage) Settle(ctx context.Context, id string, status domain.BetStatus, profit float64, closedAt time.Time) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		UPDATE bets SET status = ?, profit = ?, closed_at = ?
		WHERE id = ? AND status = 'pending'`),
		string(status), profit, formatTime(closedAt), id,
	)
	if err != nil {
		return fmt.Errorf("storage.Settle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("storage.Settle: rows affected: %w", err)
	}
	if n == 1 {
		return nil
	}

	// Distinguir "no existe" de "ya liquidada"
	if _, err := s.Get(ctx, id); err != nil {
		return fmt.Errorf("storage.Settle: %w", err)
	}
	return fmt.Errorf("storage.Settle: %s: %w", id, domain.ErrBetSettled)
}

// Get implementa ports.BetStore.
func (s *Storage) Get(ctx context.Context, id string) (domain.Bet, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+betColumns+` FROM bets WHERE id = ?`), id)
	bet, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Bet{}, fmt.Errorf("storage.Get: %s: %w", id, domain.ErrBetNotFound)
	}
	if err != nil {
		return domain.Bet{}, fmt.Errorf("storage.Get: %w", err)
	}
	return bet, nil
}

// ListRecent implementa ports.BetStore. Las más recientes primero.
func (s *Storage) ListRecent(ctx context.Context, limit int) ([]domain.Bet, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.query(ctx, "storage.ListRecent",
		`SELECT `+betColumns+` FROM bets ORDER BY created_at DESC, id LIMIT ?`, limit)
}

// ListPending implementa ports.BetStore.
func (s *Storage) ListPending(ctx context.Context) ([]domain.Bet, error) {
	return s.query(ctx, "storage.ListPending",
		`SELECT `+betColumns+` FROM bets WHERE status = 'pending' ORDER BY created_at DESC, id`)
}

// ListSince implementa ports.BetStore. Orden cronológico.
func (s *Storage) ListSince(ctx context.Context, t time.Time) ([]domain.Bet, error) {
	return s.query(ctx, "storage.ListSince",
		`SELECT `+betColumns+` FROM bets WHERE created_at >= ? ORDER BY created_at, id`, formatTime(t))
}

// Stats implementa ports.BetStore. Solo cuenta apuestas liquidadas.
func (s *Storage) Stats(ctx context.Context, phase *domain.Phase) (domain.BetStats, error) {
	q := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'won'  THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'lost' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'void' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(stake), 0),
		       COALESCE(SUM(profit), 0),
		       COALESCE(AVG(odds), 0),
		       COALESCE(AVG(stake), 0)
		FROM bets
		WHERE status != 'pending'`
	var args []any
	if phase != nil {
		q += ` AND phase = ?`
		args = append(args, int(*phase))
	}

	var (
		st                        domain.BetStats
		total, won, lost, void    int64
		staked, profit, odds, avg float64
	)
	if err := s.db.QueryRowContext(ctx, s.rebind(q), args...).Scan(
		&total, &won, &lost, &void, &staked, &profit, &odds, &avg,
	); err != nil {
		return domain.BetStats{}, fmt.Errorf("storage.Stats: %w", err)
	}
	if total == 0 {
		return st, nil
	}

	st.Total = int(total)
	st.Won = int(won)
	st.Lost = int(lost)
	st.Void = int(void)
	st.WinRate = domain.Round(float64(won)/float64(total)*100, 2)
	st.TotalStaked = domain.Round(staked, 2)
	st.TotalProfit = domain.Round(profit, 2)
	if staked > 0 {
		st.ROI = domain.Round(profit/staked*100, 2)
	}
	st.AvgOdds = domain.Round(odds, 2)
	st.AvgStake = domain.Round(avg, 2)
	return st, nil
}

// SaveRun implementa ports.RunCache (upsert por día).
func (s *Storage) SaveRun(ctx context.Context, run domain.DailyRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: marshal: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO daily_runs (day, payload, created_at) VALUES (?, ?, ?)
		ON CONFLICT(day) DO UPDATE SET
			payload    = excluded.payload,
			created_at = excluded.created_at`),
		run.Day, string(payload), formatTime(run.CreatedAt),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: %w", err)
	}
	return nil
}

// LoadRun implementa ports.RunCache.
func (s *Storage) LoadRun(ctx context.Context, day string) (domain.DailyRun, bool, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT payload FROM daily_runs WHERE day = ?`), day).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DailyRun{}, false, nil
	}
	if err != nil {
		return domain.DailyRun{}, false, fmt.Errorf("storage.LoadRun: %w", err)
	}
	var run domain.DailyRun
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return domain.DailyRun{}, false, fmt.Errorf("storage.LoadRun: decode %s: %w", day, err)
	}
	return run, true, nil
}

// Close cierra la conexión a la base de datos.
func (s *Storage) Close() error {
	return s.db.Close()
}

// --- helpers internos ---

func (s *Storage) query(ctx context.Context, op, q string, args ...any) ([]domain.Bet, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, fmt.Errorf("%s: query: %w", op, err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		bets = append(bets, bet)
	}
	return bets, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBet(row scanner) (domain.Bet, error) {
	var (
		b                 domain.Bet
		phase             int
		status, createdAt string
		closedAt          sql.NullString
	)
	if err := row.Scan(
		&b.ID, &b.Match, &b.Competition, &b.Market,
		&b.Odds, &b.Stake, &b.Probability, &b.EV,
		&phase, &b.Legs, &status, &b.Profit,
		&createdAt, &closedAt,
	); err != nil {
		return domain.Bet{}, err
	}
	b.Phase = domain.Phase(phase)
	b.Status = domain.BetStatus(status)
	b.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if closedAt.Valid && closedAt.String != "" {
		if t, err := time.Parse(timeLayout, closedAt.String); err == nil {
			b.ClosedAt = &t
		}
	}
	return b, nil
}

// rebind convierte placeholders "?" a "$N" en Postgres.
func (s *Storage) rebind(q string) string {
	if s.dialect != dialectPostgres {
		return q
	}
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// pruneOld elimina cache diaria antigua para mantener la DB ligera.
func (s *Storage) pruneOld(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-retentionRuns)
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM daily_runs WHERE created_at < ?`), formatTime(cutoff)); err != nil {
		return fmt.Errorf("storage.pruneOld: %w", err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func formatTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
