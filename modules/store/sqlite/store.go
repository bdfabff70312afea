package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/flemzord/bacbot/internal/predict"
	"github.com/flemzord/bacbot/internal/suit"
)

// Store implements predict.Store on a SQLite database.
type Store struct {
	db *sql.DB
}

var _ predict.Store = (*Store)(nil)

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

const selectColumns = `id, target, suit, source_game, status, attempt, message_id, created_at, resolved_at`

// Create implements predict.Store.
func (s *Store) Create(ctx context.Context, p *predict.Prediction) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (target, suit, source_game, status, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(target) DO NOTHING`,
		p.Target, p.Suit.String(), p.SourceGame, string(predict.StatusPending), toUnix(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("sqlite: create prediction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: create prediction: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: game %d", predict.ErrDuplicate, p.Target)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: create prediction id: %w", err)
	}
	p.ID = id
	p.Status = predict.StatusPending
	return nil
}

// Get implements predict.Store.
func (s *Store) Get(ctx context.Context, id int64) (predict.Prediction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM predictions WHERE id = ?`, id)
	p, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return predict.Prediction{}, fmt.Errorf("%w: id %d", predict.ErrNotFound, id)
	}
	return p, err
}

// Pending implements predict.Store.
func (s *Store) Pending(ctx context.Context) ([]predict.Prediction, error) {
	return s.query(ctx, `SELECT `+selectColumns+` FROM predictions WHERE status = ? ORDER BY target, id`,
		string(predict.StatusPending))
}

// Exists implements predict.Store.
func (s *Store) Exists(ctx context.Context, target int) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM predictions WHERE target = ?", target).Scan(&n); err != nil {
		return false, fmt.Errorf("sqlite: exists: %w", err)
	}
	return n > 0, nil
}

// Resolve implements predict.Store.
func (s *Store) Resolve(ctx context.Context, id int64, status predict.Status, attempt int, at time.Time) error {
	if !status.Terminal() {
		return fmt.Errorf("sqlite: cannot resolve to status %q", status)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE predictions SET status = ?, attempt = ?, resolved_at = ?
		WHERE id = ? AND status = ?`,
		string(status), attempt, toUnix(at), id, string(predict.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("sqlite: resolve: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("sqlite: resolve: %w", err)
	} else if n > 0 {
		return nil
	}

	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: id %d is %s", predict.ErrResolved, id, p.Status)
}

// SetMessage implements predict.Store.
func (s *Store) SetMessage(ctx context.Context, id, messageID int64) error {
	res, err := s.db.ExecContext(ctx, "UPDATE predictions SET message_id = ? WHERE id = ?", messageID, id)
	if err != nil {
		return fmt.Errorf("sqlite: set message: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: set message: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: id %d", predict.ErrNotFound, id)
	}
	return nil
}

// Recent implements predict.Store.
func (s *Store) Recent(ctx context.Context, limit int) ([]predict.Prediction, error) {
	if limit <= 0 {
		return nil, nil
	}
	return s.query(ctx, `SELECT `+selectColumns+` FROM predictions ORDER BY id DESC LIMIT ?`, limit)
}

// Stats implements predict.Store.
func (s *Store) Stats(ctx context.Context) (predict.Stats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT status, attempt, COUNT(*) FROM predictions GROUP BY status, attempt`)
	if err != nil {
		return predict.Stats{}, fmt.Errorf("sqlite: stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	st := predict.Stats{WinsByAttempt: make(map[int]int)}
	for rows.Next() {
		var (
			status     string
			attempt, n int
		)
		if err := rows.Scan(&status, &attempt, &n); err != nil {
			return predict.Stats{}, fmt.Errorf("sqlite: scan stats: %w", err)
		}
		st.Total += n
		switch predict.Status(status) {
		case predict.StatusPending:
			st.Pending += n
		case predict.StatusWon:
			st.Won += n
			st.WinsByAttempt[attempt] += n
		case predict.StatusLost:
			st.Lost += n
		case predict.StatusExpired:
			st.Expired += n
		}
	}
	if err := rows.Err(); err != nil {
		return predict.Stats{}, fmt.Errorf("sqlite: stats rows: %w", err)
	}
	return st, nil
}

// PruneBefore implements predict.Store.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM predictions WHERE status != ? AND resolved_at IS NOT NULL AND resolved_at < ?`,
		string(predict.StatusPending), toUnix(cutoff),
	)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: prune: %w", err)
	}
	return int(n), nil
}

// Reset implements predict.Store.
func (s *Store) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM predictions"); err != nil {
		return fmt.Errorf("sqlite: reset: %w", err)
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]predict.Prediction, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query predictions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []predict.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: prediction rows: %w", err)
	}
	return out, nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanPrediction(sc scanner) (predict.Prediction, error) {
	var (
		p          predict.Prediction
		suitText   string
		status     string
		createdAt  int64
		resolvedAt sql.NullInt64
	)
	err := sc.Scan(&p.ID, &p.Target, &suitText, &p.SourceGame, &status, &p.Attempt, &p.MessageID, &createdAt, &resolvedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, err
	}
	if err != nil {
		return p, fmt.Errorf("sqlite: scan prediction: %w", err)
	}

	r, _ := utf8.DecodeRuneInString(suitText)
	st, ok := suit.Parse(r)
	if !ok {
		return p, fmt.Errorf("sqlite: prediction %d has invalid suit %q", p.ID, suitText)
	}
	p.Suit = st
	p.Status = predict.Status(status)
	p.CreatedAt = fromUnix(createdAt)
	if resolvedAt.Valid {
		p.ResolvedAt = fromUnix(resolvedAt.Int64)
	}
	return p, nil
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
