// Package analytics records privacy-conscious visitor metrics and contact
// form submissions for the admin dashboard.
package analytics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/Zachkp/cyber-portfolio/internal/mailer"
)

// DefaultRetention is how long visits are kept.
const DefaultRetention = 365 * 24 * time.Hour

var ErrNotFound = errors.New("analytics: not found")

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hashed_ip TEXT NOT NULL,
	user_agent TEXT NOT NULL DEFAULT '',
	path TEXT NOT NULL DEFAULT '',
	timestamp INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS visitors_timestamp ON visitors (timestamp);
CREATE TABLE IF NOT EXISTS messages (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	email TEXT NOT NULL,
	body TEXT NOT NULL,
	status TEXT NOT NULL,
	created_at INTEGER NOT NULL
);`

type VisitorMetric struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type MessageStatus string

const (
	StatusSent   MessageStatus = "sent"
	StatusFailed MessageStatus = "failed"
)

type MessageRecord struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Email     string        `json:"email"`
	Body      string        `json:"body"`
	Status    MessageStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
}

type PathStat struct {
	Path   string `json:"path" db:"path"`
	Visits int64  `json:"visits" db:"visits"`
}

type AdminStats struct {
	TotalVisitors    int64           `json:"total_visitors"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	VisitorsToday    int64           `json:"visitors_today"`
	VisitorsThisWeek int64           `json:"visitors_this_week"`
	TotalMessages    int64           `json:"total_messages"`
	FailedMessages   int64           `json:"failed_messages"`
	TopPaths         []PathStat      `json:"top_paths"`
	RecentVisitors   []VisitorMetric `json:"recent_visitors"`
	RecentMessages   []MessageRecord `json:"recent_messages"`
}

type visitorRow struct {
	ID        int64  `db:"id"`
	HashedIP  string `db:"hashed_ip"`
	UserAgent string `db:"user_agent"`
	Path      string `db:"path"`
	Timestamp int64  `db:"timestamp"`
}

type messageRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Body      string `db:"body"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
}

// Open connects to the SQLite database at path.
func Open(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("analytics: open %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	return db, nil
}

type Store struct {
	db     *sqlx.DB
	hasher *Hasher
	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func NewStore(db *sqlx.DB, hasher *Hasher, opts ...Option) *Store {
	s := &Store{db: db, hasher: hasher, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Hasher() *Hasher { return s.hasher }

// Migrate creates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("analytics: migrate: %w", err)
	}
	return nil
}

// RecordVisit stores a page view keyed by the hashed client IP.
func (s *Store) RecordVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, timestamp) VALUES (?, ?, ?, ?)`,
		s.hasher.Hash(ip), userAgent, path, s.now().Unix())
	return err
}

// RecordMessage logs a contact submission and returns its id.
func (s *Store) RecordMessage(ctx context.Context, msg mailer.ContactMessage, status MessageStatus) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, name, email, body, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, msg.Name, msg.Email, msg.Message, string(status), s.now().Unix())
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) Visitors(ctx context.Context, limit int) ([]VisitorMetric, error) {
	var rows []visitorRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, hashed_ip, user_agent, path, timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]VisitorMetric, len(rows))
	for i, r := range rows {
		out[i] = VisitorMetric{
			ID:        r.ID,
			HashedIP:  r.HashedIP,
			UserAgent: r.UserAgent,
			Path:      r.Path,
			Timestamp: time.Unix(r.Timestamp, 0).UTC(),
		}
	}
	return out, nil
}

func (s *Store) Messages(ctx context.Context, limit int) ([]MessageRecord, error) {
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, name, email, body, status, created_at
		FROM messages
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	out := make([]MessageRecord, len(rows))
	for i, r := range rows {
		out[i] = MessageRecord{
			ID:        r.ID,
			Name:      r.Name,
			Email:     r.Email,
			Body:      r.Body,
			Status:    MessageStatus(r.Status),
			CreatedAt: time.Unix(r.CreatedAt, 0).UTC(),
		}
	}
	return out, nil
}

func (s *Store) DeleteMessage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Cleanup removes visits older than retention.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention).Unix()
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info("analytics: privacy cleanup", "removed", n, "retention", retention)
	}
	return n, nil
}

// Stats gathers everything the dashboard shows.
func (s *Store) Stats(ctx context.Context) (*AdminStats, error) {
	now := s.now().UTC()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	stats := &AdminStats{}

	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{midnight.Unix()}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{now.Add(-7 * 24 * time.Hour).Unix()}},
		{&stats.TotalMessages, `SELECT COUNT(*) FROM messages`, nil},
		{&stats.FailedMessages, `SELECT COUNT(*) FROM messages WHERE status = ?`, []any{string(StatusFailed)}},
	}
	for _, c := range counts {
		if err := s.db.GetContext(ctx, c.dst, c.query, c.args...); err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}

	err := s.db.SelectContext(ctx, &stats.TopPaths, `
		SELECT path, COUNT(*) AS visits
		FROM visitors
		GROUP BY path
		ORDER BY visits DESC, path ASC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}

	if stats.RecentVisitors, err = s.Visitors(ctx, 50); err != nil {
		return nil, err
	}
	if stats.RecentMessages, err = s.Messages(ctx, 10); err != nil {
		return nil, err
	}
	return stats, nil
}
