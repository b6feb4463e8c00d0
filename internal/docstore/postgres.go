package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/roach88/spearfished/internal/post"
)

// PostgresChannel is the NOTIFY channel raised on every post write.
const PostgresChannel = "posts_changed"

const postgresSchema = `
CREATE TABLE IF NOT EXISTS posts (
    seq  BIGSERIAL   PRIMARY KEY,
    id   TEXT        NOT NULL UNIQUE,
    data JSONB       NOT NULL,
    ts   TIMESTAMPTZ NOT NULL DEFAULT clock_timestamp()
);
CREATE INDEX IF NOT EXISTS idx_posts_ts_seq ON posts (ts DESC, seq DESC);
`

// Postgres is the document store over a PostgreSQL posts table.
//
// The database assigns timestamps. Each write raises a NOTIFY in the same
// transaction; subscriptions LISTEN and re-query on every notification.
type Postgres struct {
	db     *sql.DB
	dsn    string
	logger *slog.Logger
}

// OpenPostgres connects to dsn and ensures the posts table exists.
func OpenPostgres(ctx context.Context, dsn string, logger *slog.Logger) (*Postgres, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Postgres{db: db, dsn: dsn, logger: logger}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Write creates the post document and notifies listeners.
func (p *Postgres) Write(ctx context.Context, pst post.Post) (Receipt, error) {
	if err := checkPost(pst); err != nil {
		return Receipt{}, err
	}

	m := record(pst)
	m[post.FieldLocation] = locationMap(pst)
	data, err := json.Marshal(m)
	if err != nil {
		return Receipt{}, &WriteError{ID: pst.ID, Reason: ReasonEncode, Err: err}
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return Receipt{}, &WriteError{ID: pst.ID, Reason: classifyPQ(err), Err: err}
	}
	defer tx.Rollback() // No-op if committed

	var ts time.Time
	err = tx.QueryRowContext(ctx, `
		INSERT INTO posts (id, data) VALUES ($1, $2)
		RETURNING ts
	`, pst.ID, string(data)).Scan(&ts)
	if err != nil {
		return Receipt{}, &WriteError{ID: pst.ID, Reason: classifyPQ(err), Err: err}
	}

	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, PostgresChannel, pst.ID); err != nil {
		return Receipt{}, &WriteError{ID: pst.ID, Reason: classifyPQ(err), Err: err}
	}

	if err := tx.Commit(); err != nil {
		return Receipt{}, &WriteError{ID: pst.ID, Reason: classifyPQ(err), Err: err}
	}

	return Receipt{ID: pst.ID, Timestamp: ts.UTC()}, nil
}

// Delete removes a post and notifies listeners.
func (p *Postgres) Delete(ctx context.Context, id string) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	if n > 0 {
		if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, PostgresChannel, id); err != nil {
			return false, fmt.Errorf("delete post: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return n > 0, nil
}

// Subscribe streams the ordered post set, re-querying on every NOTIFY.
func (p *Postgres) Subscribe(ctx context.Context, sink func(Event)) (Subscription, error) {
	if sink == nil {
		return nil, errors.New("subscribe: nil sink")
	}

	listener := pq.NewListener(p.dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed:
			p.logger.Warn("posts listener connection failed", "error", err)
		case pq.ListenerEventDisconnected:
			p.logger.Warn("posts listener disconnected", "error", err)
		case pq.ListenerEventReconnected:
			p.logger.Info("posts listener reconnected")
		}
	})
	// Listen blocks until the listener has a connection; Close releases it.
	listening := make(chan error, 1)
	go func() { listening <- listener.Listen(PostgresChannel) }()
	select {
	case err := <-listening:
		if err != nil {
			listener.Close()
			return nil, fmt.Errorf("listen %s: %w", PostgresChannel, err)
		}
	case <-ctx.Done():
		listener.Close()
		return nil, fmt.Errorf("listen %s: %w", PostgresChannel, ctx.Err())
	}

	ctx, cancel := context.WithCancel(ctx)
	changed := make(chan struct{}, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-listener.Notify:
				if !ok {
					close(changed)
					return
				}
				// A nil notification follows a reconnect; re-query either way.
				select {
				case changed <- struct{}{}:
				default:
				}
			}
		}
	}()

	w := startWatch(ctx, p.fetch, changed, sink, func() {
		cancel()
		listener.Close()
	})
	return w, nil
}

func (p *Postgres) fetch(ctx context.Context) ([]RawDocument, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, data, ts
		FROM posts
		ORDER BY ts DESC, seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	docs := []RawDocument{}
	for rows.Next() {
		var (
			id   string
			data []byte
			ts   time.Time
		)
		if err := rows.Scan(&id, &data, &ts); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		var m map[string]any
		if err := json.Unmarshal(data, &m); err == nil && m != nil {
			m[post.FieldTimestamp] = ts.UTC()
		}
		docs = append(docs, RawDocument{ID: id, Data: m})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}
	return docs, nil
}

// classifyPQ maps a PostgreSQL failure to a write reason.
func classifyPQ(err error) WriteReason {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return ReasonTransport
	}
	switch {
	case pqErr.Code == "23505": // unique_violation
		return ReasonDuplicate
	case pqErr.Code == "42501": // insufficient_privilege
		return ReasonPermission
	case pqErr.Code.Class() == "53": // insufficient resources
		return ReasonQuota
	case pqErr.Code.Class() == "22": // data exception
		return ReasonEncode
	default:
		return ReasonTransport
	}
}
