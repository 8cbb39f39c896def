package store

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xhad/docqa/internal/models"
)

// Pool is the subset of *pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

type PostgresConfig struct {
	ConnString string
	TableName  string
}

// PostgresStore keeps answer history in PostgreSQL. Only questions and
// answers are stored; document content never is.
type PostgresStore struct {
	config PostgresConfig
	pool   Pool
}

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func NewPostgres(ctx context.Context, config PostgresConfig) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, config.ConnString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s, err := NewPostgresWithPool(ctx, pool, config)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresWithPool builds a store on an existing pool and creates the
// history table if needed.
func NewPostgresWithPool(ctx context.Context, pool Pool, config PostgresConfig) (*PostgresStore, error) {
	if config.TableName == "" {
		config.TableName = "exchanges"
	}
	if !tableName.MatchString(config.TableName) {
		return nil, fmt.Errorf("invalid table name %q", config.TableName)
	}

	s := &PostgresStore{
		config: config,
		pool:   pool,
	}
	if err := s.initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initialize(ctx context.Context) error {
	createTable := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`, s.config.TableName)

	if _, err := s.pool.Exec(ctx, createTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}

	createIndex := fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s_session_idx
		ON %s (session_id, created_at)`,
		s.config.TableName, s.config.TableName)

	if _, err := s.pool.Exec(ctx, createIndex); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

func (s *PostgresStore) Append(ctx context.Context, e models.Exchange) error {
	e = withDefaults(e)
	stmt := fmt.Sprintf(`
		INSERT INTO %s (id, session_id, question, answer, created_at)
		VALUES ($1, $2, $3, $4, $5)`, s.config.TableName)

	_, err := s.pool.Exec(ctx, stmt, e.ID, e.SessionID, sanitizeUTF8(e.Question), sanitizeUTF8(e.Answer), e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert exchange: %w", err)
	}
	return nil
}

// List returns the most recent exchanges of a session, oldest first.
// A non-positive limit returns all of them.
func (s *PostgresStore) List(ctx context.Context, sessionID string, limit int) ([]models.Exchange, error) {
	query := fmt.Sprintf(`
		SELECT id, session_id, question, answer, created_at FROM (
			SELECT id, session_id, question, answer, created_at
			FROM %s
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent
		ORDER BY created_at ASC`, s.config.TableName)

	var limitArg any
	if limit > 0 {
		limitArg = limit
	}

	rows, err := s.pool.Query(ctx, query, sessionID, limitArg)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var out []models.Exchange
	for rows.Next() {
		var (
			e         models.Exchange
			createdAt time.Time
		)
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Question, &e.Answer, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		e.CreatedAt = createdAt
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read exchanges: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	stmt := fmt.Sprintf(`DELETE FROM %s WHERE session_id = $1`, s.config.TableName)
	if _, err := s.pool.Exec(ctx, stmt, sessionID); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
