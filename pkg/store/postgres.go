package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mano-habib/gimanoui/pkg/core/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const voiceKey = "voice_id"

// Postgres is a Store backed by a pgx connection pool. Migrations run on
// open.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to databaseURL, applies pending migrations, and
// returns the store.
func NewPostgres(ctx context.Context, databaseURL string) (*Postgres, error) {
	if err := migrate(databaseURL); err != nil {
		return nil, err
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	config.MaxConns = 10

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func migrate(databaseURL string) error {
	db, err := goose.OpenDBWithDriver("pgx", databaseURL)
	if err != nil {
		return fmt.Errorf("open migration connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (p *Postgres) VoiceID(ctx context.Context) (string, error) {
	var id string
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM settings WHERE key = $1`, voiceKey).Scan(&id)
	return voiceIDFromScan(id, err)
}

// voiceIDFromScan maps a missing settings row to "no selection yet" while
// letting every other query failure surface.
func voiceIDFromScan(id string, err error) (string, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load voice selection: %w", err)
	}
	return id, nil
}

func (p *Postgres) SetVoiceID(ctx context.Context, id string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = now()`,
		voiceKey, id)
	return err
}

func (p *Postgres) AppendMessages(ctx context.Context, msgs []types.ChatMessage) error {
	for _, m := range msgs {
		media, err := json.Marshal(m.Media)
		if err != nil {
			return err
		}
		sources, err := json.Marshal(m.Sources)
		if err != nil {
			return err
		}
		_, err = p.pool.Exec(ctx,
			`INSERT INTO messages (id, role, text_content, media, sources)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO UPDATE SET text_content = $3, media = $4, sources = $5`,
			m.ID, string(m.Role), m.Text, media, sources)
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *Postgres) LoadHistory(ctx context.Context, limit int) ([]types.ChatMessage, error) {
	query := `SELECT id, role, text_content, media, sources FROM messages ORDER BY created_at`
	args := []any{}
	if limit > 0 {
		query = `SELECT id, role, text_content, media, sources FROM (
			SELECT * FROM messages ORDER BY created_at DESC LIMIT $1
		) recent ORDER BY created_at`
		args = append(args, limit)
	}

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []types.ChatMessage
	for rows.Next() {
		var (
			m             types.ChatMessage
			role          string
			media, source []byte
		)
		if err := rows.Scan(&m.ID, &role, &m.Text, &media, &source); err != nil {
			return nil, err
		}
		m.Role = types.Role(role)
		if len(media) > 0 {
			if err := json.Unmarshal(media, &m.Media); err != nil {
				return nil, err
			}
		}
		if len(source) > 0 {
			if err := json.Unmarshal(source, &m.Sources); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (p *Postgres) ClearHistory(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM messages`)
	return err
}

func (p *Postgres) Close() {
	p.pool.Close()
}
