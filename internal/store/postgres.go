package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/mo"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Postgres stores every collection in one JSONB table keyed by collection
// name. Insertion order is kept by a serial column.
type Postgres struct {
	pool *pgxpool.Pool
}

// OpenPostgres applies pending migrations, opens a pool and pings it.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is empty")
	}

	if err := Migrate(dsn); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	// Conservative pool defaults.
	cfg.MaxConns = 10
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	return &Postgres{pool: pool}, nil
}

// Migrate brings the documents schema up to date.
func Migrate(dsn string) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrateURL(dsn))
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// migrateURL rewrites a postgres DSN to the scheme the pgx/v5 migrate driver
// registers.
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgresql://", "postgres://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

func (p *Postgres) Collection(name string) Collection {
	return &pgCollection{pool: p.pool, name: name}
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close(context.Context) error {
	p.pool.Close()
	return nil
}

type pgCollection struct {
	pool *pgxpool.Pool
	name string
}

const insertDocumentSQL = `INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3::jsonb)`

func (c *pgCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	query, args, err := c.selectQuery(filter, false)
	if err != nil {
		return nil, err
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", c.name, err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.name, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", c.name, err)
	}
	return docs, nil
}

func (c *pgCollection) FindOne(ctx context.Context, filter Filter) (mo.Option[Document], error) {
	query, args, err := c.selectQuery(filter, true)
	if err != nil {
		return mo.None[Document](), err
	}

	doc, err := scanDocument(c.pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return mo.None[Document](), nil
	}
	if err != nil {
		return mo.None[Document](), fmt.Errorf("find one %s: %w", c.name, err)
	}
	return mo.Some(doc), nil
}

func (c *pgCollection) InsertOne(ctx context.Context, doc Document) (string, error) {
	body, err := json.Marshal(withoutID(doc))
	if err != nil {
		return "", fmt.Errorf("encode %s document: %w", c.name, err)
	}

	id := NewID()
	if _, err := c.pool.Exec(ctx, insertDocumentSQL, c.name, id, string(body)); err != nil {
		return "", fmt.Errorf("insert %s: %w", c.name, err)
	}
	return id, nil
}

func (c *pgCollection) InsertMany(ctx context.Context, docs []Document) ([]string, error) {
	ids := make([]string, 0, len(docs))
	if len(docs) == 0 {
		return ids, nil
	}

	batch := &pgx.Batch{}
	for _, d := range docs {
		body, err := json.Marshal(withoutID(d))
		if err != nil {
			return nil, fmt.Errorf("encode %s document: %w", c.name, err)
		}
		id := NewID()
		batch.Queue(insertDocumentSQL, c.name, id, string(body))
		ids = append(ids, id)
	}

	br := c.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range docs {
		if _, err := br.Exec(); err != nil {
			return nil, fmt.Errorf("insert many %s: %w", c.name, err)
		}
	}
	return ids, nil
}

func (c *pgCollection) UpdateByID(ctx context.Context, id string, set Document) error {
	if _, err := ParseID(id); err != nil {
		return err
	}

	body, err := json.Marshal(withoutID(set))
	if err != nil {
		return fmt.Errorf("encode %s update: %w", c.name, err)
	}

	_, err = c.pool.Exec(ctx,
		`UPDATE documents SET body = body || $3::jsonb WHERE collection = $1 AND id = $2`,
		c.name, id, string(body))
	if err != nil {
		return fmt.Errorf("update %s %s: %w", c.name, id, err)
	}
	return nil
}

func (c *pgCollection) DeleteByID(ctx context.Context, id string) error {
	if _, err := ParseID(id); err != nil {
		return err
	}

	_, err := c.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, c.name, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", c.name, id, err)
	}
	return nil
}

func (c *pgCollection) DeleteAll(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, `DELETE FROM documents WHERE collection = $1`, c.name); err != nil {
		return fmt.Errorf("clear %s: %w", c.name, err)
	}
	return nil
}

// selectQuery builds a SELECT for filter. Field conditions use JSONB
// containment so they hit the GIN index.
func (c *pgCollection) selectQuery(filter Filter, one bool) (string, []any, error) {
	id, hasID, fields, err := splitFilter(filter)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString(`SELECT id, body FROM documents WHERE collection = $1`)
	args := []any{c.name}

	if hasID {
		args = append(args, id)
		fmt.Fprintf(&sb, ` AND id = $%d`, len(args))
	}
	if len(fields) > 0 {
		b, err := json.Marshal(fields)
		if err != nil {
			return "", nil, fmt.Errorf("encode %s filter: %w", c.name, err)
		}
		args = append(args, string(b))
		fmt.Fprintf(&sb, ` AND body @> $%d::jsonb`, len(args))
	}

	sb.WriteString(` ORDER BY seq`)
	if one {
		sb.WriteString(` LIMIT 1`)
	}
	return sb.String(), args, nil
}

func scanDocument(row pgx.Row) (Document, error) {
	var (
		id   string
		body []byte
	)
	if err := row.Scan(&id, &body); err != nil {
		return nil, err
	}

	doc := Document{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	doc[IDField] = id
	return doc, nil
}
