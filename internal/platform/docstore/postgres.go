package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jastipku/jastipku/internal/platform/db"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (collection, id)
);
CREATE INDEX IF NOT EXISTS documents_data_gin ON documents USING GIN (data jsonb_path_ops);
`

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Postgres stores documents as JSONB rows in a single table.
type Postgres struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewPostgres constructs a Postgres backed Store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{db: pool, pool: pool}
}

// EnsureSchema creates the documents table when missing.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("docstore: ensure schema: %w", err)
	}
	return nil
}

// Create inserts a new document.
func (p *Postgres) Create(ctx context.Context, collection string, data any) (string, error) {
	if collection == "" {
		return "", ErrInvalidCollection
	}
	fields, err := toFields(data)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = p.db.Exec(ctx, `INSERT INTO documents (collection, id, data, created_at, updated_at) VALUES ($1, $2, $3::jsonb, NOW(), NOW())`, collection, id, body)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Get loads a document by id.
func (p *Postgres) Get(ctx context.Context, collection, id string) (Document, error) {
	var doc Document
	err := p.db.QueryRow(ctx, `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND id = $2`, collection, id).
		Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

// Update merges fields into the stored body.
func (p *Postgres) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	patch, err := toFields(fields)
	if err != nil {
		return err
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return err
	}
	tag, err := p.db.Exec(ctx, `UPDATE documents SET data = data || $3::jsonb, updated_at = NOW() WHERE collection = $1 AND id = $2`, collection, id, body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document. Missing ids are ignored.
func (p *Postgres) Delete(ctx context.Context, collection, id string) error {
	_, err := p.db.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, collection, id)
	return err
}

// Query runs an equality query using JSONB containment.
func (p *Postgres) Query(ctx context.Context, collection string, q Query) ([]Document, error) {
	filter := make(map[string]any, len(q.Where))
	for _, f := range q.Where {
		filter[f.Field] = f.Value
	}
	body, err := json.Marshal(filter)
	if err != nil {
		return nil, err
	}

	args := []any{collection, body}
	query := `SELECT id, data, created_at, updated_at FROM documents WHERE collection = $1 AND data @> $2::jsonb`
	direction := "ASC"
	if q.Desc {
		direction = "DESC"
	}
	switch q.OrderBy {
	case "":
		query += " ORDER BY created_at ASC"
	case FieldCreatedAt:
		query += " ORDER BY created_at " + direction
	case FieldUpdatedAt:
		query += " ORDER BY updated_at " + direction
	default:
		args = append(args, q.OrderBy)
		query += fmt.Sprintf(" ORDER BY data -> $%d::text %s, created_at ASC", len(args), direction)
	}
	if q.Limit > 0 {
		args = append(args, q.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := p.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.Data, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// RunInTx executes fn inside a RepeatableRead transaction.
func (p *Postgres) RunInTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	if p.pool == nil {
		// Already inside a transaction.
		return fn(ctx, p)
	}
	return db.WithTx(ctx, p.pool, func(tx pgx.Tx) error {
		return fn(ctx, &Postgres{db: tx})
	})
}

var _ Store = (*Postgres)(nil)
