// Package postgres backs the docstore contract with a single JSONB table,
// so deployments that already run Postgres need no second database.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizdeck/internal/docstore"
)

// Store is a Postgres-backed docstore.Store over the documents table.
type Store struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, clock: time.Now}
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection=$1 AND id=$2`,
		collection, id,
	).Scan(&raw)
	if err == pgx.ErrNoRows {
		return docstore.Document{}, docstore.ErrNotFound
	}
	if err != nil {
		return docstore.Document{}, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	data, err := decodeData(raw)
	if err != nil {
		return docstore.Document{}, err
	}
	return docstore.Document{ID: id, Data: data}, nil
}

func (s *Store) Query(ctx context.Context, collection string, constraints ...docstore.Constraint) ([]docstore.Document, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT id, data FROM documents WHERE collection=$1`)
	args := []any{collection}
	var orderParts []string
	limit := -1

	for _, c := range constraints {
		switch c := c.(type) {
		case docstore.Where:
			op, err := sqlOp(c.Op)
			if err != nil {
				return nil, err
			}
			value, err := json.Marshal(c.Value)
			if err != nil {
				return nil, err
			}
			args = append(args, c.Field, string(value))
			fmt.Fprintf(&sb, " AND data -> $%d::text %s $%d::jsonb", len(args)-1, op, len(args))
		case docstore.OrderBy:
			dir := "ASC"
			if c.Desc {
				dir = "DESC"
			}
			args = append(args, c.Field)
			orderParts = append(orderParts, fmt.Sprintf("data -> $%d::text %s", len(args), dir))
		case docstore.Limit:
			limit = c.N
		}
	}
	if len(orderParts) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(orderParts, ", "))
	}
	if limit >= 0 {
		args = append(args, limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []docstore.Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, err
		}
		data, err := decodeData(raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, docstore.Document{ID: id, Data: data})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", collection, err)
	}
	return docs, nil
}

func (s *Store) Add(ctx context.Context, collection string, data map[string]any) (docstore.Document, error) {
	clean := docstore.Sanitize(data, true, s.clock())
	id := uuid.NewString()
	raw, err := json.Marshal(clean)
	if err != nil {
		return docstore.Document{}, err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)`,
		collection, id, string(raw),
	)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("add to %s: %w", collection, err)
	}
	return docstore.Document{ID: id, Data: clean}, nil
}

func (s *Store) Set(ctx context.Context, collection, id string, data map[string]any) (docstore.Document, error) {
	clean := docstore.Sanitize(data, true, s.clock())
	raw, err := json.Marshal(clean)
	if err != nil {
		return docstore.Document{}, err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3::jsonb)
		 ON CONFLICT (collection, id) DO UPDATE SET data=EXCLUDED.data`,
		collection, id, string(raw),
	)
	if err != nil {
		return docstore.Document{}, fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return docstore.Document{ID: id, Data: clean}, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, partial map[string]any) error {
	clean := docstore.Sanitize(partial, false, s.clock())
	raw, err := json.Marshal(clean)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE documents SET data = data || $3::jsonb WHERE collection=$1 AND id=$2`,
		collection, id, string(raw),
	)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if tag.RowsAffected() == 0 {
		return docstore.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM documents WHERE collection=$1 AND id=$2`,
		collection, id,
	)
	if err != nil {
		return false, fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return tag.RowsAffected() > 0, nil
}

func sqlOp(op string) (string, error) {
	switch op {
	case docstore.OpEqual, "":
		return "=", nil
	case docstore.OpNotEqual:
		return "<>", nil
	case docstore.OpLess:
		return "<", nil
	case docstore.OpLessOrEqual:
		return "<=", nil
	case docstore.OpGreater:
		return ">", nil
	case docstore.OpGreaterEqual:
		return ">=", nil
	default:
		return "", fmt.Errorf("unsupported operator %q", op)
	}
}

func decodeData(raw []byte) (map[string]any, error) {
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return data, nil
}
