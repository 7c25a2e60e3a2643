// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// postgres.go implements the Store over a single content_nodes table. The
// full node lives in a jsonb column; id, type, parent and course references
// are mirrored into indexed columns so the hot traversal queries stay on
// btree indexes instead of jsonb scans.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"courseforge/internal/models"
)

// Postgres is a Store backed by a PostgreSQL content_nodes table.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres store over an open connection pool. The
// schema is managed by the goose migrations in internal/database.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// indexedColumns maps wire field names onto their mirrored table columns.
// Everything else is matched inside the jsonb document.
var indexedColumns = map[string]string{
	models.FieldID:       "id::text",
	models.FieldType:     "type",
	models.FieldParentID: "parent_id::text",
	models.FieldCourseID: "course_id::text",
}

func (s *Postgres) Find(ctx context.Context, q Query) ([]*models.ContentNode, error) {
	where, args := buildWhere(q, 1)
	query := "SELECT doc FROM content_nodes"
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY sort_order, created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find content nodes: %w", err)
	}
	defer rows.Close()

	var out []*models.ContentNode
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan content node: %w", err)
		}
		n, err := decodeDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Postgres) Get(ctx context.Context, id uuid.UUID) (*models.ContentNode, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM content_nodes WHERE id = $1`, id,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get content node: %w", err)
	}
	return decodeDoc(doc)
}

func (s *Postgres) Insert(ctx context.Context, n *models.ContentNode) (*models.ContentNode, error) {
	stored := n.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	encoded, err := json.Marshal(stored)
	if err != nil {
		return nil, fmt.Errorf("encode content node: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO content_nodes (id, type, parent_id, course_id, sort_order, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, stored.ID, stored.Type, uuidOrNil(stored.ParentID), nullableUUID(stored.CourseID),
		stored.SortOrder, encoded, stored.CreatedAt, stored.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert content node: %w", err)
	}
	return stored, nil
}

func (s *Postgres) Update(ctx context.Context, id uuid.UUID, delta map[string]any) (*models.ContentNode, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("update content node: begin: %w", err)
	}
	defer tx.Rollback()

	var doc []byte
	err = tx.QueryRowContext(ctx,
		`SELECT doc FROM content_nodes WHERE id = $1 FOR UPDATE`, id,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("update content node: load: %w", err)
	}

	existing, err := decodeDoc(doc)
	if err != nil {
		return nil, err
	}
	merged, err := existing.ApplyDelta(delta)
	if err != nil {
		return nil, fmt.Errorf("update content node: merge: %w", err)
	}
	merged.ID = id
	merged.UpdatedAt = time.Now().UTC()

	encoded, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("update content node: encode: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE content_nodes SET
			type = $1, parent_id = $2, course_id = $3, sort_order = $4,
			doc = $5, updated_at = $6
		WHERE id = $7
	`, merged.Type, uuidOrNil(merged.ParentID), nullableUUID(merged.CourseID),
		merged.SortOrder, encoded, merged.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update content node: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("update content node: commit: %w", err)
	}
	return merged, nil
}

func (s *Postgres) Delete(ctx context.Context, q Query) error {
	if q.Empty() {
		return ErrEmptyQuery
	}
	where, args := buildWhere(q, 1)
	_, err := s.db.ExecContext(ctx, "DELETE FROM content_nodes WHERE "+where, args...)
	if err != nil {
		return fmt.Errorf("delete content nodes: %w", err)
	}
	return nil
}

func decodeDoc(doc []byte) (*models.ContentNode, error) {
	var n models.ContentNode
	if err := json.Unmarshal(doc, &n); err != nil {
		return nil, fmt.Errorf("decode content node: %w", err)
	}
	return &n, nil
}

func uuidOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}

func nullableUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

// buildWhere renders a Query as a SQL conjunction starting at placeholder
// $start. Indexed fields hit their mirrored columns, everything else is
// compared as text against the jsonb document.
func buildWhere(q Query, start int) (string, []any) {
	var (
		conds []string
		args  []any
	)
	next := func() int { return start + len(args) }

	for k, v := range q.Eq {
		conds = append(conds, fmt.Sprintf("%s = $%d", fieldExpr(k), next()))
		args = append(args, normalize(v))
	}
	for k, v := range q.Ne {
		conds = append(conds, fmt.Sprintf("%s IS DISTINCT FROM $%d", fieldExpr(k), next()))
		args = append(args, normalize(v))
	}
	for k, vs := range q.In {
		vals := make([]string, len(vs))
		for i, v := range vs {
			vals[i] = normalize(v)
		}
		conds = append(conds, fmt.Sprintf("%s = ANY($%d)", fieldExpr(k), next()))
		args = append(args, vals)
	}
	for _, sub := range q.Or {
		subWhere, subArgs := buildWhere(sub, next())
		if subWhere != "" {
			conds = append(conds, "("+subWhere+")")
			args = append(args, subArgs...)
		}
	}

	if len(q.Or) > 1 {
		// The trailing len(q.Or) conditions belong to the OR group.
		orStart := len(conds) - len(q.Or)
		or := "(" + strings.Join(conds[orStart:], " OR ") + ")"
		conds = append(conds[:orStart], or)
	}

	return strings.Join(conds, " AND "), args
}

func fieldExpr(key string) string {
	if col, ok := indexedColumns[key]; ok {
		return col
	}
	return fmt.Sprintf("doc->>'%s'", strings.ReplaceAll(key, "'", "''"))
}
