// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store provides the document-store adapter for content nodes: a
// small query predicate language plus interchangeable backends (in-memory,
// PostgreSQL, MongoDB). The adapter holds no tree logic of its own — the
// content engine owns all lifecycle rules.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"courseforge/internal/models"
)

// ErrEmptyQuery is returned by Delete when the query carries no conditions.
// An unconditioned delete would wipe the collection; callers must always
// scope deletions.
var ErrEmptyQuery = errors.New("store: refusing to delete with empty query")

// Store is the abstract document store the content engine mutates through.
// Implementations must be strongly consistent per document and per query.
type Store interface {
	// Find returns all nodes matching the query, ordered by sort order.
	Find(ctx context.Context, q Query) ([]*models.ContentNode, error)

	// Get returns the node with the given id, or nil without error when it
	// does not exist.
	Get(ctx context.Context, id uuid.UUID) (*models.ContentNode, error)

	// Insert assigns an id and timestamps, persists the node, and returns
	// the stored copy.
	Insert(ctx context.Context, n *models.ContentNode) (*models.ContentNode, error)

	// Update shallow-merges the delta over the stored node and returns the
	// result, or nil without error when the id does not resolve. An empty
	// delta is a legal write: it refreshes the updated timestamp and lets a
	// defaulting layer re-apply schema defaults.
	Update(ctx context.Context, id uuid.UUID, delta map[string]any) (*models.ContentNode, error)

	// Delete removes every node matching the query.
	Delete(ctx context.Context, q Query) error
}
