// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"courseforge/internal/models"
)

// Memory is a mutex-guarded in-memory Store. It backs the engine tests and
// the memory driver for local development; behavior matches the persistent
// backends, including nil-on-missing lookups and empty-delta re-saves.
type Memory struct {
	mu    sync.RWMutex
	nodes map[uuid.UUID]*models.ContentNode
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{nodes: make(map[uuid.UUID]*models.ContentNode)}
}

// Find returns deep copies of all matching nodes, sorted by sort order then
// creation time for deterministic iteration.
func (s *Memory) Find(_ context.Context, q Query) ([]*models.ContentNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.ContentNode
	for _, n := range s.nodes {
		if q.Matches(n) {
			out = append(out, n.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

// Get returns a copy of the node, or nil if absent.
func (s *Memory) Get(_ context.Context, id uuid.UUID) (*models.ContentNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, nil
	}
	return n.Clone(), nil
}

// Insert assigns id and timestamps and stores a copy of the node.
func (s *Memory) Insert(_ context.Context, n *models.ContentNode) (*models.ContentNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := n.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	s.nodes[stored.ID] = stored
	return stored.Clone(), nil
}

// Update shallow-merges the delta over the stored node. Returns nil if the
// id does not resolve.
func (s *Memory) Update(_ context.Context, id uuid.UUID, delta map[string]any) (*models.ContentNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.nodes[id]
	if !ok {
		return nil, nil
	}
	merged, err := existing.ApplyDelta(delta)
	if err != nil {
		return nil, err
	}
	merged.ID = id
	merged.UpdatedAt = time.Now().UTC()
	s.nodes[id] = merged
	return merged.Clone(), nil
}

// Delete removes all matching nodes. Refuses an empty query.
func (s *Memory) Delete(_ context.Context, q Query) error {
	if q.Empty() {
		return ErrEmptyQuery
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, n := range s.nodes {
		if q.Matches(n) {
			delete(s.nodes, id)
		}
	}
	return nil
}

// Len reports the number of stored nodes. Test helper.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
