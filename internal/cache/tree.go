// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// tree.go provides a Valkey-backed cache of computed descendant lists.
// Descendant walks issue one store query per tree level, so hot course
// structures are kept as JSON blobs keyed by course and root; any mutation
// inside a course drops every tree cached for it.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"courseforge/internal/models"
)

const (
	// treeKeyPrefix is the Valkey key prefix for cached descendant trees.
	treeKeyPrefix = "tree:"

	// DefaultTreeTTL is how long a computed tree stays cached.
	DefaultTreeTTL = 5 * time.Minute
)

// TreeCache caches descendant trees in Valkey. All operations are
// best-effort: cache errors are logged and treated as misses.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache creates a tree cache backed by the given Valkey client.
func NewTreeCache(client *redis.Client, ttl time.Duration) *TreeCache {
	if ttl == 0 {
		ttl = DefaultTreeTTL
	}
	return &TreeCache{client: client, ttl: ttl}
}

// TreeKey returns the cache key for a root's descendant tree.
func TreeKey(courseID, rootID uuid.UUID) string {
	return treeKeyPrefix + courseID.String() + ":" + rootID.String()
}

// GetTree retrieves the cached descendant list for a root. Returns false on
// miss or any cache error.
func (tc *TreeCache) GetTree(ctx context.Context, courseID, rootID uuid.UUID) ([]*models.ContentNode, bool) {
	raw, err := tc.client.Get(ctx, TreeKey(courseID, rootID)).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("tree cache get error", "course", courseID, "error", err)
		return nil, false
	}

	var nodes []*models.ContentNode
	if err := json.Unmarshal(raw, &nodes); err != nil {
		slog.Warn("tree cache decode error", "course", courseID, "error", err)
		return nil, false
	}
	slog.Debug("tree cache hit", "course", courseID, "root", rootID)
	return nodes, true
}

// SetTree stores a computed descendant list with the configured TTL.
func (tc *TreeCache) SetTree(ctx context.Context, courseID, rootID uuid.UUID, nodes []*models.ContentNode) {
	raw, err := json.Marshal(nodes)
	if err != nil {
		slog.Warn("tree cache encode error", "course", courseID, "error", err)
		return
	}
	if err := tc.client.Set(ctx, TreeKey(courseID, rootID), raw, tc.ttl).Err(); err != nil {
		slog.Warn("tree cache set error", "course", courseID, "error", err)
	}
}

// InvalidateCourse removes every tree cached for a course by scanning for
// its key prefix. Any structural mutation can reshape every tree in the
// course, so invalidation is course-wide.
func (tc *TreeCache) InvalidateCourse(ctx context.Context, courseID uuid.UUID) {
	prefix := treeKeyPrefix + courseID.String() + ":"
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := tc.client.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			slog.Warn("tree cache scan error", "course", courseID, "error", err)
			return
		}
		if len(keys) > 0 {
			if err := tc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("tree cache bulk delete error", "course", courseID, "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Debug("tree cache invalidated", "course", courseID, "deleted", deleted)
	}
}
