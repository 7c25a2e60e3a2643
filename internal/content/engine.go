// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package content implements the hierarchy mutation engine for the course
// tree: insert, clone/paste, cut/move, delete, and bulk subtree
// construction, all while keeping sibling ordering contiguous, courseId
// references consistent, and the course's enabled-plugin set current.
package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"courseforge/internal/i18n"
	"courseforge/internal/models"
	"courseforge/internal/plugins"
	"courseforge/internal/store"
)

// Cache caches computed descendant lists per course. Implementations must
// tolerate concurrent use; the engine treats every cache operation as
// best-effort.
type Cache interface {
	GetTree(ctx context.Context, courseID, rootID uuid.UUID) ([]*models.ContentNode, bool)
	SetTree(ctx context.Context, courseID, rootID uuid.UUID, nodes []*models.ContentNode)
	InvalidateCourse(ctx context.Context, courseID uuid.UUID)
}

// Engine owns every lifecycle transition of content nodes. It issues no
// locks of its own — it relies on the store being strongly consistent per
// document, and two overlapping mutations may race (sort-order renumbering
// is idempotent so caller-level retries are safe).
type Engine struct {
	store   store.Store
	plugins plugins.Registry
	catalog *i18n.Catalog
	cache   Cache // may be nil
	locale  string
}

// New creates an engine. cache may be nil to disable tree caching; an empty
// locale defaults to English placeholders.
func New(s store.Store, reg plugins.Registry, catalog *i18n.Catalog, cache Cache, locale string) *Engine {
	if locale == "" {
		locale = "en"
	}
	return &Engine{store: s, plugins: reg, catalog: catalog, cache: cache, locale: locale}
}

// Store exposes the underlying document store for read-only collaborators.
func (e *Engine) Store() store.Store { return e.store }

// InsertOptions controls the maintenance side effects of an insert. The
// zero value runs both.
type InsertOptions struct {
	SkipSortOrder      bool
	SkipEnabledPlugins bool
}

// Insert validates the parent reference, persists the node, and runs the
// post-insert maintenance (sort-order renumbering and plugin
// reconciliation, concurrently — they touch disjoint fields). A course
// immediately back-patches its own id as courseId.
func (e *Engine) Insert(ctx context.Context, n *models.ContentNode, opts InsertOptions) (*models.ContentNode, error) {
	if !n.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown node type %q", ErrValidation, n.Type)
	}
	if n.Type != models.TypeCourse && n.Type != models.TypeConfig {
		if n.ParentID == nil {
			return nil, fmt.Errorf("%w: %s requires a parent", ErrInvalidParent, n.Type)
		}
		parent, err := e.store.Get(ctx, *n.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent %s", ErrNotFound, *n.ParentID)
		}
	}

	created, err := e.store.Insert(ctx, n)
	if err != nil {
		return nil, err
	}

	if created.Type == models.TypeCourse {
		// A course always roots its own course-id.
		created, err = e.store.Update(ctx, created.ID, map[string]any{
			models.FieldCourseID: created.ID,
		})
		if err != nil {
			return nil, err
		}
		e.invalidate(ctx, created.ID)
		return created, nil
	}

	if err := e.maintain(ctx, created, maintainOpts{
		skipSortOrder: opts.SkipSortOrder,
		skipPlugins:   opts.SkipEnabledPlugins,
	}); err != nil {
		return nil, err
	}
	e.invalidate(ctx, created.CourseID)
	return e.refresh(ctx, created)
}

// Update persists the delta, then unconditionally re-runs sort-order
// maintenance and plugin reconciliation (forced when the delta explicitly
// sets the enabled-plugin list).
func (e *Engine) Update(ctx context.Context, id uuid.UUID, delta map[string]any) (*models.ContentNode, error) {
	updated, err := e.store.Update(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	_, force := delta[models.FieldEnabledPlugins]
	if err := e.maintain(ctx, updated, maintainOpts{force: force}); err != nil {
		return nil, err
	}
	e.invalidate(ctx, updated.CourseID)
	return e.refresh(ctx, updated)
}

// Delete resolves the target, removes it and its whole descendant set in
// one batch (a course takes its config along), then reconciles plugins and
// sibling ordering for the vacated position. Returns target followed by
// its descendants in breadth-first order.
func (e *Engine) Delete(ctx context.Context, id uuid.UUID) ([]*models.ContentNode, error) {
	target, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	descendants, err := e.Descendants(ctx, target)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(descendants)+1)
	ids = append(ids, target.ID)
	for _, d := range descendants {
		ids = append(ids, d.ID)
	}
	if err := e.store.Delete(ctx, store.ByIDs(ids)); err != nil {
		return nil, err
	}

	if err := e.maintain(ctx, target, maintainOpts{removed: true}); err != nil {
		return nil, err
	}
	e.invalidate(ctx, courseIDOf(target))

	return append([]*models.ContentNode{target}, descendants...), nil
}

// Append places child under parent. With isCut the child is repositioned in
// place instead of inserted anew.
func (e *Engine) Append(ctx context.Context, parent, child *models.ContentNode, isCut bool) (*models.ContentNode, error) {
	if isCut {
		return e.Cut(ctx, parent, child, child.SortOrder)
	}

	child.ParentID = &parent.ID
	child.CourseID = courseIDOf(parent)
	slog.Debug("appending node",
		"type", child.Type,
		"schema", child.Type.SchemaClass(),
		"parent", parent.ID,
	)
	return e.Insert(ctx, child, InsertOptions{})
}

// AppendToBlock places a component inside a block honoring the paired
// left/right layout model: a single left or right occupant leaves its
// opposite side open; a full or fully paired block overflows into a fresh
// sibling block created immediately after it.
func (e *Engine) AppendToBlock(ctx context.Context, block, comp *models.ContentNode, userID uuid.UUID, isCut bool) (*models.ContentNode, error) {
	occupants, err := e.store.Find(ctx, store.Query{Eq: map[string]any{
		models.FieldParentID: block.ID,
		models.FieldType:     models.TypeComponent,
	}})
	if err != nil {
		return nil, err
	}

	switch {
	case len(occupants) == 0:
		return e.Append(ctx, block, comp, isCut)

	case len(occupants) == 1 && (occupants[0].Layout == models.LayoutLeft || occupants[0].Layout == models.LayoutRight):
		if occupants[0].Layout == models.LayoutLeft {
			comp.Layout = models.LayoutRight
		} else {
			comp.Layout = models.LayoutLeft
		}
		placed, err := e.Append(ctx, block, comp, isCut)
		if err != nil {
			return nil, err
		}
		if placed.Layout != comp.Layout {
			// Cut carries position only; fix the side explicitly.
			placed, err = e.store.Update(ctx, placed.ID, map[string]any{
				models.FieldLayout: string(comp.Layout),
			})
			if err != nil {
				return nil, err
			}
		}
		return placed, nil

	default:
		// No open side: build a sibling block right after this one and
		// place the component there.
		sibling, err := e.InsertRecursive(ctx, block.ParentID, userID,
			map[string]any{models.FieldSortOrder: block.SortOrder + 1},
			[]models.NodeType{models.TypeBlock},
		)
		if err != nil {
			return nil, err
		}
		return e.AppendToBlock(ctx, sibling, comp, userID, isCut)
	}
}

// Cut re-parents child under parent at the given sort order. Moving across
// courses rewrites the denormalized courseId on every descendant.
func (e *Engine) Cut(ctx context.Context, parent, child *models.ContentNode, sortOrder int) (*models.ContentNode, error) {
	// Descendants must be enumerated before the move: the walk is scoped by
	// the child's current courseId.
	descendants, err := e.Descendants(ctx, child)
	if err != nil {
		return nil, err
	}

	newCourse := courseIDOf(parent)
	delta := map[string]any{
		models.FieldParentID: parent.ID,
		models.FieldCourseID: newCourse,
	}
	if sortOrder > 0 {
		delta[models.FieldSortOrder] = sortOrder
	}
	moved, err := e.Update(ctx, child.ID, delta)
	if err != nil {
		return nil, err
	}

	// The update's own maintenance renumbered the destination group; close
	// the gap the child left behind in its old sibling group.
	if child.ParentID != nil && (moved.ParentID == nil || *child.ParentID != *moved.ParentID) {
		if err := e.updateSortOrder(ctx, child, true); err != nil {
			return nil, err
		}
	}

	if newCourse != child.CourseID {
		for _, d := range descendants {
			if _, err := e.store.Update(ctx, d.ID, map[string]any{
				models.FieldCourseID: newCourse,
			}); err != nil {
				return nil, err
			}
		}
		e.invalidate(ctx, child.CourseID)
	}
	e.invalidate(ctx, newCourse)
	return moved, nil
}

type maintainOpts struct {
	skipSortOrder bool
	skipPlugins   bool
	removed       bool
	force         bool
}

// maintain runs the sort-order maintainer and the plugin reconciler for a
// just-mutated node. The two touch disjoint fields and can safely race, so
// they run concurrently.
func (e *Engine) maintain(ctx context.Context, n *models.ContentNode, opts maintainOpts) error {
	g, gctx := errgroup.WithContext(ctx)
	if !opts.skipSortOrder {
		g.Go(func() error {
			return e.updateSortOrder(gctx, n, opts.removed)
		})
	}
	if !opts.skipPlugins {
		g.Go(func() error {
			return e.UpdateEnabledPlugins(gctx, n, ReconcileOptions{Force: opts.force})
		})
	}
	return g.Wait()
}

// refresh re-reads a node after maintenance so the caller sees its final
// sort order. Falls back to the stale copy if the node vanished meanwhile.
func (e *Engine) refresh(ctx context.Context, n *models.ContentNode) (*models.ContentNode, error) {
	fresh, err := e.store.Get(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return n, nil
	}
	return fresh, nil
}

func (e *Engine) invalidate(ctx context.Context, courseID uuid.UUID) {
	if e.cache == nil || courseID == uuid.Nil {
		return
	}
	e.cache.InvalidateCourse(ctx, courseID)
}

// courseIDOf returns the course a node belongs to: a course node roots its
// own id, everything else carries the denormalized reference.
func courseIDOf(n *models.ContentNode) uuid.UUID {
	if n.Type == models.TypeCourse {
		return n.ID
	}
	return n.CourseID
}
