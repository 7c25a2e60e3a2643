// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// clone.go implements the paste engine. Placement strategy is chosen by
// the rank distance between the source's type and the target's type in the
// fixed hierarchy course < menu|page < article < block < component; the
// recursion depth is bounded by those five levels.
package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"courseforge/internal/models"
	"courseforge/internal/store"
)

// Clone copies (or, with isCut, moves) the subtree rooted at id under the
// target parent. The copy drops the source's id and tracking id, records
// userID as creator, and merges custom over its fields. A cloned course
// brings its config along; a plain clone then recurses over the original's
// children — excluding the fresh copy itself, so pasting a menu into
// itself terminates. A nil target parent is only legal for course and
// config nodes ("clone a whole course").
func (e *Engine) Clone(ctx context.Context, userID, id uuid.UUID, parentID *uuid.UUID, custom map[string]any, isCut bool) (*models.ContentNode, error) {
	src, err := e.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var parent *models.ContentNode
	if parentID == nil {
		if src.Type != models.TypeCourse && src.Type != models.TypeConfig {
			return nil, fmt.Errorf("%w: cloning a %s requires a target parent", ErrInvalidParent, src.Type)
		}
	} else {
		parent, err = e.store.Get(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent %s", ErrNotFound, *parentID)
		}
	}

	node := src.Clone()
	if !isCut {
		node.ID = uuid.Nil
	}
	node.TrackingID = ""
	node.CreatedBy = userID
	if len(custom) > 0 {
		node, err = node.ApplyDelta(custom)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}

	placed, err := e.place(ctx, src, node, parent, userID, custom, isCut)
	if err != nil {
		return nil, err
	}

	if src.Type == models.TypeCourse && !isCut {
		if err := e.cloneConfig(ctx, userID, src.ID, placed.ID); err != nil {
			return nil, err
		}
	}

	if isCut {
		return placed, nil
	}

	// Recurse over the children of the original. The freshly placed copy
	// can itself appear among them (self-referential paste); skip it.
	children, err := e.store.Find(ctx, store.Query{Eq: map[string]any{
		models.FieldParentID: src.ID,
	}})
	if err != nil {
		return nil, err
	}
	for _, child := range children {
		if child.ID == placed.ID {
			continue
		}
		if _, err := e.Clone(ctx, userID, child.ID, &placed.ID, nil, false); err != nil {
			return nil, err
		}
	}
	return e.refresh(ctx, placed)
}

// place positions node (a prepared copy of src) relative to parent.
func (e *Engine) place(ctx context.Context, src, node, parent *models.ContentNode, userID uuid.UUID, custom map[string]any, isCut bool) (*models.ContentNode, error) {
	if parent == nil {
		// Whole-course (or config) clone: insert at the root.
		node.ParentID = nil
		return e.Insert(ctx, node, InsertOptions{})
	}

	srcRank, srcOK := src.Type.Rank()
	parentRank, parentOK := parent.Type.Rank()
	if !srcOK || !parentOK {
		return nil, fmt.Errorf("%w: cannot paste %s into %s", ErrValidation, src.Type, parent.Type)
	}

	dist := srcRank - parentRank
	switch {
	case dist == 1 || (src.Type.IsContentObject() && parent.Type == models.TypeMenu):
		// Expected placement: the target is the immediate parent level
		// (content objects also nest under menus).
		if src.Type == models.TypeComponent {
			return e.AppendToBlock(ctx, parent, node, userID, isCut)
		}
		return e.Append(ctx, parent, node, isCut)

	case dist >= 2:
		return e.placeUnderAncestor(ctx, src, node, parent, userID, custom, isCut)

	default:
		// Pasting into a peer or a descendant of the source's own level:
		// climb back up to the nearest peer and slot in right after it,
		// under the peer's own parent. The peer's parent is the placement
		// target because the legal container is whatever actually holds the
		// peer (an article's parent may be a menu or a page).
		peer, err := e.AscendToType(ctx, parent, src.Type)
		if err != nil {
			return nil, err
		}
		target := peer
		if peer.ParentID != nil {
			target, err = e.store.Get(ctx, *peer.ParentID)
			if err != nil {
				return nil, err
			}
			if target == nil {
				return nil, fmt.Errorf("%w: parent %s of node %s does not resolve", ErrInvalidParent, *peer.ParentID, peer.ID)
			}
		}
		node.SortOrder = peer.SortOrder + 1
		return e.Append(ctx, target, node, isCut)
	}
}

// placeUnderAncestor handles pasting into a grandparent-or-higher target:
// descend to the nearest existing node of the required immediate-parent
// type, constructing any missing intermediate levels — or, when the caller
// pinned an explicit sort order, construct a brand-new container chain at
// that position.
func (e *Engine) placeUnderAncestor(ctx context.Context, src, node, parent *models.ContentNode, userID uuid.UUID, custom map[string]any, isCut bool) (*models.ContentNode, error) {
	required := src.Type.ParentType()
	requiredRank, _ := required.Rank()

	var target *models.ContentNode
	if _, pinned := custom[models.FieldSortOrder]; pinned {
		parentRank, _ := parent.Type.Rank()
		chain := models.Hierarchy[parentRank+1 : requiredRank+1]
		top, err := e.InsertRecursive(ctx, &parent.ID, userID,
			map[string]any{models.FieldSortOrder: node.SortOrder}, chain)
		if err != nil {
			return nil, err
		}
		target, err = e.DescendToType(ctx, top, required)
		if err != nil {
			return nil, err
		}
		// The pinned order positioned the container, not the node.
		node.SortOrder = 0
	} else {
		deepest, err := e.DescendToType(ctx, parent, required)
		if err != nil {
			return nil, err
		}
		deepRank, ok := deepest.Type.Rank()
		if !ok {
			return nil, fmt.Errorf("%w: cannot extend below %s", ErrValidation, deepest.Type)
		}
		if deepRank < requiredRank {
			// The chain down to the required level does not exist yet;
			// construct the missing levels first. Anything at or beyond the
			// required level already satisfies it (a menu holds articles
			// just like a page does), so no chain is built then.
			chain := models.Hierarchy[deepRank+1 : requiredRank+1]
			top, err := e.InsertRecursive(ctx, &deepest.ID, userID, nil, chain)
			if err != nil {
				return nil, err
			}
			deepest, err = e.DescendToType(ctx, top, required)
			if err != nil {
				return nil, err
			}
		}
		target = deepest
	}

	if src.Type == models.TypeComponent {
		return e.AppendToBlock(ctx, target, node, userID, isCut)
	}
	return e.Append(ctx, target, node, isCut)
}

// cloneConfig copies a course's config record onto a freshly cloned
// course. Configs are not part of the descendant chain but must travel
// with their course.
func (e *Engine) cloneConfig(ctx context.Context, userID, srcCourseID, newCourseID uuid.UUID) error {
	configs, err := e.store.Find(ctx, store.Query{Eq: map[string]any{
		models.FieldType:     models.TypeConfig,
		models.FieldCourseID: srcCourseID,
	}})
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		return nil
	}

	cfg := configs[0].Clone()
	cfg.ID = uuid.Nil
	cfg.TrackingID = ""
	cfg.CreatedBy = userID
	cfg.CourseID = newCourseID
	_, err = e.Insert(ctx, cfg, InsertOptions{})
	return err
}
