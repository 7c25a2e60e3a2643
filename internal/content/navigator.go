// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// navigator.go provides tree traversal over the node hierarchy: descendant
// enumeration and directed ascend/descend walks used to classify paste
// targets.
package content

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"courseforge/internal/models"
	"courseforge/internal/store"
)

// maxDepth bounds directed walks; the type hierarchy is five levels deep,
// so anything past this indicates corrupted parent references.
const maxDepth = 8

// Descendants returns every node transitively parented under root in
// breadth-first, level-by-level order (sibling order within a level is not
// guaranteed). The walk fetches the whole course once and expands a
// frontier against it. For a course root the course's config node is
// appended, since configs sit outside the parent chain but travel with
// their course. An empty result is not an error.
func (e *Engine) Descendants(ctx context.Context, root *models.ContentNode) ([]*models.ContentNode, error) {
	courseID := courseIDOf(root)

	if e.cache != nil {
		if nodes, ok := e.cache.GetTree(ctx, courseID, root.ID); ok {
			return nodes, nil
		}
	}

	all, err := e.store.Find(ctx, store.Query{Eq: map[string]any{
		models.FieldCourseID: courseID,
	}})
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{root.ID: true}
	frontier := map[uuid.UUID]bool{root.ID: true}
	var out []*models.ContentNode

	for len(frontier) > 0 {
		next := make(map[uuid.UUID]bool)
		for _, n := range all {
			if seen[n.ID] || n.ParentID == nil || !frontier[*n.ParentID] {
				continue
			}
			seen[n.ID] = true
			next[n.ID] = true
			out = append(out, n)
		}
		frontier = next
	}

	if root.Type == models.TypeCourse {
		configs, err := e.store.Find(ctx, store.Query{Eq: map[string]any{
			models.FieldType:     models.TypeConfig,
			models.FieldCourseID: courseID,
		}})
		if err != nil {
			return nil, err
		}
		out = append(out, configs...)
	}

	if e.cache != nil {
		e.cache.SetTree(ctx, courseID, root.ID, out)
	}
	return out, nil
}

// DescendToType walks downward from node, at each level stepping into the
// last-sorted child, and returns the first node at targetType's hierarchy
// level on that path. Menus and pages share a level, so a menu satisfies a
// page target and vice versa. If the level is never reached the deepest
// reachable node is returned.
func (e *Engine) DescendToType(ctx context.Context, node *models.ContentNode, targetType models.NodeType) (*models.ContentNode, error) {
	targetRank, rankOK := targetType.Rank()
	current := node
	for depth := 0; depth < maxDepth; depth++ {
		if current.Type == targetType {
			return current, nil
		}
		if rankOK {
			if r, ok := current.Type.Rank(); ok && r >= targetRank {
				return current, nil
			}
		}
		children, err := e.store.Find(ctx, store.Query{Eq: map[string]any{
			models.FieldParentID: current.ID,
		}})
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return current, nil
		}
		// Find returns siblings sorted ascending; step into the last one.
		current = children[len(children)-1]
	}
	return current, nil
}

// AscendToType walks upward from node via parent references until a node of
// targetType is found (node itself counts). Exhausting the chain fails with
// ErrInvalidParent.
func (e *Engine) AscendToType(ctx context.Context, node *models.ContentNode, targetType models.NodeType) (*models.ContentNode, error) {
	current := node
	for depth := 0; depth < maxDepth; depth++ {
		if current.Type == targetType {
			return current, nil
		}
		if current.ParentID == nil {
			return nil, fmt.Errorf("%w: no %s above node %s", ErrInvalidParent, targetType, node.ID)
		}
		parent, err := e.store.Get(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, fmt.Errorf("%w: parent %s of node %s does not resolve", ErrInvalidParent, *current.ParentID, current.ID)
		}
		current = parent
	}
	return nil, fmt.Errorf("%w: no %s above node %s", ErrInvalidParent, targetType, node.ID)
}
