// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// sortorder.go keeps sibling sort orders contiguous (1..N, no gaps, no
// duplicates) after every insert, update, or delete touching a sibling
// group.
package content

import (
	"context"

	"courseforge/internal/models"
	"courseforge/internal/store"
)

// updateSortOrder renumbers the sibling group of n. For an insert or move,
// n is spliced in at the index its sort order asks for (appended when
// unset or out of range); for a removal only the survivors are renumbered.
// Courses, configs, and parentless nodes carry no order and are skipped.
// Only rows whose sort order actually changes are written, which makes the
// renumbering idempotent under retry.
func (e *Engine) updateSortOrder(ctx context.Context, n *models.ContentNode, removed bool) error {
	if n.Type == models.TypeCourse || n.Type == models.TypeConfig || n.ParentID == nil {
		return nil
	}

	siblings, err := e.store.Find(ctx, store.Query{
		Eq: map[string]any{models.FieldParentID: *n.ParentID},
		Ne: map[string]any{models.FieldID: n.ID},
	})
	if err != nil {
		return err
	}

	list := siblings
	if !removed {
		idx := n.SortOrder - 1
		if idx < 0 || idx > len(list) {
			idx = len(list)
		}
		list = append(list[:idx:idx], append([]*models.ContentNode{n}, list[idx:]...)...)
	}

	for i, sib := range list {
		want := i + 1
		if sib.SortOrder == want {
			continue
		}
		if _, err := e.store.Update(ctx, sib.ID, map[string]any{
			models.FieldSortOrder: want,
		}); err != nil {
			return err
		}
		sib.SortOrder = want
	}
	return nil
}
