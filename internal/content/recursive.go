// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// recursive.go bulk-constructs vertical slices of the hierarchy with
// localized placeholder content. The whole operation is all-or-nothing:
// any failure mid-chain rolls back every node already created.
package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"courseforge/internal/models"
	"courseforge/internal/store"
)

// InsertRecursive creates a chain of nodes one per type, each parented
// under the previous. With a nil rootID a new course is created and a
// config is always added alongside it; otherwise the chain continues below
// the existing root. An empty childTypes is inferred by slicing the
// canonical hierarchy at the root's type (a menu root counts as the course
// position, since menus also contain content objects). custom is merged
// into the first created node. Returns the first created node of the
// chain.
func (e *Engine) InsertRecursive(ctx context.Context, rootID *uuid.UUID, createdBy uuid.UUID, custom map[string]any, childTypes []models.NodeType) (*models.ContentNode, error) {
	var created []*models.ContentNode
	rollback := func(cause error) error {
		for i := len(created) - 1; i >= 0; i-- {
			if err := e.store.Delete(ctx, store.ByID(created[i].ID)); err != nil {
				slog.Error("rollback delete failed", "node", created[i].ID, "error", err)
			}
		}
		return cause
	}

	chain := childTypes
	var (
		parent   *models.ContentNode
		courseID uuid.UUID
		first    *models.ContentNode
	)

	if rootID == nil {
		if len(chain) == 0 {
			chain = []models.NodeType{models.TypePage, models.TypeArticle, models.TypeBlock, models.TypeComponent}
		}
		chain = append([]models.NodeType{models.TypeConfig}, chain...)

		course := e.defaultNode(models.TypeCourse, createdBy)
		course, err := applyCustom(course, custom)
		if err != nil {
			return nil, err
		}
		custom = nil // consumed by the course

		course, err = e.Insert(ctx, course, InsertOptions{})
		if err != nil {
			return nil, err
		}
		created = append(created, course)
		parent, courseID, first = course, course.ID, course
	} else {
		root, err := e.store.Get(ctx, *rootID)
		if err != nil {
			return nil, err
		}
		if root == nil {
			return nil, fmt.Errorf("%w: root %s", ErrNotFound, *rootID)
		}
		if len(chain) == 0 {
			rank, ok := root.Type.Rank()
			if !ok {
				return nil, fmt.Errorf("%w: cannot construct below a %s", ErrValidation, root.Type)
			}
			if root.Type == models.TypeMenu {
				rank = 0
			}
			chain = models.Hierarchy[rank+1:]
		}
		parent, courseID = root, courseIDOf(root)
	}

	for _, typ := range chain {
		n := e.defaultNode(typ, createdBy)
		n.CourseID = courseID
		if typ != models.TypeConfig {
			n.ParentID = &parent.ID
		}
		if custom != nil {
			var err error
			n, err = applyCustom(n, custom)
			if err != nil {
				return nil, rollback(err)
			}
			custom = nil
		}

		inserted, err := e.Insert(ctx, n, InsertOptions{})
		if err != nil {
			return nil, rollback(err)
		}
		created = append(created, inserted)

		if typ != models.TypeConfig {
			parent = inserted
			if first == nil {
				first = inserted
			}
		}
	}

	return e.refresh(ctx, first)
}

// applyCustom merges caller-supplied fields over a freshly built node.
func applyCustom(n *models.ContentNode, custom map[string]any) (*models.ContentNode, error) {
	if len(custom) == 0 {
		return n, nil
	}
	merged, err := n.ApplyDelta(custom)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return merged, nil
}

// defaultNode builds the placeholder node inserted for each level: a
// localized title (and body where the level carries one), and for
// components the defaulted text component on a full-width layout.
func (e *Engine) defaultNode(typ models.NodeType, createdBy uuid.UUID) *models.ContentNode {
	tr := func(key string) string { return e.catalog.Translate(e.locale, key) }

	n := &models.ContentNode{Type: typ, CreatedBy: createdBy}
	switch typ {
	case models.TypeCourse:
		n.Title = tr("app.placeholdernewcourse")
		n.DisplayTitle = n.Title
		n.Body = tr("app.placeholdernewcoursebody")
	case models.TypeConfig:
		n.Menu = "boxmenu"
		n.Theme = "vanilla"
	case models.TypeMenu:
		n.Title = tr("app.placeholdernewmenu")
		n.DisplayTitle = n.Title
	case models.TypePage:
		n.Title = tr("app.placeholdernewpage")
		n.DisplayTitle = n.Title
		n.Body = tr("app.placeholdernewpagebody")
	case models.TypeArticle:
		n.Title = tr("app.placeholdernewarticle")
	case models.TypeBlock:
		n.Title = tr("app.placeholdernewblock")
	case models.TypeComponent:
		n.Title = tr("app.placeholdernewcomponent")
		n.DisplayTitle = n.Title
		n.Body = tr("app.placeholdernewcomponentbody")
		n.Component = "text"
		n.Layout = models.LayoutFull
	}
	return n
}
