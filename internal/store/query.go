// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"

	"github.com/google/uuid"

	"courseforge/internal/models"
)

// Query is a field predicate over content nodes: Eq/Ne/In conditions are
// ANDed together, and Or holds alternative subqueries ORed with each other
// (and ANDed with the rest). Field names are the wire names from the models
// package.
type Query struct {
	Eq map[string]any
	Ne map[string]any
	In map[string][]any
	Or []Query
}

// ByID matches a single node by its id.
func ByID(id uuid.UUID) Query {
	return Query{Eq: map[string]any{models.FieldID: id}}
}

// ByIDs matches any node whose id is in the given set.
func ByIDs(ids []uuid.UUID) Query {
	in := make([]any, len(ids))
	for i, id := range ids {
		in[i] = id
	}
	return Query{In: map[string][]any{models.FieldID: in}}
}

// Empty reports whether the query has no conditions at all. Backends refuse
// empty delete queries to avoid wiping a collection by accident.
func (q Query) Empty() bool {
	return len(q.Eq) == 0 && len(q.Ne) == 0 && len(q.In) == 0 && len(q.Or) == 0
}

// Matches evaluates the predicate against a node in memory.
func (q Query) Matches(n *models.ContentNode) bool {
	for k, want := range q.Eq {
		got, _ := n.Field(k)
		if normalize(got) != normalize(want) {
			return false
		}
	}
	for k, want := range q.Ne {
		got, _ := n.Field(k)
		if normalize(got) == normalize(want) {
			return false
		}
	}
	for k, wants := range q.In {
		got, _ := n.Field(k)
		found := false
		for _, want := range wants {
			if normalize(got) == normalize(want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(q.Or) > 0 {
		matched := false
		for _, sub := range q.Or {
			if sub.Matches(n) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

// normalize folds query values into a comparable string form so that
// uuid.UUID, typed strings, and numeric variants all compare naturally.
func normalize(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case uuid.UUID:
		return t.String()
	case *uuid.UUID:
		if t == nil {
			return ""
		}
		return t.String()
	case models.NodeType:
		return string(t)
	case models.Layout:
		return string(t)
	case int:
		return fmt.Sprintf("%d", t)
	case int32:
		return fmt.Sprintf("%d", t)
	case int64:
		return fmt.Sprintf("%d", t)
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	case bool:
		return fmt.Sprintf("%t", t)
	}
	return fmt.Sprintf("%v", v)
}
