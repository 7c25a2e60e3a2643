// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the content hierarchy data model. Every record in
// the tree — course, config, menu, page, article, block, component — is a
// ContentNode, differentiated by the Type field.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NodeType is the closed enumeration of tree levels.
type NodeType string

const (
	TypeCourse    NodeType = "course"
	TypeConfig    NodeType = "config"
	TypeMenu      NodeType = "menu"
	TypePage      NodeType = "page"
	TypeArticle   NodeType = "article"
	TypeBlock     NodeType = "block"
	TypeComponent NodeType = "component"
)

// typeRank orders the hierarchy for placement-distance comparisons.
// Menus and pages share a level; config carries no rank.
var typeRank = map[NodeType]int{
	TypeCourse:    0,
	TypeMenu:      1,
	TypePage:      1,
	TypeArticle:   2,
	TypeBlock:     3,
	TypeComponent: 4,
}

// Hierarchy is the canonical top-down type chain used when constructing a
// vertical slice of the tree. Pages stand in for the content-object level.
var Hierarchy = []NodeType{TypeCourse, TypePage, TypeArticle, TypeBlock, TypeComponent}

// Rank returns the hierarchy depth of t. ok is false for config and for
// unknown types.
func (t NodeType) Rank() (int, bool) {
	r, ok := typeRank[t]
	return r, ok
}

// Valid reports whether t is one of the seven known node types.
func (t NodeType) Valid() bool {
	_, ok := typeRank[t]
	return ok || t == TypeConfig
}

// IsContentObject reports whether t sits at the menu/page level.
func (t NodeType) IsContentObject() bool {
	return t == TypeMenu || t == TypePage
}

// SchemaClass returns the validation-schema category for t: menus and pages
// merge into "contentobject", everything else maps to its raw type name.
func (t NodeType) SchemaClass() string {
	if t.IsContentObject() {
		return "contentobject"
	}
	return string(t)
}

// ParentType returns the canonical type one level above t in the hierarchy.
// Content objects answer course even though menus may also nest under menus.
func (t NodeType) ParentType() NodeType {
	switch t {
	case TypeMenu, TypePage:
		return TypeCourse
	case TypeArticle:
		return TypePage
	case TypeBlock:
		return TypeArticle
	case TypeComponent:
		return TypeBlock
	}
	return TypeCourse
}

// Layout governs paired component placement inside a block.
type Layout string

const (
	LayoutFull  Layout = "full"
	LayoutLeft  Layout = "left"
	LayoutRight Layout = "right"
)

// ContentNode is one record in the content hierarchy. Fields that only
// apply to certain types (Layout, Component, EnabledPlugins, ...) stay
// zero-valued elsewhere; plugin-defined schema attributes that the core
// does not model live in Extra and survive round-trips untouched.
type ContentNode struct {
	ID             uuid.UUID
	Type           NodeType
	ParentID       *uuid.UUID
	CourseID       uuid.UUID
	SortOrder      int // 1-based among siblings; 0 means unordered (course/config) or not yet placed
	Layout         Layout
	Component      string
	EnabledPlugins []string
	Menu           string
	Theme          string
	TrackingID     string
	CreatedBy      uuid.UUID
	Title          string
	DisplayTitle   string
	Body           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Extra          map[string]any
}

// Wire field names, shared by the JSON codec, the query predicates, and
// the store backends.
const (
	FieldID             = "_id"
	FieldType           = "_type"
	FieldParentID       = "_parentId"
	FieldCourseID       = "_courseId"
	FieldSortOrder      = "_sortOrder"
	FieldLayout         = "_layout"
	FieldComponent      = "_component"
	FieldEnabledPlugins = "_enabledPlugins"
	FieldMenu           = "_menu"
	FieldTheme          = "_theme"
	FieldTrackingID     = "_trackingId"
	FieldCreatedBy      = "createdBy"
	FieldTitle          = "title"
	FieldDisplayTitle   = "displayTitle"
	FieldBody           = "body"
	FieldCreatedAt      = "createdAt"
	FieldUpdatedAt      = "updatedAt"
)

// Map flattens the node into its wire representation. Zero-valued optional
// fields are omitted, matching the document-store shape.
func (n *ContentNode) Map() map[string]any {
	m := make(map[string]any, len(n.Extra)+12)
	for k, v := range n.Extra {
		m[k] = v
	}
	if n.ID != uuid.Nil {
		m[FieldID] = n.ID.String()
	}
	m[FieldType] = string(n.Type)
	if n.ParentID != nil {
		m[FieldParentID] = n.ParentID.String()
	}
	if n.CourseID != uuid.Nil {
		m[FieldCourseID] = n.CourseID.String()
	}
	if n.SortOrder != 0 {
		m[FieldSortOrder] = n.SortOrder
	}
	if n.Layout != "" {
		m[FieldLayout] = string(n.Layout)
	}
	if n.Component != "" {
		m[FieldComponent] = n.Component
	}
	if n.EnabledPlugins != nil {
		m[FieldEnabledPlugins] = append([]string(nil), n.EnabledPlugins...)
	}
	if n.Menu != "" {
		m[FieldMenu] = n.Menu
	}
	if n.Theme != "" {
		m[FieldTheme] = n.Theme
	}
	if n.TrackingID != "" {
		m[FieldTrackingID] = n.TrackingID
	}
	if n.CreatedBy != uuid.Nil {
		m[FieldCreatedBy] = n.CreatedBy.String()
	}
	if n.Title != "" {
		m[FieldTitle] = n.Title
	}
	if n.DisplayTitle != "" {
		m[FieldDisplayTitle] = n.DisplayTitle
	}
	if n.Body != "" {
		m[FieldBody] = n.Body
	}
	if !n.CreatedAt.IsZero() {
		m[FieldCreatedAt] = n.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if !n.UpdatedAt.IsZero() {
		m[FieldUpdatedAt] = n.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return m
}

// FromMap rebuilds a node from its wire representation. Unknown keys land
// in Extra. Returns an error for malformed ids or timestamps.
func FromMap(m map[string]any) (*ContentNode, error) {
	n := &ContentNode{}
	for k, v := range m {
		switch k {
		case FieldID:
			id, err := parseUUID(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			n.ID = id
		case FieldType:
			n.Type = NodeType(toString(v))
		case FieldParentID:
			if v == nil {
				continue
			}
			id, err := parseUUID(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			n.ParentID = &id
		case FieldCourseID:
			id, err := parseUUID(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			n.CourseID = id
		case FieldSortOrder:
			n.SortOrder = toInt(v)
		case FieldLayout:
			n.Layout = Layout(toString(v))
		case FieldComponent:
			n.Component = toString(v)
		case FieldEnabledPlugins:
			n.EnabledPlugins = toStrings(v)
		case FieldMenu:
			n.Menu = toString(v)
		case FieldTheme:
			n.Theme = toString(v)
		case FieldTrackingID:
			n.TrackingID = toString(v)
		case FieldCreatedBy:
			id, err := parseUUID(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			n.CreatedBy = id
		case FieldTitle:
			n.Title = toString(v)
		case FieldDisplayTitle:
			n.DisplayTitle = toString(v)
		case FieldBody:
			n.Body = toString(v)
		case FieldCreatedAt:
			t, err := parseTime(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			n.CreatedAt = t
		case FieldUpdatedAt:
			t, err := parseTime(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", k, err)
			}
			n.UpdatedAt = t
		default:
			if n.Extra == nil {
				n.Extra = make(map[string]any)
			}
			n.Extra[k] = v
		}
	}
	return n, nil
}

// ApplyDelta returns a copy of n with the delta shallow-merged over its wire
// representation. A nil delta value removes the field. The receiver is not
// modified.
func (n *ContentNode) ApplyDelta(delta map[string]any) (*ContentNode, error) {
	m := n.Map()
	for k, v := range delta {
		if v == nil {
			delete(m, k)
			continue
		}
		m[k] = v
	}
	return FromMap(m)
}

// Clone returns a deep copy of n.
func (n *ContentNode) Clone() *ContentNode {
	c := *n
	if n.ParentID != nil {
		p := *n.ParentID
		c.ParentID = &p
	}
	if n.EnabledPlugins != nil {
		c.EnabledPlugins = append([]string(nil), n.EnabledPlugins...)
	}
	if n.Extra != nil {
		c.Extra = make(map[string]any, len(n.Extra))
		for k, v := range n.Extra {
			c.Extra[k] = v
		}
	}
	return &c
}

// Field reads a wire field off the node by name, for predicate matching.
func (n *ContentNode) Field(key string) (any, bool) {
	m := n.Map()
	v, ok := m[key]
	return v, ok
}

// MarshalJSON emits the wire representation.
func (n *ContentNode) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.Map())
}

// UnmarshalJSON accepts the wire representation, folding unknown keys into
// Extra.
func (n *ContentNode) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	parsed, err := FromMap(m)
	if err != nil {
		return err
	}
	*n = *parsed
	return nil
}

func parseUUID(v any) (uuid.UUID, error) {
	switch t := v.(type) {
	case uuid.UUID:
		return t, nil
	case *uuid.UUID:
		if t == nil {
			return uuid.Nil, nil
		}
		return *t, nil
	case string:
		return uuid.Parse(t)
	}
	return uuid.Nil, fmt.Errorf("cannot parse %T as uuid", v)
}

func parseTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return time.Parse(time.RFC3339Nano, t)
	}
	return time.Time{}, fmt.Errorf("cannot parse %T as time", v)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case json.Number:
		i, _ := t.Int64()
		return int(i)
	}
	return 0
}

func toStrings(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			out = append(out, toString(e))
		}
		return out
	}
	return nil
}
