// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package plugins provides the plugin registry consumed by the content
// engine: which plugins are course-wide extensions, which schemas each
// plugin contributes, and which content type every schema targets. The
// engine uses this to recompute a course's enabled-plugin set and to decide
// which node types need schema defaults re-applied.
package plugins

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry is the plugin metadata lookup the content engine depends on.
type Registry interface {
	// ListExtensions returns the ids of all registered extension plugins.
	ListExtensions(ctx context.Context) ([]string, error)

	// SchemasForPlugin returns the schema ids a plugin contributes.
	SchemasForPlugin(ctx context.Context, pluginID string) ([]string, error)

	// TargetTypeOfSchema returns the content type a schema applies to
	// ("contentobject", "article", "block", "component", ...).
	TargetTypeOfSchema(ctx context.Context, schemaID string) (string, error)
}

// Plugin describes one registered plugin and its schema contributions.
type Plugin struct {
	ID        string
	Extension bool              // true for course-wide extensions
	Schemas   map[string]string // schema id -> target content type
}

// StaticRegistry is a Registry seeded at startup. All methods are safe for
// concurrent use.
type StaticRegistry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
}

// NewStaticRegistry creates a registry from the given plugins.
func NewStaticRegistry(plugins ...Plugin) *StaticRegistry {
	r := &StaticRegistry{plugins: make(map[string]Plugin, len(plugins))}
	for _, p := range plugins {
		r.plugins[p.ID] = p
	}
	return r
}

// Register adds or replaces a plugin at runtime.
func (r *StaticRegistry) Register(p Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.plugins[p.ID] = p
}

// ListExtensions returns extension plugin ids in stable order.
func (r *StaticRegistry) ListExtensions(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for id, p := range r.plugins {
		if p.Extension {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out, nil
}

// SchemasForPlugin returns the plugin's schema ids in stable order. Unknown
// plugins yield an error so the caller can fall back.
func (r *StaticRegistry) SchemasForPlugin(_ context.Context, pluginID string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[pluginID]
	if !ok {
		return nil, fmt.Errorf("plugin %q not registered", pluginID)
	}
	var out []string
	for schema := range p.Schemas {
		out = append(out, schema)
	}
	sort.Strings(out)
	return out, nil
}

// TargetTypeOfSchema returns the content type a schema targets.
func (r *StaticRegistry) TargetTypeOfSchema(_ context.Context, schemaID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if target, ok := p.Schemas[schemaID]; ok {
			return target, nil
		}
	}
	return "", fmt.Errorf("schema %q not registered", schemaID)
}

// Defaults returns the plugin set a fresh install ships with: the text
// component, the boxmenu menu renderer, and the vanilla theme.
func Defaults() []Plugin {
	return []Plugin{
		{ID: "text", Schemas: map[string]string{"text-component": "component"}},
		{ID: "boxmenu", Schemas: map[string]string{"boxmenu-menu": "menu"}},
		{ID: "vanilla", Schemas: map[string]string{"vanilla-theme": "course"}},
	}
}
