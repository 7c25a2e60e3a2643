// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// enabledplugins.go recomputes a course's enabled-plugin set from its
// component and extension usage, and re-saves affected nodes so a
// defaulting store layer can apply the now-current schema defaults.
package content

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"courseforge/internal/models"
	"courseforge/internal/store"
)

// ReconcileOptions controls UpdateEnabledPlugins. Force rewrites the config
// and refreshes defaults even when the computed set is unchanged.
type ReconcileOptions struct {
	Force bool
}

// UpdateEnabledPlugins recomputes the enabled-plugin set for the course the
// item belongs to: currently enabled plugins that are registered
// extensions, every present component's plugin, and the config's menu and
// theme selections. Unchanged sets short-circuit without writes unless
// forced. Newly added plugins (or all of them, when forced) have their
// schema target types resolved and every matching node in the course is
// re-saved with an empty delta to pick up schema defaults.
func (e *Engine) UpdateEnabledPlugins(ctx context.Context, item *models.ContentNode, opts ReconcileOptions) error {
	courseID := courseIDOf(item)
	if courseID == uuid.Nil {
		return nil
	}

	configs, err := e.store.Find(ctx, store.Query{Eq: map[string]any{
		models.FieldType:     models.TypeConfig,
		models.FieldCourseID: courseID,
	}})
	if err != nil {
		return err
	}
	if len(configs) == 0 {
		// Course still under construction; nothing to reconcile yet.
		return nil
	}
	cfg := configs[0]

	extensions, err := e.plugins.ListExtensions(ctx)
	if err != nil {
		return fmt.Errorf("list extensions: %w", err)
	}
	isExtension := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		isExtension[ext] = true
	}

	seen := make(map[string]bool)
	var candidate []string
	add := func(plugin string) {
		if plugin == "" || seen[plugin] {
			return
		}
		seen[plugin] = true
		candidate = append(candidate, plugin)
	}

	for _, plugin := range cfg.EnabledPlugins {
		if isExtension[plugin] {
			add(plugin)
		}
	}
	components, err := e.store.Find(ctx, store.Query{Eq: map[string]any{
		models.FieldType:     models.TypeComponent,
		models.FieldCourseID: courseID,
	}})
	if err != nil {
		return err
	}
	for _, c := range components {
		add(c.Component)
	}
	add(cfg.Menu)
	add(cfg.Theme)

	if !opts.Force && sameMembers(candidate, cfg.EnabledPlugins) {
		return nil
	}

	if _, err := e.store.Update(ctx, cfg.ID, map[string]any{
		models.FieldEnabledPlugins: candidate,
	}); err != nil {
		return err
	}
	slog.Debug("enabled plugins updated", "course", courseID, "plugins", candidate)

	toRefresh := candidate
	if !opts.Force {
		toRefresh = nil
		current := make(map[string]bool, len(cfg.EnabledPlugins))
		for _, p := range cfg.EnabledPlugins {
			current[p] = true
		}
		for _, p := range candidate {
			if !current[p] {
				toRefresh = append(toRefresh, p)
			}
		}
	}

	return e.refreshSchemaDefaults(ctx, courseID, toRefresh)
}

// refreshSchemaDefaults resolves the content types targeted by the given
// plugins' schemas and re-saves every matching node in the course with an
// empty delta. The re-save is deliberate: it forces default-value
// application from the now-current schema, not a logical field change.
// Schema name resolution is best-effort — a plugin whose schemas cannot be
// resolved is skipped, never fatal.
func (e *Engine) refreshSchemaDefaults(ctx context.Context, courseID uuid.UUID, pluginIDs []string) error {
	targets := make(map[models.NodeType]bool)
	for _, plugin := range pluginIDs {
		schemas, err := e.plugins.SchemasForPlugin(ctx, plugin)
		if err != nil {
			slog.Debug("schema lookup failed, skipping plugin", "plugin", plugin, "error", err)
			continue
		}
		for _, schema := range schemas {
			target, err := e.plugins.TargetTypeOfSchema(ctx, schema)
			if err != nil {
				continue
			}
			switch target {
			case "contentobject":
				// A merged contentobject schema covers both levels.
				targets[models.TypeMenu] = true
				targets[models.TypePage] = true
			case string(models.TypeComponent):
				// Components take defaults from their own plugin schema,
				// not from here.
			default:
				if t := models.NodeType(target); t.Valid() {
					targets[t] = true
				}
			}
		}
	}
	if len(targets) == 0 {
		return nil
	}

	in := make([]any, 0, len(targets))
	for t := range targets {
		in = append(in, string(t))
	}
	affected, err := e.store.Find(ctx, store.Query{
		Eq: map[string]any{models.FieldCourseID: courseID},
		In: map[string][]any{models.FieldType: in},
	})
	if err != nil {
		return err
	}
	for _, n := range affected {
		if _, err := e.store.Update(ctx, n.ID, map[string]any{}); err != nil {
			return err
		}
	}
	slog.Debug("schema defaults re-applied", "course", courseID, "nodes", len(affected))
	return nil
}

// sameMembers reports whether the two sets have identical membership,
// ignoring order.
func sameMembers(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	for _, v := range b {
		if !set[v] {
			return false
		}
	}
	return true
}
