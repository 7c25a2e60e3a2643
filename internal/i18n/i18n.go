// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package i18n resolves localized placeholder strings from JSON locale
// files embedded at compile time. The content engine uses it for the
// default titles and body text of freshly constructed nodes.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
)

//go:embed locales
var embedLocales embed.FS

// Catalog holds the loaded locale tables.
type Catalog struct {
	locales map[string]map[string]string
}

// Load parses every embedded locale file. The English locale must exist —
// it is the fallback for every other locale.
func Load() (*Catalog, error) {
	c := &Catalog{locales: make(map[string]map[string]string)}

	entries, err := fs.ReadDir(embedLocales, "locales")
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := embedLocales.ReadFile("locales/" + name)
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", name, err)
		}
		table := make(map[string]string)
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", name, err)
		}
		c.locales[strings.TrimSuffix(name, ".json")] = table
	}

	if _, ok := c.locales["en"]; !ok {
		return nil, fmt.Errorf("fallback locale en missing")
	}
	return c, nil
}

// Translate resolves key in the given locale, falling back to English and
// finally to the key itself so a missing entry never blocks a mutation.
func (c *Catalog) Translate(locale, key string) string {
	if table, ok := c.locales[locale]; ok {
		if v, ok := table[key]; ok {
			return v
		}
	}
	if v, ok := c.locales["en"][key]; ok {
		return v
	}
	return key
}

// Locales lists the loaded locale codes.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.locales))
	for l := range c.locales {
		out = append(out, l)
	}
	return out
}
