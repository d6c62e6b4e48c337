// Package i18n serves the UI string tables. Tables are embedded at build
// time and immutable after Load.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed locales/*.toml
var localeFS embed.FS

// FallbackLanguage is used when a requested language has no table or a
// key is missing from its table.
const FallbackLanguage = "en"

// Catalog is an immutable (language, key) string lookup.
type Catalog struct {
	tables   map[string]map[string]string
	fallback string
}

// Load parses the embedded locale tables. fallback must name one of the
// embedded languages; empty means FallbackLanguage.
func Load(fallback string) (*Catalog, error) {
	if fallback == "" {
		fallback = FallbackLanguage
	}
	entries, err := fs.Glob(localeFS, "locales/*.toml")
	if err != nil {
		return nil, fmt.Errorf("glob locales: %w", err)
	}
	tables := make(map[string]map[string]string, len(entries))
	for _, path := range entries {
		raw, err := localeFS.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		table := map[string]string{}
		if err := toml.Unmarshal(raw, &table); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		lang := strings.TrimSuffix(strings.TrimPrefix(path, "locales/"), ".toml")
		tables[lang] = table
	}
	if _, ok := tables[fallback]; !ok {
		return nil, fmt.Errorf("fallback language %q has no locale table", fallback)
	}
	return &Catalog{tables: tables, fallback: fallback}, nil
}

// Languages lists the available languages, sorted.
func (c *Catalog) Languages() []string {
	out := make([]string, 0, len(c.tables))
	for lang := range c.tables {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// Lookup resolves key in lang, falling back to the fallback language.
// Unknown keys are returned unchanged, matching the frontend contract.
func (c *Catalog) Lookup(lang, key string) string {
	if table, ok := c.tables[lang]; ok {
		if v, ok := table[key]; ok {
			return v
		}
	}
	if v, ok := c.tables[c.fallback][key]; ok {
		return v
	}
	return key
}

// Table returns the full string table for lang, with fallback entries
// filled in for keys the language is missing. The returned map is a
// copy; callers may not mutate the catalog. ok is false when lang has
// no table at all.
func (c *Catalog) Table(lang string) (map[string]string, bool) {
	table, ok := c.tables[lang]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(c.tables[c.fallback]))
	for k, v := range c.tables[c.fallback] {
		out[k] = v
	}
	for k, v := range table {
		out[k] = v
	}
	return out, true
}
