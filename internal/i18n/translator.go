package i18n

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultLanguage matches the device firmware, which ships French first.
const DefaultLanguage = "fr"

//go:embed tables/*.yaml
var builtinTables embed.FS

// Table maps a label key to its localized string.
type Table map[string]string

// Translator resolves label keys against a Table.
// The zero value and a nil *Translator are both usable and translate
// every key to itself.
type Translator struct {
	table Table
}

// New creates a Translator over table. The table is not copied and must
// not be mutated afterwards.
func New(table Table) *Translator {
	return &Translator{table: table}
}

// Translate returns the localized string for key, or key when no
// translation exists.
func (t *Translator) Translate(key string) string {
	if t == nil || t.table == nil {
		return key
	}
	if v, ok := t.table[key]; ok && v != "" {
		return v
	}
	return key
}

// Len returns the number of translations available.
func (t *Translator) Len() int {
	if t == nil {
		return 0
	}
	return len(t.table)
}

// Languages lists the built-in table names.
func Languages() []string {
	entries, err := builtinTables.ReadDir("tables")
	if err != nil {
		return nil
	}
	langs := make([]string, 0, len(entries))
	for _, e := range entries {
		langs = append(langs, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(langs)
	return langs
}

// Builtin returns the embedded table for lang.
func Builtin(lang string) (Table, error) {
	data, err := builtinTables.ReadFile("tables/" + lang + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown language %q (available: %s)", lang, strings.Join(Languages(), ", "))
	}
	return parseTable(data)
}

// LoadFile reads a YAML translation table from path.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file: %w", err)
	}
	table, err := parseTable(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse translation file %s: %w", path, err)
	}
	return table, nil
}

// Load builds the table for lang, then overlays the entries of the file
// at overridePath when it is non-empty.
func Load(lang, overridePath string) (Table, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	table, err := Builtin(lang)
	if err != nil {
		return nil, err
	}
	if overridePath == "" {
		return table, nil
	}
	extra, err := LoadFile(overridePath)
	if err != nil {
		return nil, err
	}
	for k, v := range extra {
		table[k] = v
	}
	return table, nil
}

func parseTable(data []byte) (Table, error) {
	table := make(Table)
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, err
	}
	return table, nil
}
