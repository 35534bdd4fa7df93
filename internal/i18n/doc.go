// Package i18n translates dashboard label keys into display strings.
//
// A Translator wraps a read-only Table handed to it at construction. Lookups
// never fail: an unknown key, or a Translator built without a table, yields
// the key itself so the dashboard still renders something readable.
//
// Built-in French and English tables are embedded in the binary; a YAML file
// with the same flat key: value layout can replace or extend them.
package i18n
