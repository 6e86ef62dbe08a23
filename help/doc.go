// Package help defines the data and column/section contracts the core
// publishes to formatters (spec.md §4.5): the fixed, ordered enumeration
// of semantic items an option may contribute to, a groups-by-label view
// of the registry, and the section/column model a formatter consumes.
// It renders nothing itself — ANSI, JSON, CSV, and Markdown back-ends are
// external collaborators out of this module's scope; this package only
// describes the data they would read.
package help
