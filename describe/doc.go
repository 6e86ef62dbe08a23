// Package describe exports a [registry.Registry] as a JSON Schema
// document describing the option shape it accepts: one property per
// non-positional, non-message-bearing option, with enum/pattern/type
// derived from each option's selection constraint and kind. This
// describes the schema itself, not a rendered help document — it feeds
// [forgecli.dev/argspec/configsource]'s optional shape check and is
// suitable for editor tooling.
package describe
