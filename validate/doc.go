// Package validate proves that a [schema.Schema] produces a well-formed
// parser. It recurses into subcommand schemas (keyed by
// [schema.Command.ResolverID] to guard recursive command definitions),
// checking names/cluster letters, the mutual-exclusion rules of the
// option kinds, literal sanity, value compatibility, and the
// requirement graph (delegated to package require), and accumulates a
// warning bag for the five non-fatal checks.
package validate
