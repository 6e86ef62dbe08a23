// Package registry indexes a [schema.Schema] by long name, cluster
// letter, and positional slot, and records each option's preferred
// display name. Building a registry never fails; name/letter collisions
// are recorded for [forgecli.dev/argspec/validate] to report, since only
// the validator is in a position to produce a well-formed diagnostic
// (which option came first, what the fix is).
package registry
