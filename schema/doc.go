// Package schema defines the closed set of option kinds, their attributes,
// requirement expressions, and the opaque value mapping populated by a
// parse. It holds data only: building a [Schema] never touches an
// argument vector, and nothing in this package performs I/O.
//
// # Design
//
// Each [OptionKind] is its own Go type ([Flag], [Single], [Array],
// [Function], [Command], [Help], [Version]) rather than one wide struct
// with optional fields for every kind. This keeps combinations that make
// no sense for a kind — a [Command] with [ParamSpec.Inline], a [Flag]
// with [ArrayExtras] — unrepresentable by construction. Finer-grained
// mutual exclusions that depend on run-time literals rather than kind
// (required vs. default, choices vs. regex) remain representable; they
// are the validator's job, not the type system's.
//
// [Requirement] is a second tagged sum: [ReqName], [ReqNot], [ReqAll],
// [ReqOne], [ReqValMap], and [ReqCallback] all implement the unexported
// marker method, closing the set to this package.
package schema
