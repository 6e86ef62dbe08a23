// Package parse drives the argument-vector state machine described by a
// [forgecli.dev/argspec/schema.Schema]: Seeking/Collecting transitions over
// [forgecli.dev/argspec/tokenize] events, niladic execution (flag, command,
// help, version), default-value assignment, and requirement checks. It
// assumes the schema has already passed [forgecli.dev/argspec/validate.Validate];
// Parse does not re-run structural checks.
package parse
