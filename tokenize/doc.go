// Package tokenize converts a raw argument vector into an ordered
// stream of [Event]s: known-name references (with an optional inline
// value), the positional marker, and unrecognized arguments. It also
// performs cluster-letter expansion, rewriting a clustered argument
// into the stream of names it stands for rather than tracking cluster
// state separately. The tokenizer classifies; it never decides how
// many subsequent arguments belong to an option's parameter window —
// that is [forgecli.dev/argspec/parse]'s job.
package tokenize
