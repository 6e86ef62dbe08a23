// Package configsource resolves an option's "sources" fallback entries:
// environment variable names and "file://" URLs pointing at YAML or
// dotenv-format files. It is consulted by
// [forgecli.dev/argspec/parse]'s end-of-input default-assignment phase
// for every option that declared sources but was never specified on the
// command line.
package configsource
