package parse

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"forgecli.dev/argspec/configsource"
	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/metrics"
	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/schema"
)

// Result is the successful outcome of a [Parser.Parse] call.
type Result struct {
	Values   schema.Values
	Warnings []*errs.Error
}

// Parser drives the state machine over one argument vector.
type Parser struct {
	clusterPrefix string
	logger        *slog.Logger
	recorder      metrics.Recorder
	sources       *configsource.Resolver
	stdin         io.Reader
}

// Opt configures a [Parser].
type Opt func(*Parser)

// WithClusterPrefix overrides the prefix that enables cluster-letter
// expansion (default "-"). An empty string disables clustering.
func WithClusterPrefix(prefix string) Opt {
	return func(p *Parser) { p.clusterPrefix = prefix }
}

// WithLogger overrides the parser's logger, which defaults to
// [slog.Default]. Used to emit deprecation warnings as they occur.
func WithLogger(l *slog.Logger) Opt {
	return func(p *Parser) { p.logger = l }
}

// WithRecorder wires a [metrics.Recorder] that observes every completed
// parse by outcome and duration.
func WithRecorder(r metrics.Recorder) Opt {
	return func(p *Parser) { p.recorder = r }
}

// WithConfigSource overrides the resolver consulted for an option's
// "sources" fallback entries during default-value assignment. Defaults to
// [configsource.New] with no shape check.
func WithConfigSource(r *configsource.Resolver) Opt {
	return func(p *Parser) { p.sources = r }
}

// WithStdin overrides the reader consulted for options with Stdin set.
// Defaults to [os.Stdin].
func WithStdin(r io.Reader) Opt {
	return func(p *Parser) { p.stdin = r }
}

// New builds a Parser.
func New(opts ...Opt) *Parser {
	p := &Parser{
		clusterPrefix: "-",
		logger:        slog.Default(),
		sources:       configsource.New(),
		stdin:         os.Stdin,
	}

	for _, o := range opts {
		o(p)
	}

	return p
}

// Parse runs the state machine over args against s, returning the
// accumulated [Result] or an error (a [*errs.Error], a message kind, or a
// callback's own error).
func (p *Parser) Parse(ctx context.Context, s *schema.Schema, args []string) (*Result, error) {
	return p.parse(ctx, s, args, nil)
}

// ParseCompleting is [Parser.Parse] plus a completion index into args. The
// parser emits a [*CompletionMessage] rather than a [Result] once it
// reaches the completing argument.
func (p *Parser) ParseCompleting(ctx context.Context, s *schema.Schema, args []string, completionIndex int) (*Result, error) {
	return p.parse(ctx, s, args, &completionIndex)
}

func (p *Parser) parse(ctx context.Context, s *schema.Schema, args []string, completionIndex *int) (*Result, error) {
	start := time.Now()

	cache := make(map[string]*schema.Schema)

	result, err := p.parseLevel(ctx, s, args, completionIndex, cache)

	if p.recorder != nil {
		outcome := metrics.OutcomeSuccess

		switch {
		case isMessage(err):
			outcome = metrics.OutcomeMessage
		case err != nil:
			outcome = metrics.OutcomeError
		}

		p.recorder.ObserveParse(outcome, time.Since(start))
	}

	return result, err
}

func isMessage(err error) bool {
	switch err.(type) {
	case *HelpMessage, *VersionMessage, *CompletionMessage:
		return true
	default:
		return false
	}
}

// resolveCommandSchema returns cmd's inner schema, memoizing resolver
// results by ResolverID across the whole parse call so a recursive command
// tree visited from multiple branches is only resolved once.
func (p *Parser) resolveCommandSchema(ctx context.Context, cmd *schema.Command, cache map[string]*schema.Schema) (*schema.Schema, error) {
	if cmd.Options != nil {
		return cmd.Options, nil
	}

	if cmd.Resolver == nil {
		return nil, nil
	}

	if cmd.ResolverID != "" {
		if cached, ok := cache[cmd.ResolverID]; ok {
			return cached, nil
		}
	}

	inner, err := cmd.Resolver(ctx)
	if err != nil {
		return nil, err
	}

	if cmd.ResolverID != "" {
		cache[cmd.ResolverID] = inner
	}

	return inner, nil
}

func hasHelpOption(s *schema.Schema) bool {
	for _, e := range s.Entries {
		if e.Option.Kind() == schema.KindHelp {
			return true
		}
	}

	return false
}

// displayOf looks up key's preferred display name in reg, falling back to
// the raw key when the lookup fails (it never should, for a key drawn from
// the same registry).
func displayOf(reg *registry.Registry, key schema.Key) string {
	if opt, ok := reg.ByKey(key); ok {
		return schema.CommonOf(opt).Preferred
	}

	return string(key)
}

// specifiedDisplay builds the display-name lookup [require.Eval] needs.
func specifiedDisplay(reg *registry.Registry) func(schema.Key) string {
	return func(k schema.Key) string { return displayOf(reg, k) }
}
