package parse

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/require"
	"forgecli.dev/argspec/schema"
)

// finishAndReturn runs end-of-input default-value assignment followed by
// requirement checks, in that order (a [schema.Common.Break] option forces
// this sequence early; the main loop otherwise reaches it after the last
// event), then returns the accumulated [Result].
func (p *Parser) finishAndReturn(ctx context.Context, st *levelState) (*Result, error) {
	if err := p.assignDefaults(ctx, st); err != nil {
		return nil, err
	}

	if err := p.checkRequirements(ctx, st); err != nil {
		return nil, err
	}

	return &Result{Values: st.values, Warnings: st.warnings}, nil
}

// assignDefaults fills in every registered key not yet in the
// specified-set: Stdin, then Sources (env vars and file:// sources), then
// Default (literal or callback). A key that resolves from none of those
// and is Required fails. Independent keys may be resolved concurrently;
// the shared values/specified maps are guarded by mu since each
// goroutine writes only its own key but Go map writes are not otherwise
// safe to interleave.
func (p *Parser) assignDefaults(ctx context.Context, st *levelState) error {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex

	for key, opt := range st.reg.All() {
		if st.specified[key] {
			continue
		}

		key, opt := key, opt
		common := schema.CommonOf(opt)

		g.Go(func() error {
			val, found, fromSource, err := p.resolveDefault(gctx, common)
			if err != nil {
				return err
			}

			if !found {
				if common.Required {
					return missingRequiredErr(common.Preferred)
				}

				return nil
			}

			mu.Lock()
			st.values[key] = val
			if fromSource {
				st.specified[key] = true
			}
			mu.Unlock()

			return nil
		})
	}

	return g.Wait()
}

// resolveDefault resolves one option's fallback chain. fromSource reports
// whether the resolved value came from Stdin or Sources — the
// specification's specified-set includes those but never a plain
// Default, so callers must only flip the specified flag when fromSource
// is true.
func (p *Parser) resolveDefault(ctx context.Context, common *schema.Common) (val any, found bool, fromSource bool, err error) {
	if common.Stdin {
		text, err := readAllTrimmed(p.stdin)
		if err != nil {
			return nil, false, false, err
		}

		return text, true, true, nil
	}

	if len(common.Sources) > 0 {
		text, ok, err := p.sources.Resolve(ctx, common.Preferred, common.Sources)
		if err != nil {
			return nil, false, false, err
		}

		if ok {
			return text, true, true, nil
		}
	}

	if common.Default.IsSet() {
		if common.Default.Callback != nil {
			v, err := common.Default.Callback(ctx)
			if err != nil {
				return nil, false, false, err
			}

			return v, true, false, nil
		}

		return common.Default.Literal, true, false, nil
	}

	return nil, false, false, nil
}

// checkRequirements runs, for every option, Requires if the option is
// specified or RequiredIf if it is not, in declaration order, returning
// the first failure. Independent keys' expressions are evaluated
// concurrently (callback requirements are the only suspension point), but
// the reported failure is always the first in declaration order so
// results are deterministic regardless of evaluation order.
func (p *Parser) checkRequirements(ctx context.Context, st *levelState) error {
	type check struct {
		display     string
		req         schema.Requirement
		conditional bool
	}

	var checks []check

	for _, opt := range st.reg.All() {
		common := schema.CommonOf(opt)

		switch {
		case common.Requires != nil && isSpecifiedFor(st, opt):
			checks = append(checks, check{display: common.Preferred, req: common.Requires})
		case common.RequiredIf != nil && !isSpecifiedFor(st, opt):
			checks = append(checks, check{display: common.Preferred, req: common.RequiredIf, conditional: true})
		}
	}

	results := make([]error, len(checks))

	g, gctx := errgroup.WithContext(ctx)

	display := specifiedDisplay(st.reg)
	specified := require.Specified(st.specified)

	for i, c := range checks {
		i, c := i, c

		g.Go(func() error {
			ok, rendered, err := require.Eval(gctx, c.req, st.values, specified, display)
			if err != nil {
				results[i] = err
				return nil
			}

			if c.conditional {
				// ok reports whether the RequiredIf condition itself
				// holds. The option is already known to be unspecified
				// (that's why this check was raised), so the condition
				// holding is exactly the failure case.
				if ok {
					results[i] = errs.New(errs.KindUnsatisfiedConditionalRequirement, c.display).
						WithDetail("Required if " + rendered)
				}

				return nil
			}

			if ok {
				return nil
			}

			results[i] = errs.New(errs.KindUnsatisfiedRequirement, c.display).WithDetail(rendered)

			return nil
		})
	}

	_ = g.Wait()

	for _, err := range results {
		if err != nil {
			return err
		}
	}

	return nil
}

// isSpecifiedFor looks up opt's key in st.specified. Options are always
// drawn from st.reg, so the reverse lookup never fails in practice.
func isSpecifiedFor(st *levelState, opt schema.Option) bool {
	return st.specified[keyOf(st.reg, opt)]
}
