package parse

import (
	"context"
	"sort"
	"strings"

	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/schema"
	"forgecli.dev/argspec/tokenize"
)

// completeAt builds the completion response for the event the tokenizer
// marked as Completing. Per the specification: a word that can still
// become a registered name yields name completions; a word inside a
// non-niladic option's open window additionally (or instead) calls the
// option's Complete callback, swallowing any error into an empty list.
func (p *Parser) completeAt(ctx context.Context, st *levelState, events []tokenize.Event, i int) (*CompletionMessage, error) {
	ev := events[i]

	word := ev.Arg
	if ev.Kind == tokenize.EventName {
		word = ev.Name
	}

	if st.collecting == nil {
		return &CompletionMessage{Words: matchNames(st.reg, word)}, nil
	}

	cs := st.collecting
	common := schema.CommonOf(cs.opt)

	var words []string

	if cf := completeFuncOf(cs.opt); cf != nil {
		prev := ""
		if n := len(cs.window); n > 0 {
			prev = cs.window[n-1]
		}

		res, err := cf(ctx, schema.CompleteContext{
			Word:   word,
			Values: st.values,
			Index:  len(cs.window),
			Name:   cs.name,
			Prev:   prev,
		})
		if err == nil {
			words = res
		}
		// A Complete error is swallowed: the specification requires
		// falling back to an empty list rather than propagating.
	}

	min, _ := cs.opt.ParamRange()

	if common.Positional || len(cs.window) >= min {
		words = append(words, matchNames(st.reg, word)...)
	}

	return &CompletionMessage{Words: words}, nil
}

// matchNames returns every registered name (or positional marker) with
// word as a prefix, sorted for deterministic output.
func matchNames(reg *registry.Registry, word string) []string {
	var out []string

	for name := range reg.Names() {
		if strings.HasPrefix(name, word) {
			out = append(out, name)
		}
	}

	sort.Strings(out)

	return out
}

func completeFuncOf(opt schema.Option) schema.CompleteFunc {
	switch o := opt.(type) {
	case *schema.Single:
		return o.Complete
	case *schema.Array:
		return o.Complete
	case *schema.Function:
		return o.Complete
	default:
		return nil
	}
}
