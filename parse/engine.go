package parse

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/schema"
	"forgecli.dev/argspec/tokenize"
)

// collectState is the "Collecting(option, window)" conceptual state from
// the specification's parser state machine.
type collectState struct {
	key  schema.Key
	opt  schema.Option
	name string // invocation name, for ParseContext.Name
	window []string
}

// levelState accumulates one schema level's worth of parsing: its own
// registry, the values/specified-set built so far, warnings, and the
// currently open collecting window, if any.
type levelState struct {
	p   *Parser
	s   *schema.Schema
	reg *registry.Registry

	values    schema.Values
	specified map[schema.Key]bool
	warnings  []*errs.Error

	collecting *collectState
	posIndex   int // next PositionalIndex to assign

	breakTriggered bool

	warnedDeprecated map[schema.Key]bool
}

func newLevelState(p *Parser, s *schema.Schema) *levelState {
	reg := registry.Build(s)

	st := &levelState{
		p:                p,
		s:                s,
		reg:              reg,
		values:           make(schema.Values),
		specified:        make(map[schema.Key]bool),
		warnedDeprecated: make(map[schema.Key]bool),
	}

	for key := range reg.All() {
		st.values[key] = schema.Unset
	}

	return st
}

// parseLevel runs the state machine over one schema level's share of the
// argument vector. completionIndex, if set, is relative to args.
func (p *Parser) parseLevel(ctx context.Context, s *schema.Schema, args []string, completionIndex *int, cache map[string]*schema.Schema) (*Result, error) {
	st := newLevelState(p, s)

	var events []tokenize.Event

	var err error

	if completionIndex != nil && *completionIndex >= 0 && *completionIndex < len(args) {
		events, err = tokenize.TokenizeCompleting(args, st.reg, p.clusterPrefix, *completionIndex)
	} else {
		events, err = tokenize.Tokenize(args, st.reg, p.clusterPrefix)
	}

	if err != nil {
		return nil, err
	}

	i := 0

	for i < len(events) {
		ev := events[i]

		if completionIndex != nil && ev.Completing {
			msg, err := p.completeAt(ctx, st, events, i)
			if err != nil {
				return nil, err
			}

			return nil, msg
		}

		switch ev.Kind {
		case tokenize.EventMarker:
			if st.collecting != nil {
				if err := p.closeWindow(ctx, st, false); err != nil {
					return nil, err
				}

				if st.breakTriggered {
					return p.finishAndReturn(ctx, st)
				}
			}

			pos, ok := st.reg.Positional()
			if ok {
				st.collecting = &collectState{key: pos.Key, opt: pos.Option, name: pos.Display}
			}

			i++

			continue

		case tokenize.EventPositionalArg:
			if st.collecting == nil {
				// No positional option declared; tokenize would not emit
				// EventMarker in that case, so this should not happen, but
				// treat defensively as an unknown argument.
				return nil, unknownOptionErr(st.reg, ev.Arg)
			}

			st.collecting.window = append(st.collecting.window, ev.Arg)

			if _, max := st.collecting.opt.ParamRange(); len(st.collecting.window) >= max {
				if err := p.closeWindow(ctx, st, false); err != nil {
					return nil, err
				}

				if st.breakTriggered {
					return p.finishAndReturn(ctx, st)
				}
			}

			i++

			continue

		case tokenize.EventName:
			if st.collecting != nil {
				if err := p.closeWindow(ctx, st, false); err != nil {
					return nil, err
				}

				if st.breakTriggered {
					return p.finishAndReturn(ctx, st)
				}
			}

			opt, ok := st.reg.ByKey(ev.Key)
			if !ok {
				return nil, unknownOptionErr(st.reg, ev.Name)
			}

			if opt.Kind().Niladic() {
				terminate, msg, err := p.execNiladic(ctx, st, opt, ev, events, &i, args, completionIndex, cache)
				if err != nil {
					return nil, err
				}

				if msg != nil {
					return nil, msg
				}

				if terminate {
					return p.finishAndReturn(ctx, st)
				}

				continue
			}

			if err := p.enterNonNiladic(ctx, st, opt, ev); err != nil {
				return nil, err
			}

			if st.breakTriggered {
				return p.finishAndReturn(ctx, st)
			}

			i++

			continue

		case tokenize.EventUnknown:
			if st.collecting != nil {
				st.collecting.window = append(st.collecting.window, ev.Arg)

				if _, max := st.collecting.opt.ParamRange(); len(st.collecting.window) >= max {
					if err := p.closeWindow(ctx, st, false); err != nil {
						return nil, err
					}

					if st.breakTriggered {
						return p.finishAndReturn(ctx, st)
					}
				}

				i++

				continue
			}

			if pos, ok := st.reg.Positional(); ok {
				st.collecting = &collectState{key: pos.Key, opt: pos.Option, name: pos.Display, window: []string{ev.Arg}}

				if _, max := pos.Option.ParamRange(); len(st.collecting.window) >= max {
					if err := p.closeWindow(ctx, st, false); err != nil {
						return nil, err
					}

					if st.breakTriggered {
						return p.finishAndReturn(ctx, st)
					}
				}

				i++

				continue
			}

			return nil, unknownOptionErr(st.reg, ev.Arg)
		}
	}

	if st.collecting != nil {
		if err := p.closeWindow(ctx, st, false); err != nil {
			return nil, err
		}
	}

	return p.finishAndReturn(ctx, st)
}

// enterNonNiladic handles a Seeking-state EventName resolving to a
// non-niladic option: immediate inline delivery, or opening a collecting
// window.
func (p *Parser) enterNonNiladic(ctx context.Context, st *levelState, opt schema.Option, ev tokenize.Event) error {
	display := schema.CommonOf(opt).Preferred
	inline := inlineModeOf(opt)

	if ev.Inline != nil {
		if inline == schema.InlineForbidden {
			return disallowedInlineErr(display)
		}

		return p.finalizeWindow(ctx, st, opt, []string{*ev.Inline}, ev.Name, false)
	}

	if inline == schema.InlineRequired {
		return missingInlineErr(display)
	}

	st.collecting = &collectState{key: keyOf(st.reg, opt), opt: opt, name: ev.Name}

	_, max := opt.ParamRange()
	if max == 0 {
		// min==max==0 can't occur for a non-niladic kind, defensive only.
		return p.closeWindow(ctx, st, false)
	}

	return nil
}

func keyOf(reg *registry.Registry, opt schema.Option) schema.Key {
	for k, o := range reg.All() {
		if o == opt {
			return k
		}
	}

	return ""
}

func inlineModeOf(opt schema.Option) schema.InlineMode {
	switch o := opt.(type) {
	case *schema.Single:
		return o.Inline
	case *schema.Array:
		return o.Inline
	case *schema.Function:
		return o.Inline
	default:
		return schema.InlineForbidden
	}
}

// closeWindow finalizes the currently open collecting window, if any.
func (p *Parser) closeWindow(ctx context.Context, st *levelState, completing bool) error {
	cs := st.collecting
	st.collecting = nil

	if cs == nil {
		return nil
	}

	return p.finalizeWindow(ctx, st, cs.opt, cs.window, cs.name, completing)
}

// finalizeWindow runs the parameter handler described in the
// specification's window-closure section: separator expansion, count
// validation, selection checks, the custom parse callback, accumulation,
// and break handling.
func (p *Parser) finalizeWindow(ctx context.Context, st *levelState, opt schema.Option, window []string, invocationName string, completing bool) error {
	key := keyOf(st.reg, opt)
	common := schema.CommonOf(opt)
	display := common.Preferred

	elems := window

	if arr, ok := opt.(*schema.Array); ok && arr.Separator != "" {
		elems = splitElements(window, arr.Separator, arr.SeparatorIsRegex)
	}

	min, max := opt.ParamRange()
	if len(elems) < min || len(elems) > max {
		return mismatchedParamCountErr(display, min, max, len(elems))
	}

	sel, hasSel := selectionOf(opt)
	if hasSel {
		for _, e := range elems {
			if err := checkSelection(display, e, sel); err != nil {
				return err
			}
		}
	}

	startIdx := st.posIndex

	posIdx := -1
	if common.Positional {
		posIdx = startIdx
	}

	switch o := opt.(type) {
	case *schema.Single:
		val, err := callParseOne(ctx, o.Parse, elems[0], sel, hasSel, st.values, invocationName, posIdx, completing)
		if err != nil {
			return err
		}

		st.values[key] = val

	case *schema.Array:
		built := make([]any, 0, len(elems))

		for idx, e := range elems {
			idxPos := -1
			if common.Positional {
				idxPos = startIdx + idx
			}

			val, err := callParseOne(ctx, o.Parse, e, sel, hasSel, st.values, invocationName, idxPos, completing)
			if err != nil {
				return err
			}

			built = append(built, val)
		}

		existing, _ := st.values[key].([]any)

		final := built
		if o.Append && len(existing) > 0 {
			final = append(append([]any{}, existing...), built...)
		}

		if o.Unique {
			final = dedupeAny(final)
		}

		if o.Limit > 0 && len(final) > o.Limit {
			return limitViolationErr(display, o.Limit)
		}

		st.values[key] = final

	case *schema.Function:
		if o.Parse != nil {
			val, err := o.Parse(ctx, schema.ParseContext{
				Window:          elems,
				Values:          st.values,
				Name:            invocationName,
				PositionalIndex: posIdx,
				Completing:      completing,
			})
			if err != nil {
				return err
			}

			st.values[key] = val
		} else {
			anyElems := make([]any, len(elems))
			for i, e := range elems {
				anyElems[i] = e
			}

			st.values[key] = anyElems
		}
	}

	if common.Positional {
		st.posIndex += len(elems)
	}

	st.specified[key] = true

	if common.Deprecated != "" && !st.warnedDeprecated[key] {
		st.warnedDeprecated[key] = true
		st.warnings = append(st.warnings, errs.New(errs.KindDeprecatedOption, display).WithDetail(common.Deprecated))
		st.p.logger.Warn("deprecated option used", "option", display, "detail", common.Deprecated)
	}

	if common.Break {
		st.breakTriggered = true
	}

	return nil
}

func callParseOne(ctx context.Context, fn schema.ParseFunc, elem string, sel schema.Selection, hasSel bool, values schema.Values, name string, posIdx int, completing bool) (any, error) {
	if fn != nil {
		return fn(ctx, schema.ParseContext{
			Window:          []string{elem},
			Values:          values,
			Name:            name,
			PositionalIndex: posIdx,
			Completing:      completing,
		})
	}

	if hasSel {
		return projectChoice(elem, sel), nil
	}

	return elem, nil
}

func selectionOf(opt schema.Option) (schema.Selection, bool) {
	switch o := opt.(type) {
	case *schema.Single:
		return o.Selection, true
	case *schema.Array:
		return o.Selection, true
	default:
		return schema.Selection{}, false
	}
}

func checkSelection(display, value string, sel schema.Selection) error {
	if len(sel.Choices) > 0 {
		for _, c := range sel.Choices {
			if c.Name == value {
				return nil
			}
		}

		return choiceViolationErr(display, value)
	}

	if sel.Regex != "" {
		re, err := regexp.Compile(sel.Regex)
		if err != nil {
			return nil // already rejected by validate
		}

		if !re.MatchString(value) {
			return regexViolationErr(display, value)
		}
	}

	return nil
}

// projectChoice maps value through its matching Choice's Value, when the
// choices list uses the value-map form (an explicit Value distinct from
// Name); otherwise value passes through unchanged.
func projectChoice(value string, sel schema.Selection) any {
	for _, c := range sel.Choices {
		if c.Name == value {
			if c.Value != nil {
				return c.Value
			}

			return value
		}
	}

	return value
}

func splitElements(window []string, sep string, isRegex bool) []string {
	var out []string

	if isRegex {
		re, err := regexp.Compile(sep)
		if err != nil {
			return window // already rejected by validate
		}

		for _, w := range window {
			out = append(out, re.Split(w, -1)...)
		}

		return out
	}

	for _, w := range window {
		out = append(out, strings.Split(w, sep)...)
	}

	return out
}

func dedupeAny(in []any) []any {
	seen := make(map[string]bool, len(in))

	out := make([]any, 0, len(in))

	for _, v := range in {
		k := toComparableKey(v)
		if seen[k] {
			continue
		}

		seen[k] = true

		out = append(out, v)
	}

	return out
}

func toComparableKey(v any) string {
	if s, ok := v.(string); ok {
		return s
	}

	return strings.TrimSpace(fmt.Sprint(v))
}

// readAllTrimmed reads r to completion and trims one trailing newline, the
// convention for a single stdin-sourced parameter.
func readAllTrimmed(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	return strings.TrimSuffix(strings.TrimSuffix(string(data), "\n"), "\r"), nil
}
