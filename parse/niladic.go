package parse

import (
	"context"
	"reflect"

	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/schema"
	"forgecli.dev/argspec/tokenize"
)

// execNiladic runs the niladic handler (flag/command/help/version) for a
// Seeking-state EventName that resolved to one of those kinds. idx points
// at the event's own index in events; the handler advances *idx past
// itself and, for [schema.Flag], past any skipped events.
//
// It returns (terminate, msg, err): err is a genuine failure; msg is a
// thrown message (help/version/completion) that the caller re-throws
// unchanged; terminate means the outer loop should run default-value
// assignment and requirement checks and return.
func (p *Parser) execNiladic(ctx context.Context, st *levelState, opt schema.Option, ev tokenize.Event, events []tokenize.Event, idx *int, args []string, completionIndex *int, cache map[string]*schema.Schema) (bool, error, error) {
	switch o := opt.(type) {
	case *schema.Flag:
		return p.execFlag(ctx, st, ev.Key, o, ev, idx)
	case *schema.Command:
		return p.execCommand(ctx, st, ev.Key, o, ev, args, completionIndex, cache)
	case *schema.Help:
		return p.execHelp(ctx, st, ev.Key, o, ev, events, idx, cache)
	case *schema.Version:
		return p.execVersion(ctx, st, ev.Key, o, idx)
	default:
		*idx++
		return false, nil, nil
	}
}

// setNiladicValue records a niladic option's resolved value, marks it
// specified, and applies the same deprecation-warning and break handling
// [finalizeWindow] applies to non-niladic options.
func (p *Parser) setNiladicValue(st *levelState, key schema.Key, common *schema.Common, val any) {
	st.values[key] = val
	st.specified[key] = true

	if common.Deprecated != "" && !st.warnedDeprecated[key] {
		st.warnedDeprecated[key] = true
		st.warnings = append(st.warnings, errs.New(errs.KindDeprecatedOption, common.Preferred).WithDetail(common.Deprecated))
		st.p.logger.Warn("deprecated option used", "option", common.Preferred, "detail", common.Deprecated)
	}

	if common.Break {
		st.breakTriggered = true
	}
}

// execFlag implements the specification's flag execution: value is the
// return of Parse(window) or true when Parse is nil or returns a falsy
// value; SkipCount discards that many subsequent events without
// interpretation.
func (p *Parser) execFlag(ctx context.Context, st *levelState, key schema.Key, f *schema.Flag, ev tokenize.Event, idx *int) (bool, error, error) {
	var window []string
	if ev.Inline != nil {
		window = []string{*ev.Inline}
	}

	val := any(true)

	if f.Parse != nil {
		v, err := f.Parse(ctx, window)
		if err != nil {
			return false, nil, err
		}

		if truthy(v) {
			val = v
		}
	}

	p.setNiladicValue(st, key, &f.Common, val)

	skip := f.SkipCount
	if skip < 0 {
		skip = 0
	}

	*idx += 1 + skip

	return st.breakTriggered, nil, nil
}

// truthy mirrors the JavaScript-ish "value || true" fallback the
// specification's flag execution rule describes: nil, false, a zero
// number, and an empty string are falsy; everything else (including a
// non-empty slice/map) is truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		rv := reflect.ValueOf(v)
		switch {
		case rv.CanInt():
			return rv.Int() != 0
		case rv.CanUint():
			return rv.Uint() != 0
		case rv.CanFloat():
			return rv.Float() != 0
		}

		return true
	}
}

// execCommand resolves the command's inner schema, recursively parses the
// remainder of the raw argument vector against a fresh child registry, and
// always terminates the outer loop.
func (p *Parser) execCommand(ctx context.Context, st *levelState, key schema.Key, c *schema.Command, ev tokenize.Event, args []string, completionIndex *int, cache map[string]*schema.Schema) (bool, error, error) {
	inner, err := p.resolveCommandSchema(ctx, c, cache)
	if err != nil {
		return false, nil, err
	}

	if inner == nil {
		inner = schema.New()
	}

	remainder := args[ev.OrigIdx+1:]

	var childCompletion *int
	if completionIndex != nil {
		if rel := *completionIndex - ev.OrigIdx - 1; rel >= 0 {
			childCompletion = &rel
		}
	}

	child, err := p.parseLevel(ctx, inner, remainder, childCompletion, cache)
	if err != nil {
		return false, nil, err
	}

	var val any = child.Values

	if c.Parse != nil {
		val, err = c.Parse(ctx, child.Values)
		if err != nil {
			return false, nil, err
		}
	}

	st.warnings = append(st.warnings, child.Warnings...)

	p.setNiladicValue(st, key, &c.Common, val)
	st.breakTriggered = true

	return true, nil, nil
}

// nextWord returns the raw text of the event at pos, for the help
// option's useNested/useFormat lookahead.
func nextWord(events []tokenize.Event, pos int) (string, bool) {
	if pos >= len(events) {
		return "", false
	}

	e := events[pos]

	switch e.Kind {
	case tokenize.EventName:
		return e.Name, true
	default:
		return e.Arg, true
	}
}

// execHelp implements the specification's help niladic handler: optional
// useNested scope switch, optional useFormat selection, optional useFilter
// capture of the remainder, then Render and either throw or save the
// result.
func (p *Parser) execHelp(ctx context.Context, st *levelState, key schema.Key, h *schema.Help, ev tokenize.Event, events []tokenize.Event, idx *int, cache map[string]*schema.Schema) (bool, error, error) {
	scope := st.s
	format := ""
	var filter []string

	consumed := 1

	if h.UseNested {
		if word, ok := nextWord(events, *idx+consumed); ok {
			if _, cmdOpt, ok := st.reg.ByName(word); ok {
				if cmd, isCmd := cmdOpt.(*schema.Command); isCmd {
					inner, err := p.resolveCommandSchema(ctx, cmd, cache)
					if err != nil {
						return false, nil, err
					}

					if inner != nil && hasHelpOption(inner) {
						scope = inner
						consumed++
					}
				}
			}
		}
	}

	if h.UseFormat && len(h.Formats) > 0 {
		if word, ok := nextWord(events, *idx+consumed); ok {
			if _, ok := h.Formats[word]; ok {
				format = word
				consumed++
			}
		}
	}

	if h.UseFilter {
		for pos := *idx + consumed; pos < len(events); pos++ {
			word, _ := nextWord(events, pos)
			filter = append(filter, word)
		}

		consumed = len(events) - *idx
	}

	var text string

	if h.Render != nil {
		rendered, err := h.Render(ctx, schema.HelpRenderRequest{Scope: scope, Format: format, Filter: filter})
		if err != nil {
			return false, nil, err
		}

		text = rendered
	}

	*idx += consumed

	if h.SaveMessage {
		p.setNiladicValue(st, key, &h.Common, text)
		return st.breakTriggered, nil, nil
	}

	return false, &HelpMessage{Text: text}, nil
}

// execVersion resolves a literal Version or, absent one, Resolve's
// manifest walk (see package version), then throws or saves the result.
func (p *Parser) execVersion(ctx context.Context, st *levelState, key schema.Key, v *schema.Version, idx *int) (bool, error, error) {
	ver := v.Version

	if ver == "" && v.Resolve != nil {
		resolved, err := v.Resolve(ctx, "./package.json")
		if err != nil {
			return false, nil, err
		}

		ver = resolved
	}

	*idx++

	if v.SaveMessage {
		p.setNiladicValue(st, key, &v.Common, ver)
		return st.breakTriggered, nil, nil
	}

	return false, &VersionMessage{Version: ver}, nil
}
