package require

import (
	"context"
	"fmt"
	"strings"

	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/schema"
)

// Tag performs the validator-time structural checks from the
// specification's requirement-graph section: every [schema.ReqName]
// reference must name an existing, non-self, non-message-bearing option;
// a command or flag target may only be referenced in its presence/absence
// form; and a presence check against an always-required-or-defaulted
// target (or an absence check against a defaulted target) is flagged as
// trivially true/false. selfKey is the key of the option the requirement
// belongs to.
func Tag(req schema.Requirement, selfKey schema.Key, reg *registry.Registry) []*errs.Error {
	if req == nil {
		return nil
	}

	var out []*errs.Error

	switch r := req.(type) {
	case schema.ReqName:
		out = append(out, tagTarget(r.Name, selfKey, reg, schema.Unset)...)
	case schema.ReqNot:
		out = append(out, Tag(r.Inner, selfKey, reg)...)
	case schema.ReqAll:
		for _, item := range r.Items {
			out = append(out, Tag(item, selfKey, reg)...)
		}
	case schema.ReqOne:
		for _, item := range r.Items {
			out = append(out, Tag(item, selfKey, reg)...)
		}
	case schema.ReqValMap:
		for name, expected := range r.Entries {
			out = append(out, tagTarget(name, selfKey, reg, expected)...)
		}
	case schema.ReqCallback:
		// Nothing to tag structurally; the callback is opaque.
	}

	return out
}

func tagTarget(name, selfKey schema.Key, reg *registry.Registry, expected any) []*errs.Error {
	var out []*errs.Error

	if name == selfKey {
		out = append(out, errs.New(errs.KindInvalidSelfRequirement, string(name)))
		return out
	}

	target, ok := reg.ByKey(name)
	if !ok {
		out = append(out, errs.New(errs.KindUnknownRequiredOption, string(name)))
		return out
	}

	common := schema.CommonOf(target)

	if target.Kind().MessageBearing() {
		out = append(out, errs.New(errs.KindInvalidRequiredOption, string(name)).
			WithDetail("message-bearing options cannot be required"))

		return out
	}

	isCommandOrFlag := target.Kind() == schema.KindCommand || target.Kind() == schema.KindFlag

	switch {
	case expected == schema.Unset:
		// Presence form: always admissible, but trivially true if the
		// target can never fail to resolve to a value.
		if common.Required || common.Default.IsSet() {
			out = append(out, errs.New(errs.KindInvalidRequiredOption, string(name)).
				WithDetail("target is always required or has a default: requirement is trivially true"))
		}
	case expected == nil:
		// Absence form: always admissible, but trivially false if the
		// target always resolves to a value via its default.
		if common.Default.IsSet() {
			out = append(out, errs.New(errs.KindInvalidRequiredOption, string(name)).
				WithDetail("target has a default: requirement is trivially false"))
		}
	default:
		// Equal-value form: only admissible against non-command/flag
		// targets.
		if isCommandOrFlag {
			out = append(out, errs.New(errs.KindInvalidRequiredValue, string(name)).
				WithDetail("a command or flag may not be used as a non-empty required value"))
		}
	}

	return out
}

// Specified is the parse-time specified-set: keys for which the parser
// has received an explicit value from the argument vector, an
// environment source, or standard input (never from a plain default).
type Specified map[schema.Key]bool

// Eval evaluates req against values/specified, returning whether it holds
// and a human-readable rendering of the (possibly negated) expression
// suitable for "unsatisfied-requirement" / "Required if ..." messages.
func Eval(ctx context.Context, req schema.Requirement, values schema.Values, specified Specified, display func(schema.Key) string) (bool, string, error) {
	return evalNode(ctx, req, values, specified, display, false)
}

func evalNode(ctx context.Context, req schema.Requirement, values schema.Values, specified Specified, display func(schema.Key) string, negate bool) (bool, string, error) {
	switch r := req.(type) {
	case schema.ReqName:
		return evalPresence(r.Name, specified, display, negate), renderPresence(r.Name, display, negate), nil

	case schema.ReqNot:
		return evalNode(ctx, r.Inner, values, specified, display, !negate)

	case schema.ReqAll:
		return evalConjunction(ctx, r.Items, values, specified, display, negate, nodeEval)

	case schema.ReqOne:
		return evalDisjunction(ctx, r.Items, values, specified, display, negate, nodeEval)

	case schema.ReqValMap:
		items := valMapItems(r.Entries)
		return evalConjunction(ctx, items, values, specified, display, negate, valMapEval)

	case schema.ReqCallback:
		ok, err := r.Fn(ctx, values)
		if err != nil {
			return false, "", err
		}

		if negate {
			ok = !ok
		}

		return ok, "<custom condition>", nil

	default:
		return true, "", nil
	}
}

// node is either a Requirement (for All/One) or a ValMap entry, unified
// so All/ValMap can share one AND/OR implementation.
type node struct {
	req      schema.Requirement
	name     schema.Key
	expected any
}

func valMapItems(entries map[schema.Key]any) []node {
	out := make([]node, 0, len(entries))
	for name, expected := range entries {
		out = append(out, node{name: name, expected: expected})
	}

	return out
}

func nodeEval(ctx context.Context, n node, values schema.Values, specified Specified, display func(schema.Key) string, negate bool) (bool, string, error) {
	return evalNode(ctx, n.req, values, specified, display, negate)
}

func valMapEval(ctx context.Context, n node, values schema.Values, specified Specified, display func(schema.Key) string, negate bool) (bool, string, error) {
	ok, render := evalValMapEntry(n.name, n.expected, values, specified, display, negate)
	return ok, render, nil
}

func evalValMapEntry(name schema.Key, expected any, values schema.Values, specified Specified, display func(schema.Key) string, negate bool) (bool, string) {
	switch {
	case expected == schema.Unset:
		return evalPresence(name, specified, display, negate), renderPresence(name, display, negate)
	case expected == nil:
		return evalPresence(name, specified, display, !negate), renderPresence(name, display, !negate)
	default:
		actual, hasValue := values[name]
		equal := specified[name] && hasValue && valuesEqual(actual, expected)

		ok := equal
		if negate {
			ok = !equal
		}

		op := "=="
		if negate {
			op = "!="
		}

		return ok, fmt.Sprintf("%s %s %s", display(name), op, renderLiteral(expected))
	}
}

func valuesEqual(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// renderLiteral renders an equal-value requirement's expected value for
// display, quoting string literals (e.g. `-b == 'x'`) so they read
// unambiguously next to option names and other scalar types.
func renderLiteral(v any) string {
	if s, ok := v.(string); ok {
		return "'" + s + "'"
	}

	return fmt.Sprint(v)
}

func evalPresence(name schema.Key, specified Specified, display func(schema.Key) string, negate bool) bool {
	present := specified[name]
	if negate {
		return !present
	}

	return present
}

func renderPresence(name schema.Key, display func(schema.Key) string, negate bool) string {
	if negate {
		return "not " + display(name)
	}

	return display(name)
}

// wrapper used by generic AND/OR helpers below.
type evalFn[T any] func(ctx context.Context, item T, values schema.Values, specified Specified, display func(schema.Key) string, negate bool) (bool, string, error)

func evalConjunction[T any](ctx context.Context, items []T, values schema.Values, specified Specified, display func(schema.Key) string, negate bool, eval evalFn[T]) (bool, string, error) {
	if len(items) == 0 {
		// All([]) ≡ true; under negation, One([]) ≡ false.
		return !negate, "", nil
	}

	if negate {
		// De Morgan: Not(All(a,b,...)) == One(Not(a),Not(b),...).
		return orShortCircuit(ctx, items, values, specified, display, true, eval)
	}

	return andShortCircuit(ctx, items, values, specified, display, false, eval)
}

func evalDisjunction[T any](ctx context.Context, items []T, values schema.Values, specified Specified, display func(schema.Key) string, negate bool, eval evalFn[T]) (bool, string, error) {
	if len(items) == 0 {
		// One([]) ≡ false; under negation, All([]) ≡ true.
		return negate, "", nil
	}

	if negate {
		// De Morgan: Not(One(a,b,...)) == All(Not(a),Not(b),...).
		return andShortCircuit(ctx, items, values, specified, display, true, eval)
	}

	return orShortCircuit(ctx, items, values, specified, display, false, eval)
}

func andShortCircuit[T any](ctx context.Context, items []T, values schema.Values, specified Specified, display func(schema.Key) string, negate bool, eval evalFn[T]) (bool, string, error) {
	var firstFail string

	for _, item := range items {
		ok, render, err := eval(ctx, item, values, specified, display, negate)
		if err != nil {
			return false, "", err
		}

		if !ok {
			if firstFail == "" {
				firstFail = render
			}

			if len(items) > 1 {
				return false, "(" + firstFail + ")", nil
			}

			return false, firstFail, nil
		}
	}

	return true, "", nil
}

func orShortCircuit[T any](ctx context.Context, items []T, values schema.Values, specified Specified, display func(schema.Key) string, negate bool, eval evalFn[T]) (bool, string, error) {
	renders := make([]string, 0, len(items))

	for _, item := range items {
		ok, render, err := eval(ctx, item, values, specified, display, negate)
		if err != nil {
			return false, "", err
		}

		if ok {
			return true, "", nil
		}

		renders = append(renders, render)
	}

	return false, strings.Join(renders, " or "), nil
}
