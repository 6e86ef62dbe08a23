package schema

import "context"

// Requirement is a tagged tree describing a boolean predicate over a
// [Values] mapping and a specified-set. The set of concrete variants is
// closed to this package by the unexported marker method.
type Requirement interface {
	isRequirement()
}

// ReqName requires that the named option be specified ("Key(name)" in the
// specification).
type ReqName struct {
	Name Key
}

func (ReqName) isRequirement() {}

// Name builds a [ReqName] requirement.
func Name(key Key) Requirement { return ReqName{Name: key} }

// ReqNot negates Inner.
type ReqNot struct {
	Inner Requirement
}

func (ReqNot) isRequirement() {}

// Not builds a [ReqNot] requirement.
func Not(r Requirement) Requirement { return ReqNot{Inner: r} }

// ReqAll is a short-circuit AND over Items. An empty Items is the trivial
// true requirement.
type ReqAll struct {
	Items []Requirement
}

func (ReqAll) isRequirement() {}

// All builds a [ReqAll] requirement.
func All(items ...Requirement) Requirement { return ReqAll{Items: items} }

// ReqOne is a short-circuit OR over Items. An empty Items is the trivial
// false requirement.
type ReqOne struct {
	Items []Requirement
}

func (ReqOne) isRequirement() {}

// One builds a [ReqOne] requirement.
func One(items ...Requirement) Requirement { return ReqOne{Items: items} }

// ReqValMap is an AND over named entries. Per entry, the expected value
// has three special forms: [Unset] means "must be specified" (equivalent
// to the "undefined" form in the specification), a Go nil means "must be
// absent" ("null" in the specification), and any other value means "must
// be specified with this value" (compared with [reflect.DeepEqual]-style
// equality by the evaluator in package require).
type ReqValMap struct {
	Entries map[Key]any
}

func (ReqValMap) isRequirement() {}

// ValMap builds a [ReqValMap] requirement.
func ValMap(entries map[Key]any) Requirement { return ReqValMap{Entries: entries} }

// ReqCallback delegates the decision to an arbitrary function of the
// accumulated values.
type ReqCallback struct {
	Fn func(ctx context.Context, v Values) (bool, error)
}

func (ReqCallback) isRequirement() {}

// Callback builds a [ReqCallback] requirement.
func Callback(fn func(ctx context.Context, v Values) (bool, error)) Requirement {
	return ReqCallback{Fn: fn}
}
