package parse

import (
	"fmt"

	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/validate"
)

// unboundedThreshold stands in for schema's unexported "unbounded" param
// count sentinel: any max at or above it is rendered as "at least", never
// "between" or "at most".
const unboundedThreshold = 1 << 30

func unknownOptionErr(reg *registry.Registry, arg string) *errs.Error {
	names := make([]string, 0, len(reg.Names()))
	for n := range reg.Names() {
		names = append(names, n)
	}

	return errs.New(errs.KindUnknownOption, arg).WithSimilar(validate.Suggest(arg, names))
}

func mismatchedParamCountErr(display string, min, max, got int) *errs.Error {
	var phrase string

	switch {
	case min == max:
		phrase = fmt.Sprintf("expected exactly %d parameter(s), got %d", min, got)
	case max >= unboundedThreshold:
		phrase = fmt.Sprintf("expected at least %d parameter(s), got %d", min, got)
	case min == 0:
		phrase = fmt.Sprintf("expected at most %d parameter(s), got %d", max, got)
	default:
		phrase = fmt.Sprintf("expected between %d and %d parameters, got %d", min, max, got)
	}

	return errs.New(errs.KindMismatchedParamCount, display).WithDetail(phrase)
}

func choiceViolationErr(display, value string) *errs.Error {
	return errs.New(errs.KindChoiceConstraintViolation, display).WithValue(value)
}

func regexViolationErr(display, value string) *errs.Error {
	return errs.New(errs.KindRegexConstraintViolation, display).WithValue(value)
}

func limitViolationErr(display string, limit int) *errs.Error {
	return errs.New(errs.KindLimitConstraintViolation, display).
		WithDetail(fmt.Sprintf("exceeds limit of %d", limit))
}

func disallowedInlineErr(display string) *errs.Error {
	return errs.New(errs.KindDisallowedInlineParameter, display)
}

func missingInlineErr(display string) *errs.Error {
	return errs.New(errs.KindMissingInlineParameter, display)
}

func missingRequiredErr(display string) *errs.Error {
	return errs.New(errs.KindMissingRequiredOption, display)
}
