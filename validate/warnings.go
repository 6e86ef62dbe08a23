package validate

import "forgecli.dev/argspec/errs"

// Warnings is the accumulated non-fatal bag a [Validator] returns
// alongside a nil error. Every entry's Kind satisfies [errs.IsWarning].
type Warnings []*errs.Error

func (w *Warnings) add(e *errs.Error) {
	*w = append(*w, e)
}
