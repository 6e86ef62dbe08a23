package schema

import "github.com/google/uuid"

// newResolverID mints a stable identity for a dynamically-resolved
// command schema. Go function values are not comparable, so a
// [CommandResolver] closure cannot serve as a map key the way a resolved
// schema's reference identity might in languages with closure identity;
// this uuid stands in as the comparable key for the validator's
// recursion guard and the parser's per-parse resolution cache.
func newResolverID() string {
	return uuid.NewString()
}
