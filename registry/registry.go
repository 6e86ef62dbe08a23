package registry

import (
	"iter"

	"forgecli.dev/argspec/schema"
)

// Positional is the schema's (at most one) positional entry.
type Positional struct {
	Key     schema.Key
	Option  schema.Option
	Display string
}

// Registry is the built index over a [schema.Schema].
type Registry struct {
	schema *schema.Schema

	names          map[string]schema.Key
	nameCollisions map[string][]schema.Key

	letters          map[rune]schema.Key
	letterCollisions map[rune][]schema.Key

	positional           *Positional
	positionalCollisions []schema.Key

	order []schema.Key
	byKey map[schema.Key]schema.Option
}

// Build indexes s. It never fails; collisions are recorded for
// [forgecli.dev/argspec/validate] to report.
func Build(s *schema.Schema) *Registry {
	r := &Registry{
		schema:           s,
		names:            make(map[string]schema.Key),
		nameCollisions:   make(map[string][]schema.Key),
		letters:          make(map[rune]schema.Key),
		letterCollisions: make(map[rune][]schema.Key),
		byKey:            make(map[schema.Key]schema.Option),
	}

	for _, e := range s.Entries {
		key, opt := e.Key, e.Option
		common := schema.CommonOf(opt)

		r.order = append(r.order, key)
		r.byKey[key] = opt

		effectiveNames := make([]string, 0, len(common.Names)+1)

		for _, n := range common.Names {
			if n != "" {
				effectiveNames = append(effectiveNames, n)
			}
		}

		if common.Positional && common.Marker != "" {
			effectiveNames = append(effectiveNames, common.Marker)
		}

		for _, n := range effectiveNames {
			r.registerName(n, key)
		}

		if common.Preferred == "" {
			for _, n := range common.Names {
				if n != "" {
					common.Preferred = n
					break
				}
			}
		}

		for _, l := range common.Cluster {
			r.registerLetter(l, key)
		}

		if common.Positional {
			if r.positional != nil {
				r.positionalCollisions = append(r.positionalCollisions, key)
			} else {
				r.positional = &Positional{Key: key, Option: opt, Display: common.Preferred}
			}
		}
	}

	return r
}

func (r *Registry) registerName(name string, key schema.Key) {
	if existing, ok := r.names[name]; ok {
		if len(r.nameCollisions[name]) == 0 {
			r.nameCollisions[name] = []schema.Key{existing}
		}

		r.nameCollisions[name] = append(r.nameCollisions[name], key)

		return
	}

	r.names[name] = key
}

func (r *Registry) registerLetter(letter rune, key schema.Key) {
	if existing, ok := r.letters[letter]; ok {
		if len(r.letterCollisions[letter]) == 0 {
			r.letterCollisions[letter] = []schema.Key{existing}
		}

		r.letterCollisions[letter] = append(r.letterCollisions[letter], key)

		return
	}

	r.letters[letter] = key
}

// ByName looks up an option by one of its declared names or, for the
// positional option, its marker token.
func (r *Registry) ByName(name string) (schema.Key, schema.Option, bool) {
	key, ok := r.names[name]
	if !ok {
		return "", nil, false
	}

	return key, r.byKey[key], true
}

// ByLetter looks up an option by cluster letter.
func (r *Registry) ByLetter(letter rune) (schema.Key, schema.Option, bool) {
	key, ok := r.letters[letter]
	if !ok {
		return "", nil, false
	}

	return key, r.byKey[key], true
}

// ByKey looks up an option by its schema key.
func (r *Registry) ByKey(key schema.Key) (schema.Option, bool) {
	opt, ok := r.byKey[key]
	return opt, ok
}

// Positional returns the schema's positional entry, if any.
func (r *Registry) Positional() (*Positional, bool) {
	if r.positional == nil {
		return nil, false
	}

	return r.positional, true
}

// NameCollisions returns names declared by more than one option, keyed by
// name; each entry lists the colliding keys in declaration order.
func (r *Registry) NameCollisions() map[string][]schema.Key {
	return r.nameCollisions
}

// LetterCollisions returns cluster letters declared by more than one
// option.
func (r *Registry) LetterCollisions() map[rune][]schema.Key {
	return r.letterCollisions
}

// PositionalCollisions returns the keys of positional options beyond the
// first declared at this schema level.
func (r *Registry) PositionalCollisions() []schema.Key {
	return r.positionalCollisions
}

// Names returns every registered name and marker token alongside its key,
// primarily for similarity search against unknown options.
func (r *Registry) Names() map[string]schema.Key {
	return r.names
}

// All iterates options in declaration order.
func (r *Registry) All() iter.Seq2[schema.Key, schema.Option] {
	return func(yield func(schema.Key, schema.Option) bool) {
		for _, k := range r.order {
			if !yield(k, r.byKey[k]) {
				return
			}
		}
	}
}

// RequiredBy returns, for each key, the keys of options whose Requires or
// RequiredIf expression names it — an adjacency list useful for usage
// rendering ("required by X, Y").
func (r *Registry) RequiredBy() map[schema.Key][]schema.Key {
	out := make(map[schema.Key][]schema.Key)

	for _, k := range r.order {
		opt := r.byKey[k]
		common := schema.CommonOf(opt)

		for _, name := range collectNames(common.Requires) {
			out[name] = append(out[name], k)
		}

		for _, name := range collectNames(common.RequiredIf) {
			out[name] = append(out[name], k)
		}
	}

	return out
}

func collectNames(req schema.Requirement) []schema.Key {
	switch r := req.(type) {
	case nil:
		return nil
	case schema.ReqName:
		return []schema.Key{r.Name}
	case schema.ReqNot:
		return collectNames(r.Inner)
	case schema.ReqAll:
		var out []schema.Key
		for _, item := range r.Items {
			out = append(out, collectNames(item)...)
		}

		return out
	case schema.ReqOne:
		var out []schema.Key
		for _, item := range r.Items {
			out = append(out, collectNames(item)...)
		}

		return out
	case schema.ReqValMap:
		out := make([]schema.Key, 0, len(r.Entries))
		for name := range r.Entries {
			out = append(out, name)
		}

		return out
	default:
		return nil
	}
}
