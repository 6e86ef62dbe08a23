package schema

// Entry pairs an option with the key it is stored and looked up under.
type Entry struct {
	Key    Key
	Option Option
}

// Schema is an ordered mapping of keys to options — the unit a [Registry]
// is built from, a [Validator] checks, and a [Parser] drives. Order is
// significant: it is iteration order for help output and the tie-break
// order the registry uses when names collide.
type Schema struct {
	Entries []Entry
}

// New builds an empty [Schema].
func New() *Schema {
	return &Schema{}
}

// Add appends an option under key and returns the schema for chaining.
func (s *Schema) Add(key Key, opt Option) *Schema {
	s.Entries = append(s.Entries, Entry{Key: key, Option: opt})
	return s
}

// Get returns the option stored under key, if any.
func (s *Schema) Get(key Key) (Option, bool) {
	for _, e := range s.Entries {
		if e.Key == key {
			return e.Option, true
		}
	}

	return nil, false
}
