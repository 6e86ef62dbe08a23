package tokenize

import (
	"strings"

	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/schema"
)

// EventKind classifies one tokenized argument.
type EventKind int

const (
	// EventName is a registered long name or cluster-letter expansion,
	// optionally carrying an inline "=value" payload.
	EventName EventKind = iota
	// EventMarker is the schema's positional marker token.
	EventMarker
	// EventPositionalArg is a raw argument captured verbatim after the
	// positional marker, with cluster expansion and inline parsing
	// suppressed.
	EventPositionalArg
	// EventUnknown is an argument that matched no registered name, no
	// cluster letter, and no positional marker.
	EventUnknown
)

// Event is one classified argument.
type Event struct {
	Kind EventKind
	Name string
	Key  schema.Key
	// Inline is the value after "=" when the argument carried one, nil
	// otherwise.
	Inline *string
	// Arg is the raw argument text, populated for EventPositionalArg and
	// EventUnknown.
	Arg string
	// Completing marks the argument the completion index falls inside.
	Completing bool
	// OrigIdx is the index into the original args slice this event was
	// produced from (shared by every event a cluster splice of one
	// argument expands into). Used by package parse to slice the raw
	// remainder of args when a command option recurses.
	OrigIdx int
}

// Tokenize walks args left to right, splicing cluster expansions into
// the stream in place, and returns the resulting event sequence.
func Tokenize(args []string, reg *registry.Registry, clusterPrefix string) ([]Event, error) {
	return tokenizeWithCompletion(args, reg, clusterPrefix, nil)
}

// TokenizeCompleting is [Tokenize] plus a completion index into args;
// the last event produced from that original argument is marked
// Completing.
func TokenizeCompleting(args []string, reg *registry.Registry, clusterPrefix string, completionIndex int) ([]Event, error) {
	return tokenizeWithCompletion(args, reg, clusterPrefix, &completionIndex)
}

type pending struct {
	arg     string
	origIdx int
	// spliced marks an argument produced by cluster expansion; such
	// arguments are classified directly (step 2) and never re-examined
	// for further cluster expansion.
	spliced bool
}

func tokenizeWithCompletion(args []string, reg *registry.Registry, clusterPrefix string, completionIndex *int) ([]Event, error) {
	stream := make([]pending, len(args))
	for i, a := range args {
		stream[i] = pending{arg: a, origIdx: i}
	}

	var events []Event

	lastEventForOrig := map[int]int{}

	positional, hasPositional := reg.Positional()
	marker := ""

	if hasPositional {
		marker = schema.CommonOf(positional.Option).Marker
	}

	afterMarker := false

	i := 0
	for i < len(stream) {
		cur := stream[i]
		arg := cur.arg

		if afterMarker {
			events = append(events, Event{Kind: EventPositionalArg, Arg: arg, OrigIdx: cur.origIdx})
			lastEventForOrig[cur.origIdx] = len(events) - 1
			i++

			continue
		}

		if !cur.spliced && clusterPrefix != "" && strings.HasPrefix(arg, clusterPrefix) && len(arg) > len(clusterPrefix) {
			rest := arg[len(clusterPrefix):]

			idx, recognized := firstUnrecognizedLetter(rest, reg)
			if !recognized {
				idx = len(rest)
			}

			if idx > 0 {
				names, err := expandCluster(rest[:idx], rest[idx:], reg)
				if err != nil {
					return nil, err
				}

				replacement := make([]pending, len(names))
				for j, n := range names {
					replacement[j] = pending{arg: n, origIdx: cur.origIdx, spliced: true}
				}

				stream = spliceAt(stream, i, replacement)

				continue
			}
		}

		left, right, hasEquals := strings.Cut(arg, "=")

		if key, _, ok := reg.ByName(left); ok {
			var inline *string
			if hasEquals {
				inline = &right
			}

			events = append(events, Event{Kind: EventName, Name: left, Key: key, Inline: inline, OrigIdx: cur.origIdx})
			lastEventForOrig[cur.origIdx] = len(events) - 1
			i++

			continue
		}

		if hasPositional && marker != "" && left == marker {
			events = append(events, Event{Kind: EventMarker, OrigIdx: cur.origIdx})
			lastEventForOrig[cur.origIdx] = len(events) - 1
			afterMarker = true
			i++

			continue
		}

		events = append(events, Event{Kind: EventUnknown, Arg: arg, OrigIdx: cur.origIdx})
		lastEventForOrig[cur.origIdx] = len(events) - 1
		i++
	}

	if completionIndex != nil {
		if idx, ok := lastEventForOrig[*completionIndex]; ok {
			events[idx].Completing = true
		}
	}

	return events, nil
}

// firstUnrecognizedLetter returns the byte index of the first rune in
// rest that is not a registered cluster letter, and whether one was
// found at all. Cluster letters are assumed single-byte (the
// conventional getopt-style alphabet), so byte and rune offsets
// coincide.
func firstUnrecognizedLetter(rest string, reg *registry.Registry) (int, bool) {
	for i := 0; i < len(rest); i++ {
		if _, _, ok := reg.ByLetter(rune(rest[i])); !ok {
			return i, true
		}
	}

	return len(rest), false
}

// expandCluster builds the replacement argument list for a recognized
// cluster-letter prefix. letters is the recognized run; remainder is
// whatever followed it in the original argument (empty unless the
// cluster was cut short by an unrecognized trailing character).
//
// The remainder is spliced as "<name>=<remainder>" only when the last
// clustered option can actually take an inline value (its maximum
// parameter count is exactly one, per the "inline has no effect unless
// max equals one" rule shared with single-valued options). Otherwise
// the remainder is emitted as its own separate, unspliced token so it
// is reprocessed as an ordinary argument (typically producing
// unknown-option) rather than silently discarded as an ignored inline
// payload on a niladic option — see DESIGN.md's note on end-to-end
// scenario 4.
func expandCluster(letters, remainder string, reg *registry.Registry) ([]string, error) {
	out := make([]string, 0, len(letters)+1)

	for j := 0; j < len(letters); j++ {
		letter := rune(letters[j])

		_, opt, ok := reg.ByLetter(letter)
		if !ok {
			return nil, errs.New(errs.KindInvalidClusterOption, string(letter))
		}

		if j < len(letters)-1 {
			_, max := opt.ParamRange()
			if max > 1 {
				return nil, errs.New(errs.KindInvalidClusterOption, string(letter)).
					WithDetail("only the last letter in a cluster may take more than one parameter")
			}

			// A single-param option (max == 1) is allowed here, but its
			// parameter isn't reserved from the arguments that follow the
			// cluster the way a trailing min-count option's would be;
			// such a schema surfaces as mismatched-param-count downstream
			// instead of consuming the reserved argument.
		}

		name := schema.CommonOf(opt).Preferred

		if j == len(letters)-1 && remainder != "" {
			_, max := opt.ParamRange()
			if max == 1 {
				name += "=" + remainder
			} else {
				out = append(out, name, remainder)
				continue
			}
		}

		out = append(out, name)
	}

	return out, nil
}

func spliceAt(stream []pending, i int, replacement []pending) []pending {
	out := make([]pending, 0, len(stream)-1+len(replacement))
	out = append(out, stream[:i]...)
	out = append(out, replacement...)
	out = append(out, stream[i+1:]...)

	return out
}
