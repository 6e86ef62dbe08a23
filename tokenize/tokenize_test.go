package tokenize_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/schema"
	"forgecli.dev/argspec/tokenize"
)

func TestTokenizeName(t *testing.T) {
	t.Parallel()

	s := schema.New().Add("out", &schema.Single{Common: schema.Common{Names: []string{"--out", "-o"}}})
	reg := registry.Build(s)

	events, err := tokenize.Tokenize([]string{"--out=file.txt"}, reg, "-")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, tokenize.EventName, events[0].Kind)
	assert.Equal(t, schema.Key("out"), events[0].Key)
	require.NotNil(t, events[0].Inline)
	assert.Equal(t, "file.txt", *events[0].Inline)
}

func TestTokenizeMarkerAndPositionals(t *testing.T) {
	t.Parallel()

	s := schema.New().Add("rest", &schema.Array{Common: schema.Common{Positional: true, Marker: "--"}})
	reg := registry.Build(s)

	events, err := tokenize.Tokenize([]string{"--", "-x", "--out=y"}, reg, "-")
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, tokenize.EventMarker, events[0].Kind)
	assert.Equal(t, tokenize.EventPositionalArg, events[1].Kind)
	assert.Equal(t, "-x", events[1].Arg)
	assert.Equal(t, tokenize.EventPositionalArg, events[2].Kind)
	assert.Equal(t, "--out=y", events[2].Arg)
}

func TestTokenizeUnknown(t *testing.T) {
	t.Parallel()

	reg := registry.Build(schema.New())

	events, err := tokenize.Tokenize([]string{"--nope"}, reg, "-")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, tokenize.EventUnknown, events[0].Kind)
	assert.Equal(t, "--nope", events[0].Arg)
}

// TestTokenizeClusterFullyRecognized covers scenario 4's first case: two
// niladic flags sharing a cluster prefix, both letters recognized, fully
// expand into two name events with no inline payload.
func TestTokenizeClusterFullyRecognized(t *testing.T) {
	t.Parallel()

	s := schema.New().
		Add("f", &schema.Flag{Common: schema.Common{Names: []string{"-f"}, Cluster: []rune{'f'}}}).
		Add("g", &schema.Flag{Common: schema.Common{Names: []string{"-g"}, Cluster: []rune{'g'}}})
	reg := registry.Build(s)

	events, err := tokenize.Tokenize([]string{"-fg"}, reg, "-")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, tokenize.EventName, events[0].Kind)
	assert.Equal(t, schema.Key("f"), events[0].Key)
	assert.Nil(t, events[0].Inline)

	assert.Equal(t, tokenize.EventName, events[1].Kind)
	assert.Equal(t, schema.Key("g"), events[1].Key)
	assert.Nil(t, events[1].Inline)
}

// TestTokenizeClusterTrailingUnknownOnNiladic covers scenario 4's second
// case: "-gx" where g is a recognized cluster letter but x is not, and g
// is niladic. The trailing "x" surfaces as its own unknown token rather
// than a discarded inline payload on g.
func TestTokenizeClusterTrailingUnknownOnNiladic(t *testing.T) {
	t.Parallel()

	s := schema.New().Add("g", &schema.Flag{Common: schema.Common{Names: []string{"-g"}, Cluster: []rune{'g'}}})
	reg := registry.Build(s)

	events, err := tokenize.Tokenize([]string{"-gx"}, reg, "-")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, tokenize.EventName, events[0].Kind)
	assert.Equal(t, schema.Key("g"), events[0].Key)
	assert.Nil(t, events[0].Inline)

	assert.Equal(t, tokenize.EventUnknown, events[1].Kind)
	assert.Equal(t, "x", events[1].Arg)
}

// TestTokenizeClusterTrailingValueOnSingle covers a cluster whose last
// letter takes exactly one parameter: the trailing characters become
// that option's inline value instead of a separate token.
func TestTokenizeClusterTrailingValueOnSingle(t *testing.T) {
	t.Parallel()

	s := schema.New().
		Add("v", &schema.Flag{Common: schema.Common{Names: []string{"-v"}, Cluster: []rune{'v'}}}).
		Add("o", &schema.Single{Common: schema.Common{Names: []string{"-o"}, Cluster: []rune{'o'}}})
	reg := registry.Build(s)

	events, err := tokenize.Tokenize([]string{"-vofile.txt"}, reg, "-")
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, schema.Key("v"), events[0].Key)
	assert.Nil(t, events[0].Inline)

	assert.Equal(t, schema.Key("o"), events[1].Key)
	require.NotNil(t, events[1].Inline)
	assert.Equal(t, "file.txt", *events[1].Inline)
}

// TestTokenizeClusterNameMatchesOwnLetter guards the self-splice
// infinite-loop regression: an option whose declared name is already
// identical to its own one-letter cluster expansion must terminate.
func TestTokenizeClusterNameMatchesOwnLetter(t *testing.T) {
	t.Parallel()

	s := schema.New().Add("f", &schema.Flag{Common: schema.Common{Names: []string{"-f"}, Cluster: []rune{'f'}}})
	reg := registry.Build(s)

	done := make(chan struct{})

	var events []tokenize.Event

	var err error

	go func() {
		events, err = tokenize.Tokenize([]string{"-f"}, reg, "-")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Tokenize did not terminate: likely infinite cluster-splice loop")
	}

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, tokenize.EventName, events[0].Kind)
	assert.Equal(t, schema.Key("f"), events[0].Key)
}

func TestTokenizeCompleting(t *testing.T) {
	t.Parallel()

	s := schema.New().Add("v", &schema.Flag{Common: schema.Common{Names: []string{"-v"}}})
	reg := registry.Build(s)

	events, err := tokenize.TokenizeCompleting([]string{"-v", "--nope"}, reg, "-", 1)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.False(t, events[0].Completing)
	assert.True(t, events[1].Completing)
}
