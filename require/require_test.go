package require_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/registry"
	reqpkg "forgecli.dev/argspec/require"
	"forgecli.dev/argspec/schema"
)

func buildRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	a := &schema.Flag{Common: schema.Common{Names: []string{"-a"}}}
	b := &schema.Single{Common: schema.Common{Names: []string{"-b"}}}
	c := &schema.Single{Common: schema.Common{Names: []string{"-c"}, Required: true}}

	s := schema.New().Add("a", a).Add("b", b).Add("c", c)

	return registry.Build(s)
}

func TestTag(t *testing.T) {
	t.Parallel()

	reg := buildRegistry(t)

	tcs := map[string]struct {
		req      schema.Requirement
		selfKey  schema.Key
		wantKind errs.Kind
		wantLen  int
	}{
		"valid presence reference": {
			req:     schema.Name("b"),
			selfKey: "a",
			wantLen: 0,
		},
		"self reference rejected": {
			req:      schema.Name("a"),
			selfKey:  "a",
			wantKind: errs.KindInvalidSelfRequirement,
		},
		"unknown reference rejected": {
			req:      schema.Name("nope"),
			selfKey:  "a",
			wantKind: errs.KindUnknownRequiredOption,
		},
		"trivially true presence against required target": {
			req:      schema.Name("c"),
			selfKey:  "a",
			wantKind: errs.KindInvalidRequiredOption,
		},
		"empty all is allowed": {
			req:     schema.All(),
			selfKey: "a",
			wantLen: 0,
		},
		"valmap equal-value against flag rejected": {
			req:      schema.ValMap(map[schema.Key]any{"a": "x"}),
			selfKey:  "b",
			wantKind: errs.KindInvalidRequiredValue,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			errsOut := reqpkg.Tag(tc.req, tc.selfKey, reg)

			if tc.wantKind == "" {
				assert.Len(t, errsOut, tc.wantLen)
				return
			}

			require.NotEmpty(t, errsOut)
			assert.Equal(t, tc.wantKind, errsOut[0].Kind)
		})
	}
}

func display(k schema.Key) string { return string(k) }

func TestEval(t *testing.T) {
	t.Parallel()

	values := schema.Values{"b": "x"}
	specified := reqpkg.Specified{"b": true}

	ok, _, err := reqpkg.Eval(context.Background(), schema.Name("b"), values, specified, display)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, render, err := reqpkg.Eval(context.Background(), schema.Name("missing"), values, specified, display)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "missing", render)

	ok, _, err = reqpkg.Eval(context.Background(), schema.Not(schema.Name("missing")), values, specified, display)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalDeMorgan(t *testing.T) {
	t.Parallel()

	specified := reqpkg.Specified{"a": true}
	values := schema.Values{}

	all := schema.All(schema.Name("a"), schema.Name("b"))
	one := schema.One(schema.Not(schema.Name("a")), schema.Not(schema.Name("b")))

	okAll, _, err := reqpkg.Eval(context.Background(), schema.Not(all), values, specified, display)
	require.NoError(t, err)

	okOne, _, err := reqpkg.Eval(context.Background(), one, values, specified, display)
	require.NoError(t, err)

	assert.Equal(t, okOne, okAll)
}

func TestEvalAllRendersParenthesizedWhenMultiple(t *testing.T) {
	t.Parallel()

	specified := reqpkg.Specified{}
	values := schema.Values{}

	_, render, err := reqpkg.Eval(context.Background(), schema.All(schema.Name("a"), schema.Name("b")), values, specified, display)
	require.NoError(t, err)
	assert.Equal(t, "(a)", render)
}

func TestEvalOneRendersJoinedOnFullFailure(t *testing.T) {
	t.Parallel()

	specified := reqpkg.Specified{}
	values := schema.Values{}

	_, render, err := reqpkg.Eval(context.Background(), schema.One(schema.Name("a"), schema.Name("b")), values, specified, display)
	require.NoError(t, err)
	assert.Equal(t, "a or b", render)
}

func TestEvalValMap(t *testing.T) {
	t.Parallel()

	values := schema.Values{"a": "x"}
	specified := reqpkg.Specified{"a": true}

	ok, _, err := reqpkg.Eval(context.Background(), schema.ValMap(map[schema.Key]any{"a": "x"}), values, specified, display)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = reqpkg.Eval(context.Background(), schema.ValMap(map[schema.Key]any{"a": "y"}), values, specified, display)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, _, err = reqpkg.Eval(context.Background(), schema.ValMap(map[schema.Key]any{"a": nil}), schema.Values{}, reqpkg.Specified{}, display)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEvalValMapRendersQuotedStringLiteral(t *testing.T) {
	t.Parallel()

	values := schema.Values{"b": "y"}
	specified := reqpkg.Specified{"b": true}

	_, render, err := reqpkg.Eval(context.Background(), schema.ValMap(map[schema.Key]any{"b": "x"}), values, specified, display)
	require.NoError(t, err)
	assert.Equal(t, "b == 'x'", render)
}

func TestEvalCallback(t *testing.T) {
	t.Parallel()

	req := schema.Callback(func(_ context.Context, v schema.Values) (bool, error) {
		return v["x"] == "y", nil
	})

	ok, _, err := reqpkg.Eval(context.Background(), req, schema.Values{"x": "y"}, reqpkg.Specified{}, display)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = reqpkg.Eval(context.Background(), schema.Not(req), schema.Values{"x": "y"}, reqpkg.Specified{}, display)
	require.NoError(t, err)
	assert.False(t, ok)
}
