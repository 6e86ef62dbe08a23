package validate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/schema"
	"forgecli.dev/argspec/validate"
)

func flag(names ...string) *schema.Flag {
	return &schema.Flag{Common: schema.Common{Names: names}}
}

func single(names ...string) *schema.Single {
	return &schema.Single{Common: schema.Common{Names: names}}
}

func TestValidateBasic(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		build   func() *schema.Schema
		wantErr errs.Kind
	}{
		"empty schema is valid": {
			build: schema.New,
		},
		"duplicate names fail": {
			build: func() *schema.Schema {
				return schema.New().
					Add("a", flag("-x")).
					Add("b", flag("-x"))
			},
			wantErr: errs.KindDuplicateOptionName,
		},
		"two positionals fail": {
			build: func() *schema.Schema {
				p1 := single("a")
				p1.Positional = true
				p2 := single("b")
				p2.Positional = true

				return schema.New().Add("a", p1).Add("b", p2)
			},
			wantErr: errs.KindDuplicatePositionalOption,
		},
		"required and default conflict": {
			build: func() *schema.Schema {
				s := single("-n")
				s.Required = true
				s.Default = schema.Default{Literal: "x"}

				return schema.New().Add("n", s)
			},
			wantErr: errs.KindInvalidRequiredOption,
		},
		"example incompatible with choices rejected": {
			build: func() *schema.Schema {
				s := single("-n")
				s.Choices = []schema.Choice{{Name: "a"}, {Name: "b"}}
				s.Example = "z"

				return schema.New().Add("n", s)
			},
			wantErr: errs.KindIncompatibleRequiredValue,
		},
		"empty choices rejected": {
			build: func() *schema.Schema {
				s := single("-n")
				s.Choices = []schema.Choice{}

				return schema.New().Add("n", s)
			},
			wantErr: errs.KindEmptyChoicesDefinition,
		},
		"non-niladic option without name or positional": {
			build: func() *schema.Schema {
				return schema.New().Add("n", &schema.Single{})
			},
			wantErr: errs.KindUnnamedOption,
		},
		"self requirement rejected": {
			build: func() *schema.Schema {
				f := flag("-a")
				f.Requires = schema.Name("a")

				return schema.New().Add("a", f)
			},
			wantErr: errs.KindInvalidSelfRequirement,
		},
		"requirement to unknown option rejected": {
			build: func() *schema.Schema {
				f := flag("-a")
				f.Requires = schema.Name("missing")

				return schema.New().Add("a", f)
			},
			wantErr: errs.KindUnknownRequiredOption,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			v := validate.New()
			_, err := v.Validate(context.Background(), tc.build())

			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)

			var ae *errs.Error
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tc.wantErr, ae.Kind)
		})
	}
}

func TestValidateWarnings(t *testing.T) {
	t.Parallel()

	positional := single("p")
	positional.Positional = true
	positional.Cluster = []rune{'p'}

	s := schema.New().Add("p", positional)

	v := validate.New()
	warnings, err := v.Validate(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, errs.KindPositionalWithClusterLetter, warnings[0].Kind)
}

func TestValidateTooSimilarNames(t *testing.T) {
	t.Parallel()

	s := schema.New().Add("a", flag("--bar")).Add("b", flag("--baz"))

	v := validate.New()
	warnings, err := v.Validate(context.Background(), s)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	assert.Equal(t, errs.KindTooSimilarOptionNames, warnings[0].Kind)
}

func TestValidateDistinctNamesNotFlagged(t *testing.T) {
	t.Parallel()

	s := schema.New().Add("a", flag("--verbose")).Add("b", flag("--quiet"))

	v := validate.New()
	warnings, err := v.Validate(context.Background(), s)
	require.NoError(t, err)
	assert.Empty(t, warnings)
}

func TestValidateRecursesIntoCommands(t *testing.T) {
	t.Parallel()

	inner := schema.New().Add("a", flag("-x")).Add("b", flag("-x"))
	cmd := &schema.Command{Common: schema.Common{Names: []string{"sub"}}, Options: inner}

	s := schema.New().Add("sub", cmd)

	v := validate.New()
	_, err := v.Validate(context.Background(), s)
	require.Error(t, err)

	var ae *errs.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, errs.KindDuplicateOptionName, ae.Kind)
}
