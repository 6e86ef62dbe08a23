package validate

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"forgecli.dev/argspec/errs"
	"forgecli.dev/argspec/metrics"
	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/require"
	"forgecli.dev/argspec/schema"
)

// Validator checks a [schema.Schema] and every subcommand schema it
// reaches.
type Validator struct {
	logger   *slog.Logger
	recorder metrics.Recorder
}

// Opt configures a [Validator].
type Opt func(*Validator)

// WithLogger overrides the validator's logger, which defaults to
// [slog.Default].
func WithLogger(l *slog.Logger) Opt {
	return func(v *Validator) { v.logger = l }
}

// WithRecorder wires a [metrics.Recorder] that observes the warning count
// of every completed Validate call.
func WithRecorder(r metrics.Recorder) Opt {
	return func(v *Validator) { v.recorder = r }
}

// New builds a Validator.
func New(opts ...Opt) *Validator {
	v := &Validator{logger: slog.Default()}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Validate checks s and, recursively, every command sub-schema it
// resolves to, guarding against resolver cycles by ResolverID. It
// returns the accumulated warning bag, or the first fatal error.
func (v *Validator) Validate(ctx context.Context, s *schema.Schema) (Warnings, error) {
	var warnings Warnings

	visited := make(map[string]bool)
	if err := v.validateLevel(ctx, s, &warnings, visited); err != nil {
		return warnings, err
	}

	for _, w := range warnings {
		v.logger.Warn("schema validation warning",
			slog.String("kind", string(w.Kind)),
			slog.String("option", w.Option),
			slog.String("detail", w.Detail))
	}

	if v.recorder != nil {
		v.recorder.ObserveValidateWarnings(len(warnings))
	}

	return warnings, nil
}

func (v *Validator) validateLevel(ctx context.Context, s *schema.Schema, warnings *Warnings, visited map[string]bool) error {
	reg := registry.Build(s)

	for key, opt := range reg.All() {
		if err := v.checkOption(key, opt, reg, warnings); err != nil {
			return err
		}
	}

	for name, keys := range reg.NameCollisions() {
		return errs.New(errs.KindDuplicateOptionName, name).
			WithDetail(fmt.Sprintf("declared by %d options", len(keys)))
	}

	for letter, keys := range reg.LetterCollisions() {
		return errs.New(errs.KindDuplicateClusterLetter, string(letter)).
			WithDetail(fmt.Sprintf("declared by %d options", len(keys)))
	}

	for _, key := range reg.PositionalCollisions() {
		return errs.New(errs.KindDuplicatePositionalOption, string(key))
	}

	if err := v.checkNamingConventions(s, warnings); err != nil {
		return err
	}

	checkTooSimilarNames(s, warnings)

	for key, opt := range reg.All() {
		cmd, ok := opt.(*schema.Command)
		if !ok {
			continue
		}

		inner, err := v.resolveCommandSchema(ctx, cmd)
		if err != nil {
			return err
		}

		if inner == nil {
			continue
		}

		if cmd.ResolverID != "" {
			if visited[cmd.ResolverID] {
				continue
			}

			visited[cmd.ResolverID] = true
		}

		if err := v.validateLevel(ctx, inner, warnings, visited); err != nil {
			return fmt.Errorf("command %q: %w", key, err)
		}
	}

	return nil
}

func (v *Validator) resolveCommandSchema(ctx context.Context, cmd *schema.Command) (*schema.Schema, error) {
	if cmd.Options != nil {
		return cmd.Options, nil
	}

	if cmd.Resolver == nil {
		return nil, nil
	}

	return cmd.Resolver(ctx)
}

// checkOption runs every per-option structural and semantic check from
// spec §4.2 in declaration order.
func (v *Validator) checkOption(key schema.Key, opt schema.Option, reg *registry.Registry, warnings *Warnings) error {
	common := schema.CommonOf(opt)
	display := displayName(common, string(key))

	if err := checkNames(common, display); err != nil {
		return err
	}

	if !opt.Kind().Niladic() && !common.Positional && !hasAnyName(common) {
		return errs.New(errs.KindUnnamedOption, display)
	}

	if err := checkMutualExclusions(opt, common, display); err != nil {
		return err
	}

	if err := checkLiteralSanity(opt, common, display); err != nil {
		return err
	}

	if err := checkValueCompatibility(opt, common, display); err != nil {
		return err
	}

	for _, e := range require.Tag(common.Requires, key, reg) {
		return e
	}

	for _, e := range require.Tag(common.RequiredIf, key, reg) {
		return e
	}

	if err := checkRequirementValueShapes(common.Requires, reg); err != nil {
		return err
	}

	if err := checkRequirementValueShapes(common.RequiredIf, reg); err != nil {
		return err
	}

	checkOptionWarnings(opt, common, display, warnings)

	return nil
}

func hasAnyName(c *schema.Common) bool {
	for _, n := range c.Names {
		if n != "" {
			return true
		}
	}

	return false
}

func displayName(c *schema.Common, fallback string) string {
	if c.Preferred != "" {
		return c.Preferred
	}

	for _, n := range c.Names {
		if n != "" {
			return n
		}
	}

	return fallback
}

var invalidNameChars = regexp.MustCompile(`[\s=]`)

func checkNames(c *schema.Common, display string) error {
	for _, n := range c.Names {
		if n == "" {
			continue
		}

		if invalidNameChars.MatchString(n) {
			return errs.New(errs.KindInvalidOptionName, n).
				WithDetail("names may not contain whitespace or '='")
		}
	}

	for _, l := range c.Cluster {
		if unicode.IsSpace(l) || l == '=' {
			return errs.New(errs.KindInvalidClusterLetter, display).WithValue(string(l))
		}
	}

	return nil
}

func checkMutualExclusions(opt schema.Option, c *schema.Common, display string) error {
	if c.Required && (c.Default.IsSet() || c.RequiredIf != nil) {
		return errs.New(errs.KindInvalidRequiredOption, display).
			WithDetail("required is mutually exclusive with default and requiredIf")
	}

	switch o := opt.(type) {
	case *schema.Single:
		if o.Selection.Regex != "" && len(o.Selection.Choices) > 0 {
			return errs.New(errs.KindIncompatibleOptionDefinition, display).
				WithDetail("choices and regex are mutually exclusive")
		}

		if o.Example != nil && o.ParamName != "" {
			return errs.New(errs.KindIncompatibleOptionDefinition, display).
				WithDetail("example and paramName are mutually exclusive")
		}
	case *schema.Array:
		if o.Selection.Regex != "" && len(o.Selection.Choices) > 0 {
			return errs.New(errs.KindIncompatibleOptionDefinition, display).
				WithDetail("choices and regex are mutually exclusive")
		}

		if o.Example != nil && o.ParamName != "" {
			return errs.New(errs.KindIncompatibleOptionDefinition, display).
				WithDetail("example and paramName are mutually exclusive")
		}
	case *schema.Version:
		if o.Version != "" && o.Resolve != nil {
			return errs.New(errs.KindIncompatibleOptionDefinition, display).
				WithDetail("version and resolve are mutually exclusive")
		}
	}

	return nil
}

func checkLiteralSanity(opt schema.Option, c *schema.Common, display string) error {
	switch o := opt.(type) {
	case *schema.Version:
		if o.Version == "" && o.Resolve == nil {
			return errs.New(errs.KindInvalidVersionDefinition, display).
				WithDetail("version must supply a literal version or a resolve callback")
		}

	case *schema.Single:
		if err := checkSelectionSanity(o.Selection, display); err != nil {
			return err
		}

	case *schema.Array:
		if err := checkSelectionSanity(o.Selection, display); err != nil {
			return err
		}

		if o.Limit < 0 {
			return errs.New(errs.KindInvalidNumericRange, display).
				WithDetail("limit must be non-negative")
		}

	case *schema.Function:
		min, max := o.ParamCount.Min, o.ParamCount.Max
		if min < 0 || (max >= 0 && max < min) {
			return errs.New(errs.KindInvalidParamCount, display).
				WithDetail(fmt.Sprintf("invalid paramCount range [%d,%d]", min, max))
		}
	}

	return nil
}

func hasInlineConstraint(opt schema.Option) bool {
	switch o := opt.(type) {
	case *schema.Single:
		return o.Inline != schema.InlineForbidden
	case *schema.Array:
		return o.Inline != schema.InlineForbidden
	case *schema.Function:
		return o.Inline != schema.InlineForbidden
	}

	return false
}

func checkSelectionSanity(sel schema.Selection, display string) error {
	if sel.Choices != nil && len(sel.Choices) == 0 {
		return errs.New(errs.KindEmptyChoicesDefinition, display)
	}

	seen := make(map[string]bool, len(sel.Choices))

	for _, c := range sel.Choices {
		if seen[c.Name] {
			return errs.New(errs.KindDuplicateChoiceValue, display).WithValue(c.Name)
		}

		seen[c.Name] = true
	}

	if sel.Regex != "" {
		if _, err := regexp.Compile(sel.Regex); err != nil {
			return errs.New(errs.KindRegexConstraintViolation, display).
				WithDetail("regex does not compile: " + err.Error())
		}
	}

	return nil
}

// checkValueCompatibility checks that a literal default and a literal
// example satisfy the option's own selection constraints.
func checkValueCompatibility(opt schema.Option, c *schema.Common, display string) error {
	sel, ok := selectionOf(opt)
	if !ok {
		return nil
	}

	if c.Default.Literal != nil && !valueSatisfiesSelection(c.Default.Literal, sel) {
		return errs.New(errs.KindIncompatibleRequiredValue, display).
			WithDetail("default does not satisfy the option's selection constraints")
	}

	if example, ok := exampleOf(opt); ok && example != nil && !valueSatisfiesSelection(example, sel) {
		return errs.New(errs.KindIncompatibleRequiredValue, display).
			WithDetail("example does not satisfy the option's selection constraints")
	}

	return nil
}

func selectionOf(opt schema.Option) (schema.Selection, bool) {
	switch o := opt.(type) {
	case *schema.Single:
		return o.Selection, true
	case *schema.Array:
		return o.Selection, true
	}

	return schema.Selection{}, false
}

func exampleOf(opt schema.Option) (any, bool) {
	switch o := opt.(type) {
	case *schema.Single:
		return o.Example, true
	case *schema.Array:
		return o.Example, true
	}

	return nil, false
}

func valueSatisfiesSelection(v any, sel schema.Selection) bool {
	s, isStr := v.(string)
	if !isStr {
		return true
	}

	if len(sel.Choices) > 0 {
		for _, c := range sel.Choices {
			if c.Name == s {
				return true
			}
		}

		return false
	}

	if sel.Regex != "" {
		re, err := regexp.Compile(sel.Regex)
		if err != nil {
			return true // already reported by checkSelectionSanity
		}

		return re.MatchString(s)
	}

	return true
}

// checkRequirementValueShapes walks req looking for ValMap entries whose
// expected value is an equal-value form, and checks it against the
// target option's own selection constraints — the "value compatibility"
// bullet of spec §4.2, distinct from [require.Tag]'s structural checks.
func checkRequirementValueShapes(req schema.Requirement, reg *registry.Registry) error {
	if req == nil {
		return nil
	}

	switch r := req.(type) {
	case schema.ReqNot:
		return checkRequirementValueShapes(r.Inner, reg)
	case schema.ReqAll:
		for _, item := range r.Items {
			if err := checkRequirementValueShapes(item, reg); err != nil {
				return err
			}
		}
	case schema.ReqOne:
		for _, item := range r.Items {
			if err := checkRequirementValueShapes(item, reg); err != nil {
				return err
			}
		}
	case schema.ReqValMap:
		for name, expected := range r.Entries {
			if expected == schema.Unset || expected == nil {
				continue
			}

			target, ok := reg.ByKey(name)
			if !ok {
				continue // already reported by require.Tag
			}

			sel, ok := selectionOf(target)
			if !ok {
				continue
			}

			if !valueSatisfiesSelection(expected, sel) {
				return errs.New(errs.KindIncompatibleRequiredValue, string(name)).
					WithDetail("required value does not satisfy the target's selection constraints")
			}
		}
	}

	return nil
}

func checkOptionWarnings(opt schema.Option, c *schema.Common, display string, warnings *Warnings) {
	_, max := opt.ParamRange()

	if max > 1 && len(c.Cluster) > 0 {
		warnings.add(errs.New(errs.KindVariadicWithClusterLetter, display).
			WithDetail("may only appear as the last letter in a cluster"))
	}

	if c.Positional && len(c.Cluster) > 0 {
		warnings.add(errs.New(errs.KindPositionalWithClusterLetter, display))
	}

	if hasInlineConstraint(opt) && max != 1 {
		warnings.add(errs.New(errs.KindInvalidInlineConstraint, display).
			WithDetail("inline has no effect unless the maximum parameter count is exactly one"))
	}
}

// checkNamingConventions implements the "mixed naming convention"
// warning: within a single name-column slot (the Nth declared name
// across sibling options, aligned by null skip-slots), names whose
// case family, dash-prefix count, or delimiter diverge from the slot's
// majority convention each produce one warning.
func (v *Validator) checkNamingConventions(s *schema.Schema, warnings *Warnings) error {
	bySlot := make(map[int][]string)

	for _, e := range s.Entries {
		names := schema.CommonOf(e.Option).Names

		for i, n := range names {
			if n == "" {
				continue
			}

			bySlot[i] = append(bySlot[i], n)
		}
	}

	for slot, names := range bySlot {
		if len(names) < 2 {
			continue
		}

		groups := make(map[string][]string)

		for _, n := range names {
			sig := namingSignature(n)
			groups[sig] = append(groups[sig], n)
		}

		if len(groups) < 2 {
			continue
		}

		majority := ""
		for sig, members := range groups {
			if len(members) > len(groups[majority]) {
				majority = sig
			}
		}

		for sig, members := range groups {
			if sig == majority {
				continue
			}

			warnings.add(errs.New(errs.KindMixedNamingConvention, members[0]).
				WithDetail(fmt.Sprintf("slot %d mixes naming conventions: %s", slot, strings.Join(members, ", "))))
		}
	}

	return nil
}

// tooSimilarThreshold restates a Levenshtein distance no more than 0.2 of
// the longer name in [similarityRatio]'s 1-distance/maxLen terms.
const tooSimilarThreshold = 0.8

// checkTooSimilarNames implements the "too similar option names" warning:
// within a single name-column slot (the Nth declared name across sibling
// options), any two distinct names whose [similarityRatio] meets
// tooSimilarThreshold are flagged as easy to mistype for one another.
func checkTooSimilarNames(s *schema.Schema, warnings *Warnings) {
	bySlot := make(map[int][]string)

	for _, e := range s.Entries {
		names := schema.CommonOf(e.Option).Names

		for i, n := range names {
			if n == "" {
				continue
			}

			bySlot[i] = append(bySlot[i], n)
		}
	}

	for _, names := range bySlot {
		for i := range names {
			for j := i + 1; j < len(names); j++ {
				if names[i] == names[j] {
					continue
				}

				if similarityRatio(names[i], names[j]) >= tooSimilarThreshold {
					warnings.add(errs.New(errs.KindTooSimilarOptionNames, names[j]).
						WithDetail(fmt.Sprintf("too similar to %q", names[i])))
				}
			}
		}
	}
}

func namingSignature(name string) string {
	dashes := 0
	for dashes < len(name) && name[dashes] == '-' {
		dashes++
	}

	body := name[dashes:]

	delim := "none"

	switch {
	case strings.Contains(body, "-"):
		delim = "kebab"
	case strings.Contains(body, "_"):
		delim = "snake"
	}

	caseFamily := "lower"

	switch {
	case body == strings.ToUpper(body) && body != strings.ToLower(body):
		caseFamily = "upper"
	case hasInternalUpper(body):
		caseFamily = "camel"
	}

	return fmt.Sprintf("dash=%d/delim=%s/case=%s", dashes, delim, caseFamily)
}

func hasInternalUpper(s string) bool {
	for i, r := range s {
		if i == 0 {
			continue
		}

		if unicode.IsUpper(r) {
			return true
		}
	}

	return false
}
