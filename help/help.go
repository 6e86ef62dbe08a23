package help

import (
	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/schema"
)

// Item enumerates the semantic items an option may contribute to a help
// rendering, in the specification's fixed display order.
type Item int

const (
	ItemSynopsis Item = iota
	ItemSeparator
	ItemParamCount
	ItemPositional
	ItemAppend
	ItemChoices
	ItemRegex
	ItemUnique
	ItemLimit
	ItemRequires
	ItemRequired
	ItemDefault
	ItemDeprecated
	ItemLink
	ItemStdin
	ItemSources
	ItemRequiredIf
	ItemCluster
	ItemUseNested
	ItemUseFormat
	ItemUseFilter
	ItemInline
	ItemFormats
)

// Items returns, in fixed order, the subset of [Item] that applies to
// opt. A formatter iterates this list rather than re-deriving which
// attributes are meaningful for a given [schema.OptionKind].
func Items(opt schema.Option) []Item {
	common := schema.CommonOf(opt)

	var items []Item

	add := func(i Item, cond bool) {
		if cond {
			items = append(items, i)
		}
	}

	add(ItemSynopsis, common.Synopsis != "")

	sep, hasSep := separatorOf(opt)
	add(ItemSeparator, hasSep && sep != "")

	_, max := opt.ParamRange()
	add(ItemParamCount, !opt.Kind().Niladic() && max != 1)

	add(ItemPositional, common.Positional)

	arr, isArray := opt.(*schema.Array)
	add(ItemAppend, isArray && arr.Append)

	sel, hasSel := selectionOf(opt)
	add(ItemChoices, hasSel && len(sel.Choices) > 0)
	add(ItemRegex, hasSel && sel.Regex != "")

	add(ItemUnique, isArray && arr.Unique)
	add(ItemLimit, isArray && arr.Limit > 0)

	add(ItemRequires, common.Requires != nil)
	add(ItemRequired, common.Required)
	add(ItemDefault, common.Default.IsSet())
	add(ItemDeprecated, common.Deprecated != "")
	add(ItemLink, common.Link != "")
	add(ItemStdin, common.Stdin)
	add(ItemSources, len(common.Sources) > 0)
	add(ItemRequiredIf, common.RequiredIf != nil)
	add(ItemCluster, len(common.Cluster) > 0)

	h, isHelp := opt.(*schema.Help)
	add(ItemUseNested, isHelp && h.UseNested)
	add(ItemUseFormat, isHelp && h.UseFormat)
	add(ItemUseFilter, isHelp && h.UseFilter)
	add(ItemFormats, isHelp && len(h.Formats) > 0)

	inline, hasInline := inlineOf(opt)
	add(ItemInline, hasInline && inline != schema.InlineForbidden)

	return items
}

func separatorOf(opt schema.Option) (string, bool) {
	if arr, ok := opt.(*schema.Array); ok {
		return arr.Separator, true
	}

	return "", false
}

func selectionOf(opt schema.Option) (schema.Selection, bool) {
	switch o := opt.(type) {
	case *schema.Single:
		return o.Selection, true
	case *schema.Array:
		return o.Selection, true
	default:
		return schema.Selection{}, false
	}
}

func inlineOf(opt schema.Option) (schema.InlineMode, bool) {
	switch o := opt.(type) {
	case *schema.Single:
		return o.Inline, true
	case *schema.Array:
		return o.Inline, true
	case *schema.Function:
		return o.Inline, true
	default:
		return schema.InlineForbidden, false
	}
}

// Group is one help-group's options, in declaration order.
type Group struct {
	Label   string
	Options []schema.Key
}

// GroupsByLabel partitions reg's options into groups by their declared
// [schema.Common.Group] label, preserving declaration order both across
// groups (a group's position is set by its first member) and within a
// group. An option with a nil Group is hidden: it is omitted entirely
// rather than placed in an unlabeled group.
func GroupsByLabel(reg *registry.Registry) []Group {
	var order []string

	byLabel := map[string]*Group{}

	for _, opt := range reg.All() {
		common := schema.CommonOf(opt)
		if common.Group == nil {
			continue
		}

		label := *common.Group

		g, ok := byLabel[label]
		if !ok {
			g = &Group{Label: label}
			byLabel[label] = g
			order = append(order, label)
		}

		g.Options = append(g.Options, keyOf(reg, opt))
	}

	out := make([]Group, 0, len(order))
	for _, label := range order {
		out = append(out, *byLabel[label])
	}

	return out
}

func keyOf(reg *registry.Registry, opt schema.Option) schema.Key {
	for k, o := range reg.All() {
		if o == opt {
			return k
		}
	}

	return ""
}

// SectionKind is the closed set of section kinds a formatter may render.
type SectionKind string

const (
	SectionText   SectionKind = "text"
	SectionUsage  SectionKind = "usage"
	SectionGroups SectionKind = "groups"
)

// Section describes one block of a rendered help document. Filter and
// Exclude name option keys or group labels (formatter-defined) to
// restrict a groups section to a subset.
type Section struct {
	Kind    SectionKind
	Title   string
	Breaks  int
	Indent  int
	Filter  []string
	Exclude []string
	Style   string
}

// Align is a column's text alignment.
type Align int

const (
	// AlignLeft and AlignRight apply to any column.
	AlignLeft Align = iota
	AlignRight
	// AlignSlot applies only to the names column: align each name by its
	// declared-name slot index, so sibling options' Nth names line up
	// vertically regardless of how many names precede them.
	AlignSlot
	// AlignMerge applies only to the param/descr columns: merge into the
	// preceding column rather than starting a new one.
	AlignMerge
)

// Column describes the layout of one of the three columns (names, param,
// descr) a formatter lays help text out in.
type Column struct {
	Align  Align
	Indent int
	Breaks int
	Hidden bool
	// Absolute controls, for the param/descr columns, whether Indent is
	// relative to the previous column's right edge (false) or to the
	// line start (true). Meaningless for the names column.
	Absolute bool
}

// Columns is the three-column model (names, param, descr) a formatter
// consumes to lay out one option's help row.
type Columns struct {
	Names Column
	Param Column
	Descr Column
}

// DefaultColumns returns a baseline layout: left-aligned names, a param
// column merged flush against names, and a descr column indented two
// spaces past param's right edge.
func DefaultColumns() Columns {
	return Columns{
		Names: Column{Align: AlignLeft},
		Param: Column{Align: AlignMerge},
		Descr: Column{Align: AlignLeft, Indent: 2},
	}
}
