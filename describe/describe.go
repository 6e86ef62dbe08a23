package describe

import (
	"github.com/google/jsonschema-go/jsonschema"

	"forgecli.dev/argspec/registry"
	"forgecli.dev/argspec/schema"
)

const (
	typeBoolean = "boolean"
	typeString  = "string"
	typeArray   = "array"
	typeObject  = "object"
)

// Schema walks reg and builds a JSON Schema describing the option shape
// it accepts. Positional and message-bearing (help/version) options
// contribute no property; a command contributes a nested object schema
// when it carries a static inner schema, and an empty object schema
// when its schema is resolved dynamically (there is no registry to walk
// without invoking the resolver).
func Schema(reg *registry.Registry) *jsonschema.Schema {
	out := &jsonschema.Schema{
		Type:       typeObject,
		Properties: make(map[string]*jsonschema.Schema),
	}

	positional, hasPositional := reg.Positional()

	var propertyOrder []string

	for key, opt := range reg.All() {
		if hasPositional && key == positional.Key {
			continue
		}

		prop := propertySchema(opt)
		if prop == nil {
			continue
		}

		out.Properties[string(key)] = prop
		propertyOrder = append(propertyOrder, string(key))

		if schema.CommonOf(opt).Required {
			out.Required = append(out.Required, string(key))
		}
	}

	out.PropertyOrder = propertyOrder

	if len(out.Properties) == 0 {
		out.Properties = nil
		out.PropertyOrder = nil
	}

	return out
}

// propertySchema builds the schema for one option, or nil if the option
// is message-bearing and contributes nothing to the value shape.
func propertySchema(opt schema.Option) *jsonschema.Schema {
	common := schema.CommonOf(opt)

	prop := &jsonschema.Schema{}
	if common.Synopsis != "" {
		prop.Description = common.Synopsis
	}

	if common.Deprecated != "" {
		prop.Deprecated = true
	}

	switch o := opt.(type) {
	case *schema.Flag:
		prop.Type = typeBoolean

	case *schema.Command:
		prop.Type = typeObject

		if o.Options != nil {
			inner := Schema(registry.Build(o.Options))
			prop.Properties = inner.Properties
			prop.PropertyOrder = inner.PropertyOrder
			prop.Required = inner.Required
		}

	case *schema.Single:
		prop.Type = typeString
		applySelection(prop, o.Selection)

	case *schema.Array:
		prop.Type = typeArray
		item := &jsonschema.Schema{Type: typeString}
		applySelection(item, o.Selection)
		prop.Items = item

	case *schema.Function:
		prop.Type = typeArray
		prop.Items = &jsonschema.Schema{Type: typeString}

	case *schema.Help, *schema.Version:
		return nil

	default:
		return nil
	}

	return prop
}

// applySelection projects a [schema.Selection] onto the enum/pattern
// pair of a JSON Schema node.
func applySelection(prop *jsonschema.Schema, sel schema.Selection) {
	if sel.Regex != "" {
		prop.Pattern = sel.Regex

		return
	}

	if len(sel.Choices) == 0 {
		return
	}

	enum := make([]any, len(sel.Choices))
	for i, c := range sel.Choices {
		enum[i] = c.Name
	}

	prop.Enum = enum
}
