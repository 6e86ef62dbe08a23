package configsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	jsonschemago "github.com/google/jsonschema-go/jsonschema"
	"github.com/joho/godotenv"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidSource wraps a shape-check failure against a resolved config
// file, so a malformed file fails loudly rather than being treated as
// "value absent" and silently falling through to the next source.
var ErrInvalidSource = errors.New("invalid config source")

// EnvLookup resolves a bare (non-"file://") source entry. Its default,
// os.LookupEnv, is overridable for tests.
type EnvLookup func(name string) (string, bool)

// Resolver resolves an option's ordered sources list against the
// environment and on-disk config files.
type Resolver struct {
	env         EnvLookup
	shapeSchema *jsonschemago.Schema
}

// Opt configures a Resolver.
type Opt func(*Resolver)

// WithEnvLookup overrides the environment lookup function (for tests).
func WithEnvLookup(lookup EnvLookup) Opt {
	return func(r *Resolver) { r.env = lookup }
}

// WithShapeCheck validates every resolved YAML (.yaml/.yml) document
// against s (typically produced by [forgecli.dev/argspec/describe].Schema)
// before extracting a value from it. Files read through the dotenv lookup
// (every other extension) are not shape-checked.
func WithShapeCheck(s *jsonschemago.Schema) Opt {
	return func(r *Resolver) { r.shapeSchema = s }
}

// New builds a Resolver.
func New(opts ...Opt) *Resolver {
	r := &Resolver{env: os.LookupEnv}

	for _, o := range opts {
		o(r)
	}

	return r
}

// Resolve walks sources in order and returns the first value found.
// paramName is the option's preferred display name, used both as the
// default YAML dotted-key and, upper-snake-cased, as the dotenv key.
// A missing environment variable or file is not an error: it is simply
// not found, and resolution proceeds to the next source.
func (r *Resolver) Resolve(ctx context.Context, paramName string, sources []string) (string, bool, error) {
	for _, src := range sources {
		if rest, ok := strings.CutPrefix(src, "file://"); ok {
			val, found, err := r.resolveFile(ctx, rest, paramName)
			if err != nil {
				return "", false, err
			}

			if found {
				return val, true, nil
			}

			continue
		}

		if v, ok := r.env(src); ok {
			return v, true, nil
		}
	}

	return "", false, nil
}

func (r *Resolver) resolveFile(ctx context.Context, path, paramName string) (string, bool, error) {
	filePath, fragment, _ := strings.Cut(path, "#")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}

		return "", false, fmt.Errorf("%w: read %q: %w", ErrInvalidSource, filePath, err)
	}

	switch ext := filepath.Ext(filePath); ext {
	case ".yaml", ".yml":
		key := fragment
		if key == "" {
			key = paramName
		}

		return r.yamlLookup(data, key)

	default:
		key := fragment
		if key == "" {
			key = upperSnake(paramName)
		}

		return dotenvLookup(data, key)
	}
}

// yamlLookup decodes data as a YAML document, optionally shape-checks it,
// then walks dotted into it, one mapping level per key segment, to find
// key's scalar value.
func (r *Resolver) yamlLookup(data []byte, key string) (string, bool, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	if r.shapeSchema != nil {
		if err := r.checkShape(doc); err != nil {
			return "", false, err
		}
	}

	node := doc

	for _, segment := range strings.Split(key, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return "", false, nil
		}

		next, ok := m[segment]
		if !ok {
			return "", false, nil
		}

		node = next
	}

	switch v := node.(type) {
	case nil:
		return "", false, nil
	case string:
		return v, true, nil
	default:
		return fmt.Sprint(v), true, nil
	}
}

// checkShape validates a decoded document against the resolver's JSON
// Schema via santhosh-tekuri/jsonschema, converting the google/jsonschema-go
// schema to the map-based resource form that compiler expects.
func (r *Resolver) checkShape(doc any) error {
	raw, err := json.Marshal(r.shapeSchema)
	if err != nil {
		return fmt.Errorf("%w: marshal shape schema: %w", ErrInvalidSource, err)
	}

	var resource any
	if err := json.Unmarshal(raw, &resource); err != nil {
		return fmt.Errorf("%w: decode shape schema: %w", ErrInvalidSource, err)
	}

	compiler := jsonschema.NewCompiler()

	const resourceID = "argspec://config-source"

	if err := compiler.AddResource(resourceID, resource); err != nil {
		return fmt.Errorf("%w: load shape schema: %w", ErrInvalidSource, err)
	}

	compiled, err := compiler.Compile(resourceID)
	if err != nil {
		return fmt.Errorf("%w: compile shape schema: %w", ErrInvalidSource, err)
	}

	// json.Marshal+Unmarshal through a generic any normalizes the decoded
	// YAML document's map/slice types the way the schema validator expects.
	normalized, err := normalizeForValidation(doc)
	if err != nil {
		return fmt.Errorf("%w: normalize document: %w", ErrInvalidSource, err)
	}

	if err := compiled.Validate(normalized); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	return nil
}

func normalizeForValidation(doc any) (any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}

	return out, nil
}

// dotenvLookup parses data as a dotenv file and returns key's value.
func dotenvLookup(data []byte, key string) (string, bool, error) {
	m, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrInvalidSource, err)
	}

	v, ok := m[key]

	return v, ok, nil
}

// upperSnake converts a preferred option name like "--out-dir" into the
// conventional shell environment-variable form "OUT_DIR".
func upperSnake(name string) string {
	name = strings.TrimLeft(name, "-")
	name = strings.ReplaceAll(name, "-", "_")

	return strings.ToUpper(name)
}
