package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a catalog document.
type Format string

const (
	FormatAuto Format = ""
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrInvalidCatalog wraps every schema or semantic problem found while loading.
var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed catalog.schema.json
var catalogSchema string

//go:embed default_catalog.yaml
var defaultCatalog []byte

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func schema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiledSchema, schemaErr = jsonschema.CompileString("catalog.schema.json", catalogSchema)
	})
	return compiledSchema, schemaErr
}

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatAuto
}

// LoadFile reads and parses a catalog file. The file name is recorded on the result.
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	s, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	s.FileName = filepath.Base(path)
	return s, nil
}

// Default returns the built-in catalog.
func Default() (*Scenario, error) {
	s, err := Parse(defaultCatalog, FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("built-in catalog: %w", err)
	}
	s.FileName = "default"
	return s, nil
}

// Parse decodes a catalog document. YAML is normalized to JSON, the document
// is checked against the catalog schema, decoded, and validated.
func Parse(data []byte, format Format) (*Scenario, error) {
	if format == FormatAuto {
		format = sniffFormat(data)
	}

	doc, err := normalize(data, format)
	if err != nil {
		return nil, err
	}

	sch, err := schema()
	if err != nil {
		return nil, fmt.Errorf("failed to compile catalog schema: %w", err)
	}
	var generic any
	if err := json.Unmarshal(doc, &generic); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := sch.Validate(generic); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	var s Scenario
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	if err := Validate(&s); err != nil {
		return nil, err
	}
	s.index()
	return &s, nil
}

func sniffFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatJSON
	}
	return FormatYAML
}

// normalize returns the document as JSON.
func normalize(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		if !json.Valid(data) {
			return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidCatalog)
		}
		return data, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("failed to parse YAML catalog: %w", err)
		}
		out, err := json.Marshal(jsonCompatible(v))
		if err != nil {
			return nil, fmt.Errorf("failed to convert YAML catalog: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported catalog format %q", format)
}

// jsonCompatible rewrites YAML maps with non-string keys so encoding/json accepts them.
func jsonCompatible(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, sub := range t {
			t[k] = jsonCompatible(sub)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, sub := range t {
			out[fmt.Sprint(k)] = jsonCompatible(sub)
		}
		return out
	case []any:
		for i, sub := range t {
			t[i] = jsonCompatible(sub)
		}
		return t
	}
	return v
}
