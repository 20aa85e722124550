package regions

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/labels-tracker/constants"
	"github.com/joseph-ayodele/labels-tracker/internal/common"
)

const layoutsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["layouts"],
  "additionalProperties": false,
  "properties": {
    "marker": {"type": "string", "minLength": 1},
    "layouts": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "regions"],
        "additionalProperties": false,
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "regions": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["name", "x", "y", "width", "height"],
              "additionalProperties": false,
              "properties": {
                "name": {"type": "string", "minLength": 1},
                "x": {"type": "number"},
                "y": {"type": "number"},
                "width": {"type": "number"},
                "height": {"type": "number"}
              }
            }
          }
        }
      }
    }
  }
}`

// File is the on-disk layouts document.
type File struct {
	Marker  string   `json:"marker,omitempty" yaml:"marker,omitempty"`
	Layouts []Layout `json:"layouts" yaml:"layouts"`
}

// LoadFile reads a YAML layouts file into a Catalog.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, common.NewAppError(common.CodeConfiguration, fmt.Sprintf("open layouts file %s", path), fmt.Errorf("%w: %w", common.ErrConfiguration, err))
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates a layouts document.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, common.ConfigurationError("read layouts: %v", err)
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, common.ConfigurationError("parse layouts yaml: %v", err)
	}
	if err := validateLayouts(raw); err != nil {
		return nil, err
	}

	var doc File
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, common.ConfigurationError("decode layouts: %v", err)
	}

	marker := constants.MarkerField
	if doc.Marker != "" {
		f, ok := constants.CanonicalField(doc.Marker)
		if !ok {
			return nil, common.ConfigurationError("unknown marker field %q", doc.Marker)
		}
		marker = f
	}
	for _, l := range doc.Layouts {
		for _, reg := range l.Regions {
			if _, ok := reg.Field(); !ok {
				return nil, common.ConfigurationError("layout %q: region %q does not name a known field", l.Name, reg.Name)
			}
		}
	}
	return NewCatalog(marker, doc.Layouts...)
}

// validateLayouts checks the decoded YAML against layoutsSchema. The YAML tree
// goes through JSON first so numbers and maps have the shapes the validator
// expects.
func validateLayouts(raw any) error {
	b, err := json.Marshal(raw)
	if err != nil {
		return common.ConfigurationError("layouts are not representable as JSON: %v", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return common.ConfigurationError("layouts are not representable as JSON: %v", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("layouts.json", strings.NewReader(layoutsSchema)); err != nil {
		return fmt.Errorf("add layouts schema: %w", err)
	}
	schema, err := compiler.Compile("layouts.json")
	if err != nil {
		return fmt.Errorf("compile layouts schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return common.ConfigurationError("layouts do not match schema: %v", err)
	}
	return nil
}

// Encode writes the catalog as a layouts document.
func Encode(w io.Writer, c *Catalog) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(File{Marker: string(c.Marker()), Layouts: c.Variants()})
}
