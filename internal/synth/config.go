package synth

import (
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// sourcesSchema validates the shape of the sources file before it is
// trusted by the generators. Catching a zero-team source here is what
// keeps the round-robin team assignment total.
const sourcesSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["sources"],
  "properties": {
    "sources": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "teams", "data_types", "processes", "regions"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "teams": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
          "data_types": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
          "processes": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
          "regions": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
          "data_classification": {"type": "string"},
          "sla_minutes": {"type": "integer", "minimum": 1}
        }
      }
    },
    "contacts": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "email": {"type": "string"},
          "channel": {"type": "string"}
        }
      }
    }
  }
}`

// SourceConfig describes one upstream system and the axes the generator
// expands into pipelines.
type SourceConfig struct {
	Name               string   `yaml:"name"`
	Teams              []string `yaml:"teams"`
	DataTypes          []string `yaml:"data_types"`
	Processes          []string `yaml:"processes"`
	Regions            []string `yaml:"regions"`
	DataClassification string   `yaml:"data_classification"`
	SLAMinutes         int      `yaml:"sla_minutes"`
}

// ContactConfig is the escalation path for a team.
type ContactConfig struct {
	Email   string `yaml:"email"`
	Channel string `yaml:"channel"`
}

// Table is the full generator configuration: the source axes plus the
// per-team contact directory.
type Table struct {
	Sources  []SourceConfig           `yaml:"sources"`
	Contacts map[string]ContactConfig `yaml:"contacts"`
}

// LoadTable reads, schema-validates, and parses the sources file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}
	return ParseTable(data)
}

// ParseTable validates raw YAML against the sources schema and decodes it.
func ParseTable(data []byte) (*Table, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse sources yaml: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(sourcesSchema),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		msgs := ""
		for _, desc := range result.Errors() {
			msgs += "; " + desc.String()
		}
		return nil, fmt.Errorf("invalid sources config%s", msgs)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to decode sources config: %w", err)
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &table, nil
}

// Validate applies the constraints the JSON schema cannot express.
func (t *Table) Validate() error {
	if len(t.Sources) == 0 {
		return fmt.Errorf("sources config contains no sources")
	}
	seen := make(map[string]bool, len(t.Sources))
	for _, src := range t.Sources {
		if seen[src.Name] {
			return fmt.Errorf("duplicate source %q", src.Name)
		}
		seen[src.Name] = true
		if len(src.Teams) == 0 {
			return fmt.Errorf("source %q has no teams", src.Name)
		}
		if len(src.DataTypes) == 0 || len(src.Processes) == 0 || len(src.Regions) == 0 {
			return fmt.Errorf("source %q has an empty expansion axis", src.Name)
		}
	}
	return nil
}

// ContactFor returns the configured contact for a team, or a derived
// default so alerts always carry an escalation path.
func (t *Table) ContactFor(team string) ContactConfig {
	if c, ok := t.Contacts[team]; ok {
		return c
	}
	return ContactConfig{
		Email:   slugify(team) + "@mstic.example.com",
		Channel: "#" + slugify(team),
	}
}
