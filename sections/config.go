package sections

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas.json
var schemaDocument []byte

// loadSchemas splits the embedded document into one self-contained schema per
// section type, each carrying the shared $defs.
func loadSchemas() (map[Type]json.RawMessage, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(schemaDocument, &doc); err != nil {
		return nil, fmt.Errorf("decode section schemas: %w", err)
	}
	defs := doc["$defs"]
	out := make(map[Type]json.RawMessage, len(doc))
	for key, raw := range doc {
		if key == "$defs" {
			continue
		}
		var schema map[string]json.RawMessage
		if err := json.Unmarshal(raw, &schema); err != nil {
			return nil, fmt.Errorf("decode %s schema: %w", key, err)
		}
		schema["$schema"] = json.RawMessage(`"https://json-schema.org/draft/2020-12/schema"`)
		if defs != nil {
			schema["$defs"] = defs
		}
		encoded, err := json.Marshal(schema)
		if err != nil {
			return nil, err
		}
		out[Type(key)] = encoded
	}
	return out, nil
}

func compileSchema(t Type, raw json.RawMessage) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	compiler.AssertFormat = true
	name := string(t) + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", t, err)
	}
	return compiler.Compile(name)
}

// DecodeConfig validates raw against the schema of t and decodes it into the
// matching variant. Types without a registered variant decode to
// UnknownConfig so the payload is preserved untouched.
func DecodeConfig(t Type, raw json.RawMessage) (Config, error) {
	v, ok := registry[t]
	if !ok {
		return UnknownConfig{Kind: t, Raw: append(json.RawMessage(nil), raw...)}, nil
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, &ConfigError{Type: t, Issues: []Issue{{Location: "#", Message: "config is required"}}}
	}
	if err := validateRaw(t, v.schema, raw); err != nil {
		return nil, err
	}
	cfg, err := v.decode(raw)
	if err != nil {
		return nil, &ConfigError{Type: t, Issues: []Issue{{Location: "#", Message: err.Error()}}}
	}
	return cfg, nil
}

// EncodeConfig marshals cfg after checking it against its own schema.
func EncodeConfig(cfg Config) (json.RawMessage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	if v, ok := registry[cfg.SectionType()]; ok {
		if err := validateRaw(cfg.SectionType(), v.schema, raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func validateRaw(t Type, schema *jsonschema.Schema, raw json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return &ConfigError{Type: t, Issues: []Issue{{Location: "#", Message: "malformed JSON: " + err.Error()}}}
	}
	if err := schema.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return &ConfigError{Type: t, Issues: collectIssues(verr)}
		}
		return &ConfigError{Type: t, Issues: []Issue{{Location: "#", Message: err.Error()}}}
	}
	return nil
}

func collectIssues(root *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			loc := node.InstanceLocation
			if loc == "" {
				loc = "#"
			} else {
				loc = "#" + loc
			}
			issues = append(issues, Issue{Location: loc, Message: node.Message})
			return
		}
		for _, c := range node.Causes {
			walk(c)
		}
	}
	walk(root)
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Location < issues[j].Location })
	return issues
}

func strictDecode[C Config](raw []byte) (Config, error) {
	var cfg C
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
