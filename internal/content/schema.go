// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

package content

import (
	"encoding/json"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"
)

// SchemaID is the $id of the generated schema.
const SchemaID = "https://aqidash.dev/schemas/content.schema.json"

var (
	compileOnce    sync.Once
	compiledSchema *jschema.Schema
	compileErr     error
)

// GenerateSchema generates a JSON Schema from the Content struct.
func GenerateSchema() ([]byte, error) {
	r := jsonschema.Reflector{DoNotReference: true}
	schema := r.Reflect(&Content{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "AQIDash Description Content"
	schema.Description = "Schema for description page content files"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("CONTENT_SCHEMA_FAILED").With("operation", "marshal schema").Wrap(err)
	}
	return data, nil
}

// ValidateSchema validates YAML data against the content schema.
func ValidateSchema(data []byte) error {
	if len(data) == 0 {
		return oops.Code("CONTENT_INVALID").Errorf("content is empty")
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("CONTENT_INVALID").With("operation", "parse yaml").Wrap(err)
	}

	sch, err := schema()
	if err != nil {
		return err
	}
	if err := sch.Validate(toJSON(doc)); err != nil {
		return oops.Code("CONTENT_INVALID").With("operation", "validate").Wrap(err)
	}
	return nil
}

func schema() (*jschema.Schema, error) {
	compileOnce.Do(func() {
		compiledSchema, compileErr = compileSchema()
	})
	return compiledSchema, compileErr
}

func compileSchema() (*jschema.Schema, error) {
	raw, err := GenerateSchema()
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, oops.Code("CONTENT_SCHEMA_FAILED").With("operation", "parse schema").Wrap(err)
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("content.schema.json", doc); err != nil {
		return nil, oops.Code("CONTENT_SCHEMA_FAILED").With("operation", "add schema").Wrap(err)
	}
	sch, err := c.Compile("content.schema.json")
	if err != nil {
		return nil, oops.Code("CONTENT_SCHEMA_FAILED").With("operation", "compile schema").Wrap(err)
	}
	return sch, nil
}

// toJSON round-trips a YAML document through encoding/json so scalars
// arrive in the types the validator expects.
func toJSON(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}
