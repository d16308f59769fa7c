// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AQIDash Contributors

// Package content loads the text of the description page.
//
// The built-in text is embedded from default.yaml. An operator may supply
// a replacement file; it is validated against a JSON Schema generated from
// the Content struct before use.
package content

import (
	_ "embed"
	"os"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Content is the description page text.
type Content struct {
	Title    string    `yaml:"title" json:"title" jsonschema:"minLength=1,description=Page heading"`
	Overview string    `yaml:"overview" json:"overview" jsonschema:"minLength=1"`
	Sections []Section `yaml:"sections" json:"sections" jsonschema:"minItems=1"`
	FAQ      []FAQ     `yaml:"faq,omitempty" json:"faq,omitempty"`
	Purpose  string    `yaml:"purpose,omitempty" json:"purpose,omitempty"`
}

// Section is a numbered feature group.
type Section struct {
	Title string `yaml:"title" json:"title" jsonschema:"minLength=1"`
	Items []Item `yaml:"items" json:"items" jsonschema:"minItems=1"`
}

// Item is one bullet of a Section. Label, when present, is rendered bold.
type Item struct {
	Label string `yaml:"label,omitempty" json:"label,omitempty"`
	Text  string `yaml:"text" json:"text" jsonschema:"minLength=1"`
}

// FAQ is a question with its answer.
type FAQ struct {
	Question string `yaml:"question" json:"question" jsonschema:"minLength=1"`
	Answer   string `yaml:"answer" json:"answer" jsonschema:"minLength=1"`
}

// Default returns the built-in content.
func Default() (*Content, error) {
	return Parse(defaultYAML)
}

// Load returns the content in the YAML file at path, or the built-in
// content when path is empty.
func Load(path string) (*Content, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, oops.Code("CONTENT_READ_FAILED").With("path", path).Wrap(err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, oops.With("path", path).Wrap(err)
	}
	return c, nil
}

// Parse validates data against the content schema and decodes it.
func Parse(data []byte) (*Content, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, err
	}
	var c Content
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, oops.Code("CONTENT_INVALID").Wrap(err)
	}
	return &c, nil
}
