package validation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/helixml/linedit/domain/edit"
)

// JSON rejects content that is not a single well-formed JSON value.
type JSON struct{}

// NewJSON creates a JSON validator.
func NewJSON() JSON { return JSON{} }

// Validate implements edit.SyntaxValidator.
func (JSON) Validate(_ context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var v any
	err := json.Unmarshal([]byte(text), &v)
	if err == nil {
		return nil
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &edit.SyntaxError{Line: lineAt(text, syntaxErr.Offset), Message: syntaxErr.Error()}
	}
	return &edit.SyntaxError{Message: err.Error()}
}

// lineAt returns the 1-based line holding byte offset.
func lineAt(text string, offset int64) int {
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	return strings.Count(text[:offset], "\n") + 1
}

// YAML rejects content that does not parse as a YAML stream.
type YAML struct{}

// NewYAML creates a YAML validator.
func NewYAML() YAML { return YAML{} }

// Validate implements edit.SyntaxValidator.
func (YAML) Validate(_ context.Context, text string) error {
	dec := yaml.NewDecoder(strings.NewReader(text))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if err == nil {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &edit.SyntaxError{Message: strings.TrimPrefix(err.Error(), "yaml: ")}
	}
}
