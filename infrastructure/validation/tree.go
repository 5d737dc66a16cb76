// Package validation provides syntax validators for staged file content.
package validation

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/infrastructure/parsing"
)

// TreeSitter rejects content whose tree-sitter parse contains error or
// missing nodes.
type TreeSitter struct {
	name string
	lang *sitter.Language
}

// NewTreeSitter creates a validator for a tree-sitter grammar.
func NewTreeSitter(name string, lang *sitter.Language) *TreeSitter {
	return &TreeSitter{name: name, lang: lang}
}

// NewPythonSyntax validates Python.
func NewPythonSyntax() *TreeSitter { return NewTreeSitter("python", python.GetLanguage()) }

// NewJavaScriptSyntax validates JavaScript and JSX.
func NewJavaScriptSyntax() *TreeSitter { return NewTreeSitter("javascript", javascript.GetLanguage()) }

// NewTypeScriptSyntax validates TypeScript.
func NewTypeScriptSyntax() *TreeSitter { return NewTreeSitter("typescript", typescript.GetLanguage()) }

// NewTSXSyntax validates TypeScript with JSX.
func NewTSXSyntax() *TreeSitter { return NewTreeSitter("tsx", tsx.GetLanguage()) }

// Name returns the grammar name.
func (v *TreeSitter) Name() string { return v.name }

// Validate implements edit.SyntaxValidator.
func (v *TreeSitter) Validate(ctx context.Context, text string) error {
	line, err := parsing.Check(ctx, v.lang, []byte(text))
	if err != nil {
		return fmt.Errorf("%s syntax check: %w", v.name, err)
	}
	if line > 0 {
		return &edit.SyntaxError{Line: line, Message: v.name + " syntax error"}
	}
	return nil
}
