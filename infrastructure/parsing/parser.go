// Package parsing provides tree-sitter backed structural parsers.
package parsing

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// ErrParse indicates the source did not parse cleanly.
var ErrParse = errors.New("parse error")

// Syntax parses source with a tree-sitter language. The returned tree must
// be closed by the caller.
func Syntax(ctx context.Context, lang *sitter.Language, source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: no tree produced", ErrParse)
	}
	return tree, nil
}

// Clean parses source and fails with ErrParse when the tree contains
// error or missing nodes.
func Clean(ctx context.Context, lang *sitter.Language, source []byte) (*sitter.Tree, error) {
	tree, err := Syntax(ctx, lang, source)
	if err != nil {
		return nil, err
	}
	root := tree.RootNode()
	if root.HasError() {
		line := 0
		if bad := NewWalker().FirstError(root); bad != nil {
			line = StartLine(bad)
		}
		tree.Close()
		return nil, fmt.Errorf("%w at line %d", ErrParse, line)
	}
	return tree, nil
}

// Check parses source and returns the 1-based line of the first syntax
// error, or 0 when the source is clean.
func Check(ctx context.Context, lang *sitter.Language, source []byte) (int, error) {
	tree, err := Syntax(ctx, lang, source)
	if err != nil {
		return 0, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return 0, nil
	}
	line := 1
	if bad := NewWalker().FirstError(root); bad != nil {
		line = StartLine(bad)
	}
	return line, nil
}
