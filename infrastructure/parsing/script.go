package parsing

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/helixml/linedit/domain/symbol"
)

// Script builds definition trees for brace-structured JavaScript-family
// source.
type Script struct {
	lang   *sitter.Language
	walker Walker
}

// NewJavaScript creates a parser for JavaScript and JSX.
func NewJavaScript() *Script {
	return &Script{lang: javascript.GetLanguage(), walker: NewWalker()}
}

// NewTypeScript creates a parser for TypeScript.
func NewTypeScript() *Script {
	return &Script{lang: typescript.GetLanguage(), walker: NewWalker()}
}

// NewTSX creates a parser for TypeScript with JSX.
func NewTSX() *Script {
	return &Script{lang: tsx.GetLanguage(), walker: NewWalker()}
}

// Language returns the tree-sitter grammar.
func (s *Script) Language() *sitter.Language {
	return s.lang
}

// Parse implements symbol.Parser.
func (s *Script) Parse(ctx context.Context, source []byte) (symbol.Tree, error) {
	tree, err := Clean(ctx, s.lang, source)
	if err != nil {
		return symbol.Tree{}, err
	}
	defer tree.Close()

	b := &scriptBuilder{walker: s.walker, source: source, ordinals: map[int]int{}}
	b.visit(tree.RootNode(), symbol.NoParent)
	return symbol.NewTree(b.defs), nil
}

type scriptBuilder struct {
	walker   Walker
	source   []byte
	defs     []symbol.Definition
	ordinals map[int]int
}

func isFunctionValue(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "arrow_function", "function", "function_expression", "generator_function":
		return true
	}
	return false
}

// statement returns the enclosing declaration or export statement so that
// "export const f = () => {}" starts on the export line.
func statement(node *sitter.Node) *sitter.Node {
	out := node
	for p := node.Parent(); p != nil; p = p.Parent() {
		switch p.Type() {
		case "lexical_declaration", "variable_declaration", "export_statement", "expression_statement":
			out = p
			continue
		}
		break
	}
	return out
}

func (b *scriptBuilder) add(name string, kind symbol.Kind, span *sitter.Node, parent int) int {
	ord := b.ordinals[parent]
	b.ordinals[parent] = ord + 1
	b.defs = append(b.defs, symbol.Definition{
		Name:    name,
		Kind:    kind,
		Line:    StartLine(span),
		EndLine: EndLine(span),
		Parent:  parent,
		Ordinal: ord,
	})
	return len(b.defs) - 1
}

func (b *scriptBuilder) visit(node *sitter.Node, parent int) {
	if node == nil {
		return
	}
	next := parent

	switch node.Type() {
	case "function_declaration", "generator_function_declaration":
		next = b.add(b.walker.FieldText(node, "name", b.source), symbol.KindFunction, statement(node), parent)
	case "class_declaration", "abstract_class_declaration":
		next = b.add(b.walker.FieldText(node, "name", b.source), symbol.KindClass, statement(node), parent)
	case "method_definition":
		next = b.add(b.walker.FieldText(node, "name", b.source), symbol.KindFunction, node, parent)
	case "variable_declarator":
		if value := node.ChildByFieldName("value"); isFunctionValue(value) {
			next = b.add(b.walker.FieldText(node, "name", b.source), symbol.KindFunction, statement(node), parent)
		}
	case "assignment_expression":
		if right := node.ChildByFieldName("right"); isFunctionValue(right) {
			left := node.ChildByFieldName("left")
			name := b.walker.NodeText(left, b.source)
			if left != nil && left.Type() == "member_expression" {
				name = b.walker.FieldText(left, "property", b.source)
			}
			next = b.add(name, symbol.KindFunction, statement(node), parent)
		}
	case "pair":
		if value := node.ChildByFieldName("value"); isFunctionValue(value) {
			next = b.add(trimQuotes(b.walker.FieldText(node, "key", b.source)), symbol.KindFunction, node, parent)
		}
	case "field_definition", "public_field_definition":
		value := node.ChildByFieldName("value")
		if isFunctionValue(value) {
			name := b.walker.FieldText(node, "property", b.source)
			if name == "" {
				name = b.walker.FieldText(node, "name", b.source)
			}
			next = b.add(name, symbol.KindFunction, node, parent)
		}
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		b.visit(node.NamedChild(i), next)
	}
}

func trimQuotes(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}
