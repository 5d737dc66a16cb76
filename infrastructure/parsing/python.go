package parsing

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/helixml/linedit/domain/symbol"
)

// Python builds definition trees for Python source.
type Python struct {
	walker Walker
}

// NewPython creates a Python parser.
func NewPython() *Python {
	return &Python{walker: NewWalker()}
}

// Language returns the tree-sitter grammar.
func (p *Python) Language() *sitter.Language {
	return python.GetLanguage()
}

// Parse implements symbol.Parser. Source with syntax errors fails with
// ErrParse so that callers can fall back to a lexical scan.
func (p *Python) Parse(ctx context.Context, source []byte) (symbol.Tree, error) {
	tree, err := Clean(ctx, p.Language(), source)
	if err != nil {
		return symbol.Tree{}, err
	}
	defer tree.Close()

	var defs []symbol.Definition
	p.collect(tree.RootNode(), symbol.NoParent, source, &defs)
	return symbol.NewTree(defs), nil
}

// collect visits the statements of a module or block.
func (p *Python) collect(container *sitter.Node, parent int, source []byte, defs *[]symbol.Definition) {
	ordinal := 0
	for i := 0; i < int(container.NamedChildCount()); i++ {
		child := container.NamedChild(i)
		if child == nil || p.walker.IsComment(child) {
			continue
		}
		p.visit(child, parent, ordinal, source, defs)
		ordinal++
	}
}

func (p *Python) visit(node *sitter.Node, parent, ordinal int, source []byte, defs *[]symbol.Definition) {
	def := node
	decoratorLine := 0
	if node.Type() == "decorated_definition" {
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if c := node.NamedChild(i); c != nil && c.Type() == "decorator" {
				decoratorLine = StartLine(c)
				break
			}
		}
		def = node.ChildByFieldName("definition")
		if def == nil {
			return
		}
	}

	var kind symbol.Kind
	switch def.Type() {
	case "function_definition":
		kind = symbol.KindFunction
	case "class_definition":
		kind = symbol.KindClass
	default:
		return
	}

	body := def.ChildByFieldName("body")
	*defs = append(*defs, symbol.Definition{
		Name:          p.walker.FieldText(def, "name", source),
		Kind:          kind,
		Line:          StartLine(def),
		EndLine:       p.bodyEnd(def, body),
		DecoratorLine: decoratorLine,
		Parent:        parent,
		Ordinal:       ordinal,
	})

	if body != nil {
		p.collect(body, len(*defs)-1, source, defs)
	}
}

// bodyEnd is the last line of any statement inside body, ignoring
// trailing comments.
func (p *Python) bodyEnd(def, body *sitter.Node) int {
	end := StartLine(def)
	if body == nil {
		return end
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		if c == nil || p.walker.IsComment(c) {
			continue
		}
		end = max(end, EndLine(c))
	}
	return end
}
