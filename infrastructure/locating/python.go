// Package locating implements symbol boundary locators for indentation-
// and brace-structured source.
package locating

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/domain/symbol"
)

// PythonTree locates Python functions by walking a parsed definition tree.
// Preference: top-level function, then class method, then function nested
// in a function. The token scan end wins over the structural end.
// Decorators extend the start upward; a definition that is the first
// member of its class starts at the class header instead.
type PythonTree struct {
	parser symbol.Parser
}

// NewPythonTree creates a PythonTree locator.
func NewPythonTree(parser symbol.Parser) *PythonTree {
	return &PythonTree{parser: parser}
}

// Name implements symbol.Locator.
func (l *PythonTree) Name() string { return "python-tree" }

// Locate implements symbol.Locator.
func (l *PythonTree) Locate(ctx context.Context, source []byte, name string) (symbol.Range, error) {
	tree, err := l.parser.Parse(ctx, source)
	if err != nil {
		return symbol.Range{}, fmt.Errorf("parse python: %w", err)
	}

	def, ok := tree.BestFunction(name)
	if !ok {
		return symbol.Range{}, symbol.NotFound(name)
	}

	start := def.Line
	if def.DecoratorLine > 0 {
		start = def.DecoratorLine
	}
	parent, hasParent := tree.Parent(def)
	if hasParent && parent.Kind == symbol.KindClass && def.Ordinal == 0 {
		start = parent.Line
	}

	// The scan covers every header inside the source; the structural end
	// only applies when the parser reports a header line past the end.
	end := def.EndLine
	if scanned := PythonBlockEnd(edit.SplitLines(string(source)), def.Line); scanned > 0 {
		end = scanned
	}

	r := symbol.NewRange(start, end)
	if hasParent && parent.Kind == symbol.KindFunction {
		r = r.WithEnclosing(parent.Name)
	}
	return r, nil
}

var (
	pyDefLine   = regexp.MustCompile(`^([ \t]*)(?:async[ \t]+)?def[ \t]+([A-Za-z_]\w*)[ \t]*\(`)
	pyClassLine = regexp.MustCompile(`^([ \t]*)class[ \t]+([A-Za-z_]\w*)`)
)

// PythonScan locates Python functions lexically, for sources the parser
// rejects. It applies the same preference, decorator and class header
// rules as PythonTree using indentation alone.
type PythonScan struct{}

// NewPythonScan creates a PythonScan locator.
func NewPythonScan() *PythonScan {
	return &PythonScan{}
}

// Name implements symbol.Locator.
func (l *PythonScan) Name() string { return "python-scan" }

type pyCandidate struct {
	line      int
	placement symbol.Placement
	parent    pyHeader
}

type pyHeader struct {
	line   int
	name   string
	class  bool
	indent int
}

// Locate implements symbol.Locator.
func (l *PythonScan) Locate(_ context.Context, source []byte, name string) (symbol.Range, error) {
	lines := edit.SplitLines(string(source))

	var best *pyCandidate
	for _, c := range pyDefinitions(lines, name) {
		if best == nil || c.placement < best.placement {
			best = &c
		}
	}
	if best == nil {
		return symbol.Range{}, symbol.NotFound(name)
	}

	start := best.line
	for start > 1 && strings.HasPrefix(strings.TrimSpace(lines[start-2]), "@") {
		start--
	}
	if best.placement == symbol.PlacementMethod && firstMember(lines, best.parent.line, start) {
		start = best.parent.line
	}

	r := symbol.NewRange(start, PythonBlockEnd(lines, best.line))
	if best.placement == symbol.PlacementNested {
		r = r.WithEnclosing(best.parent.name)
	}
	return r, nil
}

// pyDefinitions returns every def named name in source order, classified
// by its innermost enclosing def or class. Only lines that start a logical
// line are considered, so text inside strings and brackets never opens or
// closes a block.
func pyDefinitions(lines []string, name string) []pyCandidate {
	var (
		st    pyState
		stack []pyHeader
		found []pyCandidate
	)
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")
		starts := st.logicalStart()
		st.consume(line)

		trimmed := strings.TrimSpace(line)
		if !starts || trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		indent := indentWidth(line)
		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		if m := pyDefLine.FindStringSubmatch(line); m != nil {
			if m[2] == name {
				c := pyCandidate{line: i + 1, placement: symbol.PlacementTopLevel}
				if len(stack) > 0 {
					c.parent = stack[len(stack)-1]
					c.placement = symbol.PlacementNested
					if c.parent.class {
						c.placement = symbol.PlacementMethod
					}
				}
				found = append(found, c)
			}
			stack = append(stack, pyHeader{line: i + 1, name: m[2], indent: indent})
			continue
		}
		if m := pyClassLine.FindStringSubmatch(line); m != nil {
			stack = append(stack, pyHeader{line: i + 1, name: m[2], class: true, indent: indent})
		}
	}
	return found
}

// firstMember reports whether nothing but blank lines and comments sits
// between the class header and line start.
func firstMember(lines []string, header, start int) bool {
	for n := header + 1; n < start; n++ {
		trimmed := strings.TrimSpace(lines[n-1])
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			return false
		}
	}
	return true
}
