package locating

import (
	"context"
	"fmt"
	"regexp"

	"github.com/helixml/linedit/domain/symbol"
)

// ScriptTree locates functions in brace-structured source from a parsed
// definition tree, with the same placement preference as PythonTree.
type ScriptTree struct {
	parser symbol.Parser
}

// NewScriptTree creates a ScriptTree locator.
func NewScriptTree(parser symbol.Parser) *ScriptTree {
	return &ScriptTree{parser: parser}
}

// Name implements symbol.Locator.
func (l *ScriptTree) Name() string { return "script-tree" }

// Locate implements symbol.Locator.
func (l *ScriptTree) Locate(ctx context.Context, source []byte, name string) (symbol.Range, error) {
	tree, err := l.parser.Parse(ctx, source)
	if err != nil {
		return symbol.Range{}, fmt.Errorf("parse script: %w", err)
	}
	def, ok := tree.BestFunction(name)
	if !ok {
		return symbol.Range{}, symbol.NotFound(name)
	}
	r := symbol.NewRange(def.Line, def.EndLine)
	if parent, ok := tree.Parent(def); ok && parent.Kind == symbol.KindFunction {
		r = r.WithEnclosing(parent.Name)
	}
	return r, nil
}

// matcher finds candidate definitions in raw text. Group nameGroup
// captures the symbol name; the body search starts at group bodyGroup, or
// right after the name when bodyGroup is 0.
type matcher struct {
	kind      string
	re        *regexp.Regexp
	nameGroup int
	bodyGroup int
	// needsBody rejects candidates without a braced body.
	needsBody bool
	// declaration requires the body to follow the parameter list.
	declaration bool
}

const functionValue = `((?:async[ \t]+)?(?:function\b|\([^)\n]*\)[ \t]*(?::[^=\n]+)?=>|[A-Za-z_$][\w$]*[ \t]*=>))`

// scriptMatchers are tried in order.
var scriptMatchers = []matcher{
	{
		kind:        "function",
		re:          regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+(?:default[ \t]+)?)?(?:async[ \t]+)?function[ \t]*\*?[ \t]*([A-Za-z_$][\w$]*)`),
		nameGroup:   1,
		needsBody:   true,
		declaration: true,
	},
	{
		kind:      "assignment",
		re:        regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:(?:const|let|var)[ \t]+)?(?:[\w$]+\.)*([A-Za-z_$][\w$]*)[ \t]*(?::[^=\n]+)?=[ \t]*` + functionValue),
		nameGroup: 1,
		bodyGroup: 2,
	},
	{
		kind:      "property",
		re:        regexp.MustCompile(`(?m)^[ \t]*['"]?([A-Za-z_$][\w$]*)['"]?[ \t]*:[ \t]*` + functionValue),
		nameGroup: 1,
		bodyGroup: 2,
	},
	{
		kind:        "method",
		re:          regexp.MustCompile(`(?m)^[ \t]*(?:(?:static|async|get|set|public|private|protected|override|readonly)[ \t]+)*\*?[ \t]*([A-Za-z_$][\w$]*)[ \t]*(?:<[^>\n]*>)?[ \t]*\(`),
		nameGroup:   1,
		needsBody:   true,
		declaration: true,
	},
	{
		kind:      "hook",
		re:        regexp.MustCompile(`\b([A-Za-z_$][\w$]*)[ \t]*\([ \t]*(?:(?:'[^'\n]*'|"[^"\n]*"|[\w$.\[\]]+)[ \t]*,[ \t]*)?` + functionValue),
		nameGroup: 1,
		bodyGroup: 2,
		needsBody: true,
	},
	{
		kind:      "subscription",
		re:        regexp.MustCompile(`\b[\w$.]+[ \t]*\([ \t]*['"]([^'"\n]+)['"][ \t]*,[ \t]*` + functionValue),
		nameGroup: 1,
		bodyGroup: 2,
		needsBody: true,
	},
}

// BraceScan locates functions in brace-structured source with ordered
// pattern matchers and string-aware brace counting.
type BraceScan struct{}

// NewBraceScan creates a BraceScan locator.
func NewBraceScan() *BraceScan {
	return &BraceScan{}
}

// Name implements symbol.Locator.
func (l *BraceScan) Name() string { return "brace-scan" }

// Locate implements symbol.Locator.
func (l *BraceScan) Locate(_ context.Context, source []byte, name string) (symbol.Range, error) {
	src := string(source)
	for _, m := range scriptMatchers {
		for _, loc := range m.re.FindAllStringSubmatchIndex(src, -1) {
			if src[loc[2*m.nameGroup]:loc[2*m.nameGroup+1]] != name {
				continue
			}
			from := loc[2*m.nameGroup+1]
			if m.bodyGroup > 0 {
				from = loc[2*m.bodyGroup]
			}

			var (
				open   int
				braced bool
			)
			if m.declaration {
				open, braced = DeclarationBody(src, from)
			} else {
				open, braced = BodyStart(src, from)
			}
			if !braced && m.needsBody {
				continue
			}
			end := open
			if braced {
				closing, ok := MatchingBrace(src, open)
				if !ok {
					return symbol.Range{}, fmt.Errorf("unbalanced braces after %s %q", m.kind, name)
				}
				end = closing
			}

			start, last := LineSpan(src, firstNonSpace(src, loc[0]), end)
			return symbol.NewRange(start, last), nil
		}
	}
	return symbol.Range{}, symbol.NotFound(name)
}

func firstNonSpace(src string, i int) int {
	for i < len(src) && (src[i] == ' ' || src[i] == '\t' || src[i] == '\n' || src[i] == '\r') {
		i++
	}
	return i
}
