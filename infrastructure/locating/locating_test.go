package locating

import (
	"context"
	"errors"
	"testing"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/domain/symbol"
	"github.com/helixml/linedit/infrastructure/parsing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pythonSource = `import functools


def helper(x):
    if x:
        return 1
    # trailing comment

    return 2


class Service:
    @functools.cache
    def build(self):
        return 1

    @staticmethod
    @functools.wraps(helper)
    def make():
        text = """
        not a block end
        """
        return text

    def run(self):
        def inner(y):
            return (y +
                    1)
        return inner(2)


def run(self):
    pass
`

type want struct {
	start, end int
	nested     bool
	enclosing  string
}

var pythonCases = map[string]want{
	"helper": {start: 4, end: 9},
	// decorated first member of a class anchors at the class header
	"build": {start: 12, end: 15},
	"make":  {start: 17, end: 23},
	"inner": {start: 26, end: 28, nested: true, enclosing: "run"},
	// a top-level function wins over a method of the same name
	"run": {start: 32, end: 33},
}

func assertRange(t *testing.T, w want, r symbol.Range) {
	t.Helper()
	assert.Equal(t, w.start, r.Start(), "start")
	assert.Equal(t, w.end, r.End(), "end")
	assert.Equal(t, w.nested, r.Nested(), "nested")
	assert.Equal(t, w.enclosing, r.Enclosing(), "enclosing")
}

func TestPythonTree_Locate(t *testing.T) {
	l := NewPythonTree(parsing.NewPython())
	for name, w := range pythonCases {
		t.Run(name, func(t *testing.T) {
			r, err := l.Locate(context.Background(), []byte(pythonSource), name)
			require.NoError(t, err)
			assertRange(t, w, r)
		})
	}
}

func TestPythonScan_Locate(t *testing.T) {
	l := NewPythonScan()
	for name, w := range pythonCases {
		t.Run(name, func(t *testing.T) {
			r, err := l.Locate(context.Background(), []byte(pythonSource), name)
			require.NoError(t, err)
			assertRange(t, w, r)
		})
	}
}

func TestPythonLocators_NotFound(t *testing.T) {
	for _, l := range []symbol.Locator{NewPythonTree(parsing.NewPython()), NewPythonScan()} {
		t.Run(l.Name(), func(t *testing.T) {
			_, err := l.Locate(context.Background(), []byte(pythonSource), "missing")
			require.Error(t, err)
			assert.True(t, errors.Is(err, edit.ErrNotFound))
		})
	}
}

// Column-0 text inside an earlier member's docstring must not end the class.
const docstringSource = `class Service:
    def help(self):
        """Show help.

Usage: service.run()
"""
        return None

    def run(self):
        return 1


def run():
    return 2
`

func TestPythonScan_StringsDoNotCloseBlocks(t *testing.T) {
	l := NewPythonScan()

	r, err := l.Locate(context.Background(), []byte(docstringSource), "run")
	require.NoError(t, err)
	assertRange(t, want{start: 13, end: 14}, r)

	r, err = l.Locate(context.Background(), []byte(docstringSource), "help")
	require.NoError(t, err)
	assertRange(t, want{start: 1, end: 7}, r)
}

func TestPythonScan_BracketContinuation(t *testing.T) {
	src := "class Totals:\n" +
		"    def first(self):\n" +
		"        return 0\n" +
		"\n" +
		"    def total(self, a, b):\n" +
		"        def add():\n" +
		"            return (a +\n" +
		"    b)\n" +
		"        return add()\n" +
		"\n" +
		"\n" +
		"def add():\n" +
		"    return 0\n"
	l := NewPythonScan()

	r, err := l.Locate(context.Background(), []byte(src), "total")
	require.NoError(t, err)
	assertRange(t, want{start: 5, end: 9}, r)

	// the nested add loses to the top-level one
	r, err = l.Locate(context.Background(), []byte(src), "add")
	require.NoError(t, err)
	assertRange(t, want{start: 12, end: 13}, r)
}

func TestPythonTree_ParseFailure(t *testing.T) {
	_, err := NewPythonTree(parsing.NewPython()).Locate(context.Background(), []byte("def f(:\n"), "f")
	require.Error(t, err)
	assert.False(t, errors.Is(err, edit.ErrNotFound))
}

func TestPythonBlockEnd(t *testing.T) {
	lines := edit.SplitLines("def f(a,\n      b):\n    x = [\n1,\n]\n    y = 'a # b'  # c\n\ndef g():\n    pass\n")
	assert.Equal(t, 6, PythonBlockEnd(lines, 1))
	assert.Equal(t, 9, PythonBlockEnd(lines, 8))
	assert.Equal(t, 0, PythonBlockEnd(lines, 42))

	oneLiner := edit.SplitLines("def f(): return 1\nx = 2\n")
	assert.Equal(t, 1, PythonBlockEnd(oneLiner, 1))

	continued := edit.SplitLines("def f():\n    return 1 + \\\n2\nz = 3\n")
	assert.Equal(t, 3, PythonBlockEnd(continued, 1))
}

const scriptSource = "// helpers\n" +
	"export function render(name) {\n" +
	"  const open = \"{\";\n" +
	"  const tpl = `value: ${name} }`;\n" +
	"  return open + tpl;\n" +
	"}\n" +
	"\n" +
	"const double = (n) => {\n" +
	"  return n * 2;\n" +
	"};\n" +
	"\n" +
	"const inc = x => x + 1\n" +
	"\n" +
	"const api = {\n" +
	"  fetch(id) {\n" +
	"    return id;\n" +
	"  },\n" +
	"  remove: async function (id) {\n" +
	"    return null;\n" +
	"  },\n" +
	"};\n" +
	"\n" +
	"useEffect(() => {\n" +
	"  const s = '}';\n" +
	"  return s;\n" +
	"}, []);\n"

func TestBraceScan_Locate(t *testing.T) {
	cases := map[string]want{
		// braces inside string literals do not move the depth counter
		"render":    {start: 2, end: 6},
		"double":    {start: 8, end: 10},
		"inc":       {start: 12, end: 12},
		"fetch":     {start: 15, end: 17},
		"remove":    {start: 18, end: 20},
		"useEffect": {start: 23, end: 26},
	}
	l := NewBraceScan()
	for name, w := range cases {
		t.Run(name, func(t *testing.T) {
			r, err := l.Locate(context.Background(), []byte(scriptSource), name)
			require.NoError(t, err)
			assertRange(t, w, r)
		})
	}

	_, err := l.Locate(context.Background(), []byte(scriptSource), "missing")
	assert.True(t, errors.Is(err, edit.ErrNotFound))
}

func TestBraceScan_Subscription(t *testing.T) {
	src := "bus.on('saved', function (e) {\n  log(e);\n});\n"
	r, err := NewBraceScan().Locate(context.Background(), []byte(src), "saved")
	require.NoError(t, err)
	assert.Equal(t, 1, r.Start())
	assert.Equal(t, 3, r.End())
}

func TestBraceScan_CallIsNotDeclaration(t *testing.T) {
	src := "compute(1)\n" +
		"function other() {\n" +
		"  return 0;\n" +
		"}\n" +
		"class A {\n" +
		"  compute(x) {\n" +
		"    return x;\n" +
		"  }\n" +
		"}\n"

	r, err := NewBraceScan().Locate(context.Background(), []byte(src), "compute")
	require.NoError(t, err)
	assert.Equal(t, 6, r.Start())
	assert.Equal(t, 8, r.End())
}

func TestDeclarationBody(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ok   bool
		at   int
	}{
		{name: "plain", src: "f(a) {}", ok: true, at: 5},
		{name: "brace on next line", src: "f(a)\n{}", ok: true, at: 5},
		{name: "return type", src: "f(a): Promise<void> {}", ok: true, at: 20},
		{name: "type parameters", src: "f<T>(a: T) {}", ok: true, at: 11},
		{name: "default with parens", src: "f(a = g()) {}", ok: true, at: 11},
		{name: "call statement", src: "f(1)\nother() {}", ok: false},
		{name: "call with semicolon", src: "f(1);\n{}", ok: false},
		{name: "no parameters", src: "f = 1", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at, ok := DeclarationBody(tt.src, 1)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.at, at)
				assert.Equal(t, byte('{'), tt.src[at])
			}
		})
	}
}

func TestBraceScan_Unbalanced(t *testing.T) {
	_, err := NewBraceScan().Locate(context.Background(), []byte("function f() {\n  return 1;\n"), "f")
	require.Error(t, err)
	assert.False(t, errors.Is(err, edit.ErrNotFound))
}

func TestScriptTree_Locate(t *testing.T) {
	l := NewScriptTree(parsing.NewJavaScript())

	r, err := l.Locate(context.Background(), []byte(scriptSource), "double")
	require.NoError(t, err)
	assert.Equal(t, 8, r.Start())
	assert.Equal(t, 10, r.End())

	r, err = l.Locate(context.Background(), []byte(scriptSource), "fetch")
	require.NoError(t, err)
	assert.Equal(t, 15, r.Start())
	assert.Equal(t, 17, r.End())

	_, err = l.Locate(context.Background(), []byte(scriptSource), "useEffect")
	assert.True(t, errors.Is(err, edit.ErrNotFound))
}

func TestMatchingBrace(t *testing.T) {
	src := `{ "}" '{' /* } */ // }
 }`
	end, ok := MatchingBrace(src, 0)
	require.True(t, ok)
	assert.Equal(t, len(src)-1, end)

	_, ok = MatchingBrace("x", 0)
	assert.False(t, ok)

	escaped := `{ "\"}" }`
	end, ok = MatchingBrace(escaped, 0)
	require.True(t, ok)
	assert.Equal(t, len(escaped)-1, end)
}

func TestLineSpan(t *testing.T) {
	src := "a\nbb\nccc\n"
	start, end := LineSpan(src, 2, 6)
	assert.Equal(t, 2, start)
	assert.Equal(t, 3, end)
}
