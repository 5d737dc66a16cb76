package parsing

import (
	"context"
	"errors"
	"testing"

	"github.com/helixml/linedit/domain/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findDef(t *testing.T, tree symbol.Tree, name string) symbol.Definition {
	t.Helper()
	for _, d := range tree.Definitions() {
		if d.Name == name {
			return d
		}
	}
	t.Fatalf("definition %q not found", name)
	return symbol.Definition{}
}

const pythonSource = `import os


def top(a):
    return a


class Service:
    @staticmethod
    def build():
        return Service()

    def run(self):
        def inner():
            return 1
        return inner()
`

func TestPython_Parse(t *testing.T) {
	tree, err := NewPython().Parse(context.Background(), []byte(pythonSource))
	require.NoError(t, err)

	top := findDef(t, tree, "top")
	assert.Equal(t, symbol.KindFunction, top.Kind)
	assert.Equal(t, 4, top.Line)
	assert.Equal(t, 5, top.EndLine)
	assert.Equal(t, symbol.NoParent, top.Parent)

	class := findDef(t, tree, "Service")
	assert.Equal(t, symbol.KindClass, class.Kind)
	assert.Equal(t, 8, class.Line)

	build := findDef(t, tree, "build")
	assert.Equal(t, 9, build.DecoratorLine)
	assert.Equal(t, 10, build.Line)
	assert.Equal(t, 11, build.EndLine)
	assert.Equal(t, 0, build.Ordinal)
	assert.Equal(t, symbol.PlacementMethod, tree.Placement(build))

	run := findDef(t, tree, "run")
	assert.Equal(t, 1, run.Ordinal)
	assert.Equal(t, 16, run.EndLine)

	inner := findDef(t, tree, "inner")
	assert.Equal(t, symbol.PlacementNested, tree.Placement(inner))
	parent, ok := tree.Parent(inner)
	require.True(t, ok)
	assert.Equal(t, "run", parent.Name)
}

func TestPython_ParseError(t *testing.T) {
	_, err := NewPython().Parse(context.Background(), []byte("def broken(:\n    pass\n"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrParse))
}

const scriptSource = `import x from "y";

export function load(id) {
  return fetch(id);
}

const handler = async (event) => {
  return event;
};

class Store {
  save(item) {
    return item;
  }
}

module.exports.reset = function () {
  return null;
};
`

func TestJavaScript_Parse(t *testing.T) {
	tree, err := NewJavaScript().Parse(context.Background(), []byte(scriptSource))
	require.NoError(t, err)

	load := findDef(t, tree, "load")
	assert.Equal(t, 3, load.Line)
	assert.Equal(t, 5, load.EndLine)

	handler := findDef(t, tree, "handler")
	assert.Equal(t, 7, handler.Line)
	assert.Equal(t, 9, handler.EndLine)

	save := findDef(t, tree, "save")
	assert.Equal(t, 12, save.Line)
	assert.Equal(t, 14, save.EndLine)
	assert.Equal(t, symbol.PlacementMethod, tree.Placement(save))

	reset := findDef(t, tree, "reset")
	assert.Equal(t, 17, reset.Line)
	assert.Equal(t, 19, reset.EndLine)
}

func TestTypeScript_Parse(t *testing.T) {
	src := "export class Cache {\n  get(key: string): string {\n    return key;\n  }\n}\n"
	tree, err := NewTypeScript().Parse(context.Background(), []byte(src))
	require.NoError(t, err)

	get := findDef(t, tree, "get")
	assert.Equal(t, 2, get.Line)
	assert.Equal(t, 4, get.EndLine)
}
