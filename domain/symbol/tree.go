package symbol

// Kind classifies a Definition.
type Kind int

// Kind values.
const (
	KindFunction Kind = iota
	KindClass
)

// String returns the kind name.
func (k Kind) String() string {
	if k == KindClass {
		return "class"
	}
	return "function"
}

// NoParent marks a definition at module level.
const NoParent = -1

// Definition is one function or class found by a Parser. Lines are
// 1-based.
type Definition struct {
	Name string
	Kind Kind
	// Line is the line holding the definition keyword.
	Line int
	// EndLine is the last line of the definition's body.
	EndLine int
	// DecoratorLine is the first decorator line, or 0.
	DecoratorLine int
	// Parent is the index of the enclosing definition, or NoParent.
	Parent int
	// Ordinal is the position among the parent body's statements.
	Ordinal int
}

// Tree is the flat list of definitions in source order.
type Tree struct {
	defs []Definition
}

// NewTree creates a Tree. Parent indices refer to positions in defs.
func NewTree(defs []Definition) Tree {
	out := make([]Definition, len(defs))
	copy(out, defs)
	return Tree{defs: out}
}

// Definitions returns a copy of all definitions.
func (t Tree) Definitions() []Definition {
	out := make([]Definition, len(t.defs))
	copy(out, t.defs)
	return out
}

// Parent returns the enclosing definition of d.
func (t Tree) Parent(d Definition) (Definition, bool) {
	if d.Parent < 0 || d.Parent >= len(t.defs) {
		return Definition{}, false
	}
	return t.defs[d.Parent], true
}

// Placement is a definition's position relative to its parent, in the
// order locators prefer candidates.
type Placement int

// Placement values.
const (
	PlacementTopLevel Placement = iota
	PlacementMethod
	PlacementNested
)

// Placement classifies d.
func (t Tree) Placement(d Definition) Placement {
	parent, ok := t.Parent(d)
	switch {
	case !ok:
		return PlacementTopLevel
	case parent.Kind == KindClass:
		return PlacementMethod
	default:
		return PlacementNested
	}
}

// BestFunction returns the function named name with the most preferred
// placement; ties go to the earliest in source order.
func (t Tree) BestFunction(name string) (Definition, bool) {
	var best Definition
	found := false
	for _, d := range t.defs {
		if d.Kind != KindFunction || d.Name != name {
			continue
		}
		if !found || t.Placement(d) < t.Placement(best) {
			best = d
			found = true
		}
	}
	return best, found
}
