package parsing

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// Walker provides syntax tree traversal helpers.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() Walker {
	return Walker{}
}

// WalkFunc is called for each node during traversal.
// Return false to stop traversal.
type WalkFunc func(node *sitter.Node) bool

// Walk performs a breadth-first traversal of the tree.
func (w Walker) Walk(root *sitter.Node, fn WalkFunc) {
	if root == nil {
		return
	}

	queue := []*sitter.Node{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if !fn(current) {
			return
		}

		for i := 0; i < int(current.ChildCount()); i++ {
			if child := current.Child(i); child != nil {
				queue = append(queue, child)
			}
		}
	}
}

// FirstError returns the first ERROR or missing node, or nil.
func (w Walker) FirstError(root *sitter.Node) *sitter.Node {
	var found *sitter.Node
	w.Walk(root, func(node *sitter.Node) bool {
		if node.Type() == "ERROR" || node.IsMissing() {
			found = node
			return false
		}
		return true
	})
	return found
}

// NodeText extracts the text content of a node.
func (w Walker) NodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}

	start := node.StartByte()
	end := node.EndByte()

	if start >= uint32(len(source)) || end > uint32(len(source)) || start >= end {
		return ""
	}

	return string(source[start:end])
}

// FieldText returns the text of the named field child.
func (w Walker) FieldText(node *sitter.Node, field string, source []byte) string {
	if node == nil {
		return ""
	}
	return w.NodeText(node.ChildByFieldName(field), source)
}

// IsComment checks if a node is a comment type.
func (w Walker) IsComment(node *sitter.Node) bool {
	if node == nil {
		return false
	}
	switch node.Type() {
	case "comment", "line_comment", "block_comment":
		return true
	}
	return false
}

// StartLine returns the 1-based line a node starts on.
func StartLine(node *sitter.Node) int {
	return int(node.StartPoint().Row) + 1
}

// EndLine returns the 1-based last line holding the node's text. A node
// ending at column 0 ends on the previous line.
func EndLine(node *sitter.Node) int {
	end := node.EndPoint()
	if end.Column == 0 && end.Row > node.StartPoint().Row {
		return int(end.Row)
	}
	return int(end.Row) + 1
}
