package edit

import (
	"strconv"
	"strings"
)

// ContextLines is the number of unchanged lines shown on each side of a
// change in a DiffPreview.
const ContextLines = 3

// DiffKind classifies a DiffLine.
type DiffKind int

// DiffKind values.
const (
	DiffContext DiffKind = iota
	DiffRemoved
	DiffAdded
)

// String returns the kind name.
func (k DiffKind) String() string {
	switch k {
	case DiffRemoved:
		return "removed"
	case DiffAdded:
		return "added"
	default:
		return "context"
	}
}

// DiffLine is one labelled row of a preview. Context rows carry a plain
// line number, removed rows "-N" and added rows "+N".
type DiffLine struct {
	Label string
	Text  string
	Kind  DiffKind
}

// DiffPreview is a compact rendering of a single-range replacement. It is
// for review only; writes never re-apply it.
type DiffPreview struct {
	lines []DiffLine
}

// NewDiffPreview renders the replacement of r in original by replacement.
// original may carry line terminators; r must be valid for original.
func NewDiffPreview(original []string, replacement []string, r LineRange) DiffPreview {
	var rows []DiffLine

	before := max(1, r.start-ContextLines)
	for n := before; n < r.start; n++ {
		rows = append(rows, DiffLine{Label: strconv.Itoa(n), Text: TrimEOL(original[n-1]), Kind: DiffContext})
	}
	for n := r.start; n <= r.end && n <= len(original); n++ {
		rows = append(rows, DiffLine{Label: "-" + strconv.Itoa(n), Text: TrimEOL(original[n-1]), Kind: DiffRemoved})
	}
	for i, text := range replacement {
		rows = append(rows, DiffLine{Label: "+" + strconv.Itoa(r.start+i), Text: TrimEOL(text), Kind: DiffAdded})
	}
	after := min(len(original), r.end+ContextLines)
	for n := r.end + 1; n <= after; n++ {
		rows = append(rows, DiffLine{Label: strconv.Itoa(n), Text: TrimEOL(original[n-1]), Kind: DiffContext})
	}

	return DiffPreview{lines: rows}
}

// Lines returns a copy of the preview rows.
func (p DiffPreview) Lines() []DiffLine {
	out := make([]DiffLine, len(p.lines))
	copy(out, p.lines)
	return out
}

// Removed returns the number of removed rows.
func (p DiffPreview) Removed() int { return p.count(DiffRemoved) }

// Added returns the number of added rows.
func (p DiffPreview) Added() int { return p.count(DiffAdded) }

func (p DiffPreview) count(kind DiffKind) int {
	n := 0
	for _, l := range p.lines {
		if l.Kind == kind {
			n++
		}
	}
	return n
}

// String renders one "label<TAB>text" row per line.
func (p DiffPreview) String() string {
	var b strings.Builder
	for _, l := range p.lines {
		b.WriteString(l.Label)
		b.WriteByte('\t')
		b.WriteString(l.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
