package edit

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// UnifiedDiff renders a whole-file line diff of before and after, each
// line prefixed with " ", "-" or "+". Unchanged runs longer than twice
// ContextLines are collapsed to "@@" markers.
func UnifiedDiff(before, after string) string {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0

	a, b, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	type row struct {
		op   diffmatchpatch.Operation
		text string
	}
	var rows []row
	for _, d := range diffs {
		for _, line := range SplitLines(d.Text) {
			rows = append(rows, row{op: d.Type, text: TrimEOL(line)})
		}
	}

	changed := false
	var out strings.Builder
	for i := 0; i < len(rows); {
		if rows[i].op != diffmatchpatch.DiffEqual {
			changed = true
			prefix := "+"
			if rows[i].op == diffmatchpatch.DiffDelete {
				prefix = "-"
			}
			out.WriteString(prefix + rows[i].text + "\n")
			i++
			continue
		}

		j := i
		for j < len(rows) && rows[j].op == diffmatchpatch.DiffEqual {
			j++
		}
		lead := ContextLines
		trail := ContextLines
		if i == 0 {
			lead = 0
		}
		if j == len(rows) {
			trail = 0
		}
		if j-i <= lead+trail {
			for k := i; k < j; k++ {
				out.WriteString(" " + rows[k].text + "\n")
			}
		} else {
			for k := i; k < i+lead; k++ {
				out.WriteString(" " + rows[k].text + "\n")
			}
			if trail > 0 {
				out.WriteString("@@\n")
			}
			for k := j - trail; k < j; k++ {
				out.WriteString(" " + rows[k].text + "\n")
			}
		}
		i = j
	}

	if !changed {
		return ""
	}
	return out.String()
}
