package edit

// Splice replaces the lines covered by r with replacement. lines carry
// their terminators, replacement lines do not. An empty replacement deletes
// the range. The range must already be validated against len(lines).
func Splice(lines []string, r LineRange, replacement []string) []string {
	return splice(lines, r.start-1, r.end, replacement)
}

// InsertBefore inserts block in front of line (1-based). line may be
// len(lines)+1 to append.
func InsertBefore(lines []string, line int, block []string) []string {
	return splice(lines, line-1, line-1, block)
}

// Append adds block after the last line.
func Append(lines []string, block []string) []string {
	return splice(lines, len(lines), len(lines), block)
}

// splice replaces lines[from:to]. Every new line is terminated when content
// follows the block. A file-final block keeps a trailing newline only when
// the line it lands after (or replaces) had one.
func splice(lines []string, from, to int, replacement []string) []string {
	eol := detectEOL(lines)

	block := make([]string, len(replacement))
	for i, l := range replacement {
		block[i] = l + eol
	}
	if to >= len(lines) && len(block) > 0 {
		keep := to == 0 || hasEOL(lines[to-1])
		if !keep {
			block[len(block)-1] = replacement[len(replacement)-1]
		}
	}

	out := make([]string, 0, len(lines)-(to-from)+len(block))
	out = append(out, lines[:from]...)
	if from > 0 && len(block) > 0 && !hasEOL(out[from-1]) {
		out[from-1] += eol
	}
	out = append(out, block...)
	out = append(out, lines[to:]...)
	return out
}
