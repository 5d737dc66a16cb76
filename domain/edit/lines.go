package edit

import "strings"

// SplitLines splits content into lines that keep their terminators, so
// that joining them reproduces content byte for byte. A trailing newline
// does not produce an empty final line.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.SplitAfter(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines concatenates lines that carry their own terminators.
func JoinLines(lines []string) string {
	return strings.Join(lines, "")
}

// TrimEOL strips a trailing "\n" or "\r\n".
func TrimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// StripLines returns lines without their terminators.
func StripLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = TrimEOL(l)
	}
	return out
}

func hasEOL(line string) bool {
	return strings.HasSuffix(line, "\n")
}

// detectEOL returns "\r\n" when the first terminated line uses it.
func detectEOL(lines []string) string {
	for _, l := range lines {
		if hasEOL(l) {
			if strings.HasSuffix(l, "\r\n") {
				return "\r\n"
			}
			return "\n"
		}
	}
	return "\n"
}

// BlockLines splits caller-supplied text into replacement lines without
// terminators. One trailing newline is ignored; empty text is an empty
// block.
func BlockLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// NormalizeBlock flattens replacement lines that embed newlines.
func NormalizeBlock(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if !strings.Contains(l, "\n") {
			out = append(out, strings.TrimSuffix(l, "\r"))
			continue
		}
		out = append(out, BlockLines(l)...)
	}
	return out
}
