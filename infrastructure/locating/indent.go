package locating

import "strings"

// pyState tracks lexical context across physical lines of Python source.
type pyState struct {
	depth        int
	quote        string
	continuation bool
}

// logicalStart reports whether the next physical line begins a new
// logical line.
func (s *pyState) logicalStart() bool {
	return s.depth == 0 && s.quote == "" && !s.continuation
}

// consume advances the state over one line (without terminator) and
// reports whether it held any token outside comments.
func (s *pyState) consume(line string) bool {
	code := false
	s.continuation = false
	for i := 0; i < len(line); i++ {
		c := line[i]
		if s.quote != "" {
			code = true
			if c == '\\' {
				i++
				continue
			}
			if strings.HasPrefix(line[i:], s.quote) {
				i += len(s.quote) - 1
				s.quote = ""
			}
			continue
		}
		switch c {
		case ' ', '\t', '\f', '\r':
		case '#':
			return code
		case '\\':
			if i == len(line)-1 {
				s.continuation = true
			}
			code = true
		case '"', '\'':
			code = true
			q := string(c)
			if strings.HasPrefix(line[i:], q+q+q) {
				q = q + q + q
			}
			s.quote = q
			i += len(q) - 1
		case '(', '[', '{':
			code = true
			s.depth++
		case ')', ']', '}':
			code = true
			if s.depth > 0 {
				s.depth--
			}
		default:
			code = true
		}
	}
	// single-quoted strings do not span lines
	if s.quote == "'" || s.quote == `"` {
		s.quote = ""
	}
	return code
}

func indentWidth(line string) int {
	width := 0
	for _, c := range line {
		switch c {
		case ' ':
			width++
		case '\t':
			width += 8 - width%8
		default:
			return width
		}
	}
	return width
}

// PythonBlockEnd scans forward from the definition keyword on line header
// (1-based) and returns the last line holding a token of the block. The
// block ends before the first logical line indented at or left of the
// header. It returns 0 when header is out of range.
func PythonBlockEnd(lines []string, header int) int {
	if header < 1 || header > len(lines) {
		return 0
	}
	ref := indentWidth(lines[header-1])

	var st pyState
	last := header
	for i := header - 1; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\r\n")
		starts := st.logicalStart()
		trimmed := strings.TrimSpace(line)
		if i > header-1 && starts && trimmed != "" && !strings.HasPrefix(trimmed, "#") && indentWidth(line) <= ref {
			break
		}
		if st.consume(line) || !starts {
			last = i + 1
		}
	}
	return last
}
