package locating

// skipString returns the index just past the string literal opened at
// src[i]. Backslash escapes are honoured; an unterminated literal runs to
// the end of src.
func skipString(src string, i int) int {
	quote := src[i]
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case quote:
			return j + 1
		case '\n':
			if quote != '`' {
				return j + 1
			}
		}
	}
	return len(src)
}

// skipComment returns the index past a comment starting at src[i], or i
// when no comment starts there.
func skipComment(src string, i int) int {
	if i+1 >= len(src) || src[i] != '/' {
		return i
	}
	switch src[i+1] {
	case '/':
		for j := i + 2; j < len(src); j++ {
			if src[j] == '\n' {
				return j
			}
		}
		return len(src)
	case '*':
		for j := i + 2; j+1 < len(src); j++ {
			if src[j] == '*' && src[j+1] == '/' {
				return j + 2
			}
		}
		return len(src)
	}
	return i
}

// MatchingBrace returns the offset of the brace closing the one at open.
// Braces inside single-, double- and backtick-quoted strings and inside
// comments are ignored.
func MatchingBrace(src string, open int) (int, bool) {
	if open < 0 || open >= len(src) || src[open] != '{' {
		return 0, false
	}
	depth := 0
	for i := open; i < len(src); {
		switch c := src[i]; c {
		case '\'', '"', '`':
			i = skipString(src, i)
			continue
		case '/':
			if j := skipComment(src, i); j != i {
				i = j
				continue
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}

// BodyStart finds the brace opening a body at or after from, skipping
// balanced parentheses such as parameter lists with default values. It
// stops at a statement terminator and returns the terminator offset with
// ok=false when the body is a bare expression.
func BodyStart(src string, from int) (int, bool) {
	parens := 0
	arrow := false
	for i := from; i < len(src); {
		c := src[i]
		switch c {
		case '\'', '"', '`':
			i = skipString(src, i)
			continue
		case '/':
			if j := skipComment(src, i); j != i {
				i = j
				continue
			}
		case '(', '[':
			parens++
		case ')', ']':
			parens--
		case '{':
			if parens <= 0 {
				return i, true
			}
		case '=':
			if parens <= 0 && i+1 < len(src) && src[i+1] == '>' {
				arrow = true
				i += 2
				continue
			}
		case ';':
			if parens <= 0 {
				return i, false
			}
		case '\n':
			if parens <= 0 && arrow && !onlySpaceAfterArrow(src, from, i) {
				return i, false
			}
		}
		i++
	}
	return len(src), false
}

// onlySpaceAfterArrow reports whether nothing but whitespace follows the
// last "=>" before end, meaning the arrow body continues on the next line.
func onlySpaceAfterArrow(src string, from, end int) bool {
	for j := end - 1; j > from; j-- {
		switch src[j] {
		case ' ', '\t', '\r':
			continue
		case '>':
			return src[j-1] == '='
		default:
			return false
		}
	}
	return false
}

// LineSpan converts two byte offsets (start <= end) to 1-based line
// numbers in one pass over src.
func LineSpan(src string, start, end int) (int, int) {
	line := 1
	startLine := 0
	for i := 0; i < len(src) && i <= end; i++ {
		if i == start {
			startLine = line
		}
		if i == end {
			return startLine, line
		}
		if src[i] == '\n' {
			line++
		}
	}
	if startLine == 0 {
		startLine = line
	}
	return startLine, line
}

// DeclarationBody finds the brace opening a declaration body whose name
// ends at from. An optional type parameter list and the parameter list
// must come first; after the closing parenthesis only whitespace or a
// return type annotation may precede the brace. Anything else, such as a
// call statement followed by unrelated code, yields ok=false.
func DeclarationBody(src string, from int) (int, bool) {
	i := skipBlank(src, from, false)
	if i < len(src) && src[i] == '<' {
		depth := 0
		for ; i < len(src); i++ {
			if src[i] == '<' {
				depth++
			} else if src[i] == '>' {
				depth--
				if depth == 0 {
					i++
					break
				}
			} else if src[i] == '\n' {
				return i, false
			}
		}
		i = skipBlank(src, i, false)
	}
	if i >= len(src) || src[i] != '(' {
		return i, false
	}
	closing, ok := matchingParen(src, i)
	if !ok {
		return len(src), false
	}

	i = skipBlank(src, closing+1, true)
	if i >= len(src) {
		return i, false
	}
	switch src[i] {
	case '{':
		return i, true
	case ':':
		// return type annotation ends at the first brace on its line
		for j := i + 1; j < len(src); j++ {
			switch src[j] {
			case '{':
				return j, true
			case '\n', ';', '=':
				return j, false
			}
		}
	}
	return i, false
}

func skipBlank(src string, i int, newlines bool) int {
	for i < len(src) {
		switch src[i] {
		case ' ', '\t', '\r':
		case '\n':
			if !newlines {
				return i
			}
		default:
			return i
		}
		i++
	}
	return i
}

// matchingParen returns the offset of the parenthesis closing the one at
// open, skipping strings and comments.
func matchingParen(src string, open int) (int, bool) {
	depth := 0
	for i := open; i < len(src); {
		switch src[i] {
		case '\'', '"', '`':
			i = skipString(src, i)
			continue
		case '/':
			if j := skipComment(src, i); j != i {
				i = j
				continue
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
		i++
	}
	return 0, false
}
