package extract

import "strings"

const unicodeEllipsis = "…"

// Sanitize removes the non-JSON debris language models tend to leave in
// otherwise valid output: line and block comments, "..." placeholders and
// commas that precede a closing brace or bracket. String literals are left
// untouched. Removed comments and ellipses become a single space so that
// adjacent tokens are never joined, which keeps Sanitize idempotent.
func Sanitize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var last byte // last non-space byte written
	inString, escaped := false, false

	for i := 0; i < len(s); {
		c := s[i]
		if inString {
			b.WriteByte(c)
			last = c
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			i++
			continue
		}

		if n := junkLen(s, i); n > 0 {
			if !strings.HasPrefix(s[i:], "//") {
				b.WriteByte(' ')
			}
			i += n
			continue
		}

		switch c {
		case '"':
			inString = true
		case ',':
			if last == '[' || last == '{' {
				i++
				continue
			}
			if next := nextSignificant(s, i+1); next == '}' || next == ']' || next == ',' {
				i++
				continue
			}
		}
		b.WriteByte(c)
		if !isSpace(c) {
			last = c
		}
		i++
	}
	return b.String()
}

// junkLen returns the length of the comment or ellipsis starting at s[i], or
// zero. A line comment stops before its newline; an unterminated block
// comment runs to the end of the input.
func junkLen(s string, i int) int {
	rest := s[i:]
	switch {
	case strings.HasPrefix(rest, "//"):
		if j := strings.IndexByte(rest, '\n'); j >= 0 {
			return j
		}
		return len(rest)
	case strings.HasPrefix(rest, "/*"):
		if j := strings.Index(rest[2:], "*/"); j >= 0 {
			return j + 4
		}
		return len(rest)
	case strings.HasPrefix(rest, "..."):
		return 3
	case strings.HasPrefix(rest, unicodeEllipsis):
		return len(unicodeEllipsis)
	}
	return 0
}

// nextSignificant returns the first byte at or after i that is neither
// whitespace nor part of a comment or ellipsis. It returns 0 at end of input.
func nextSignificant(s string, i int) byte {
	for i < len(s) {
		if isSpace(s[i]) {
			i++
			continue
		}
		if n := junkLen(s, i); n > 0 {
			i += n
			continue
		}
		return s[i]
	}
	return 0
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
