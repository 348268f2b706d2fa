package extract

import (
	"regexp"
	"strings"
)

var (
	jsonFence = regexp.MustCompile("(?is)```[ \t]*json[ \t]*\r?\n?(.*?)```")
	anyFence  = regexp.MustCompile("(?s)```[^\n`]*\r?\n(\\s*\\{.*?)```")
)

// FindFencedJSON returns the interior of the first ```json fenced block. A
// bare ``` fence is accepted when its body starts with an object.
func FindFencedJSON(s string) (string, bool) {
	if m := jsonFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := anyFence.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	return "", false
}

// FindBalancedObject returns the first {...} span whose closing brace
// balances its opening one. Braces inside string literals and comments are
// ignored. When an opening brace never closes, the next one is tried.
func FindBalancedObject(s string) (string, bool) {
	// closes[i] records what a scan learnt about the brace at s[i]: 0 when
	// unknown, -1 when it never closes, otherwise its closing index.
	var closes []int
	budget := 4*len(s) + 64
	for start := 0; start < len(s) && budget > 0; {
		off := strings.IndexByte(s[start:], '{')
		if off < 0 {
			return "", false
		}
		open := start + off
		start = open + 1

		if closes == nil {
			closes = make([]int, len(s))
		}
		if closes[open] == 0 {
			budget -= matchBrace(s, open, closes)
		}
		if end := closes[open]; end > 0 {
			return s[open : end+1], true
		}
	}
	return "", false
}

// matchBrace scans forward from the brace at s[open] until it is closed or
// the input ends. Every brace the scan passes outside strings and comments
// would be scanned the same way on its own, so its outcome is recorded in
// closes as well. It returns the number of bytes consumed.
func matchBrace(s string, open int, closes []int) int {
	stack := []int{open}
	inString, escaped := false, false
	i := open + 1
	for ; i < len(s) && len(stack) > 0; i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '/':
			if n := junkLen(s, i); n > 0 {
				i += n - 1
			}
		case '{', '[':
			stack = append(stack, i)
		case '}', ']':
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if s[top] == '{' {
				if c == '}' {
					closes[top] = i
				} else {
					closes[top] = -1
				}
			}
		}
	}
	for _, p := range stack {
		if s[p] == '{' {
			closes[p] = -1
		}
	}
	return i - open
}
