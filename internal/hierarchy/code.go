package hierarchy

import "strings"

// NormalizeCode strips separator punctuation and whitespace from an administrative code,
// so "32.01" and " 32-01 " both become "3201". Empty input stays "", meaning absent.
func NormalizeCode(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parentPrefix returns the parent code embedded in code, or "" when code is too short.
func parentPrefix(code string, parent Level) string {
	n := parent.CodeLen()
	if parent == 0 {
		n = 2
	}
	if len(code) <= n {
		return ""
	}
	return code[:n]
}
