package utils

import (
	"net/url"
	"strconv"
	"strings"
)

// Undo the TEXT escaping of RFC 5545: `\n` and `\N` become a newline, `\,`,
// `\;` and `\\` lose their backslash. Unknown escapes are kept verbatim.
func UnescapeText(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	var sb strings.Builder
	sb.Grow(len(value))
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c != '\\' || i+1 == len(value) {
			sb.WriteByte(c)
			continue
		}
		switch next := value[i+1]; next {
		case 'n', 'N':
			sb.WriteByte('\n')
			i++
		case ',', ';', '\\':
			sb.WriteByte(next)
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// Split a multi-valued TEXT property (e.g. CATEGORIES) on unescaped commas
// and unescape each element. Empty elements are dropped.
func SplitText(value string) []string {
	var result []string
	start := 0
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\\':
			i++
		case ',':
			if part := strings.TrimSpace(value[start:i]); part != "" {
				result = append(result, UnescapeText(part))
			}
			start = i + 1
		}
	}
	if start < len(value) {
		if part := strings.TrimSpace(value[start:]); part != "" {
			result = append(result, UnescapeText(part))
		}
	}
	return result
}

// Parsing INTEGER values bounded to [min, max]. A negative max means
// unbounded.
func ParseInteger(value string, min, max int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, NewParseError(KindInvalidInteger, value, "not an integer")
	}
	if n < min || (max >= 0 && n > max) {
		return 0, NewParseError(KindInvalidInteger, value, "out of range")
	}
	return n, nil
}

// Parsing URI values, only absolute URIs are accepted.
func ParseURI(value string) (string, error) {
	value = strings.TrimSpace(value)
	u, err := url.ParseRequestURI(value)
	if err != nil || u.Scheme == "" {
		return "", NewParseError(KindInvalidURI, value, "invalid URI")
	}
	return value, nil
}
