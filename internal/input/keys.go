package input

import "strings"

// CanonicalKey classifies a key name reported by a hook. Names made only of
// ASCII letters, digits and spaces are valid and returned lower-cased; every
// other name (punctuation, non-ASCII, empty) is invalid.
func CanonicalKey(name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		return "", false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == ' ':
		default:
			return "", false
		}
	}
	return strings.ToLower(name), true
}
