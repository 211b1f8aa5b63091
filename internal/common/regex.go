package common

import (
	"regexp"
)

// CompileInsensitive compiles pattern with case-insensitive matching. Inline
// flags in the pattern still apply; "(?-i)" turns case sensitivity back on.
func CompileInsensitive(pattern, source string) (*regexp.Regexp, error) {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Source: source, Err: err}
	}
	return re, nil
}
