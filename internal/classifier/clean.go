package classifier

import (
	"path/filepath"
	"strings"
	"unicode"
)

// audioExtensions are the file extensions treated as sound files.
var audioExtensions = map[string]bool{
	".wav": true, ".mp3": true, ".flac": true, ".aif": true, ".aiff": true,
	".ogg": true, ".m4a": true, ".caf": true, ".wma": true, ".opus": true,
}

// IsAudioFile reports whether name carries a known audio extension.
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// CleanFilename prepares a filename for matching: the directory and a known
// audio extension are removed, separators become spaces and trailing take
// numbers are dropped. "Metal_Door-Slam_03.wav" becomes "Metal Door Slam".
// A dot between digits is kept, so "Impact v2.1" survives intact.
func CleanFilename(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(base); IsAudioFile(base) && len(ext) < len(base) {
		base = strings.TrimSuffix(base, ext)
	}

	tokens := splitName(base)
	for len(tokens) > 0 && isNumber(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// splitName breaks base on underscores, hyphens, whitespace and dots that do
// not sit between two digits.
func splitName(base string) []string {
	runes := []rune(base)
	separator := func(i int) bool {
		switch r := runes[i]; {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			return true
		case r == '.':
			return i == 0 || i == len(runes)-1 ||
				!unicode.IsDigit(runes[i-1]) || !unicode.IsDigit(runes[i+1])
		}
		return false
	}

	var tokens []string
	start := -1
	for i := range runes {
		if separator(i) {
			if start >= 0 {
				tokens = append(tokens, string(runes[start:i]))
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, string(runes[start:]))
	}
	return tokens
}

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
