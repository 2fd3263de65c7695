package model

import (
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
)

// MaxCodeLength is the longest material code we accept after normalization.
const MaxCodeLength = 64

// codePattern matches a normalized material code: alphanumeric first
// character, then alphanumerics and the separators used by mine site ERPs.
var codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9._/-]*$`)

var innerSpace = regexp.MustCompile(`\s+`)

// NormalizeCode canonicalizes a raw material code: trim, uppercase, collapse
// internal whitespace to a single dash. Returns an error for codes that are
// empty, too long, or contain characters outside the accepted set.
func NormalizeCode(raw string) (string, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return "", eris.New("material code is empty")
	}

	code = strings.ToUpper(code)
	code = innerSpace.ReplaceAllString(code, "-")

	if len(code) > MaxCodeLength {
		return "", eris.Errorf("material code too long: %d chars (max %d)", len(code), MaxCodeLength)
	}
	if !codePattern.MatchString(code) {
		return "", eris.Errorf("invalid material code %q", code)
	}

	return code, nil
}
