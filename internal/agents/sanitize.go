package agents

import (
	"fmt"
	"go/token"
	"strings"
	"unicode"
)

// Sanitize converts a display name into a valid Go identifier so it can be
// used verbatim as an agent directory name and inside generated source.
// Spaces and hyphens become underscores, other invalid runes are dropped,
// and a leading digit gets an underscore prefix.
func Sanitize(name string) (string, error) {
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.ReplaceAll(name, "-", "_")

	var b strings.Builder
	for _, r := range name {
		if r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	name = strings.Trim(b.String(), "_")

	if name != "" && unicode.IsDigit(rune(name[0])) {
		name = "_" + name
	}

	if name == "" {
		return "", fmt.Errorf("%w: empty after sanitization", ErrInvalidName)
	}

	// Keywords and anything else the filter let through.
	if !token.IsIdentifier(name) {
		return "", fmt.Errorf("%w: %q is not a valid identifier", ErrInvalidName, name)
	}

	return name, nil
}
