package validation

import "strings"

var (
	markupStripper = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "")
	// Names may legitimately contain apostrophes (O'Brien), and the name
	// rule already admits them, so only the other markup characters go.
	nameStripper = strings.NewReplacer("<", "", ">", "", `"`, "")
)

// Sanitize removes < > " ' anywhere in s and trims surrounding whitespace.
// It is idempotent. It does not replace output encoding by consumers.
func Sanitize(s string) string {
	return strings.TrimSpace(markupStripper.Replace(s))
}

// SanitizeName removes < > " anywhere in s and trims surrounding whitespace.
func SanitizeName(s string) string {
	return strings.TrimSpace(nameStripper.Replace(s))
}
