package youtube

import "strings"

// maxTitleLength caps sanitized titles so deeply nested output paths stay
// under filesystem limits.
const maxTitleLength = 100

// SanitizeTitle transforms a video title into a safe filesystem path segment.
// Characters that are invalid on common filesystems are removed, leading and
// trailing dots and spaces are trimmed, and spaces become underscores.
func SanitizeTitle(title string) string {
	result := title
	for _, char := range []string{"<", ">", ":", "\"", "/", "\\", "|", "?", "*"} {
		result = strings.ReplaceAll(result, char, "")
	}
	result = strings.Trim(result, ". ")
	result = strings.ReplaceAll(result, " ", "_")
	if len(result) > maxTitleLength {
		result = result[:maxTitleLength]
	}
	if result == "" {
		result = "untitled"
	}
	return result
}
