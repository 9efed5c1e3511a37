package pipeline

import (
	"strings"
	"unicode"
)

const maxSlugLength = 80

// Slugify derives a URL-safe slug from a title. Non-alphanumeric runs collapse
// into single hyphens and the result is truncated on a word boundary.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if len(slug) <= maxSlugLength {
		return slug
	}

	slug = slug[:maxSlugLength]
	if idx := strings.LastIndexByte(slug, '-'); idx > 0 {
		slug = slug[:idx]
	}
	return strings.Trim(slug, "-")
}
