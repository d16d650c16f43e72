package rendering

import (
	"strings"
	"unicode"

	"github.com/jonathan/cv-wizard/internal/types"
)

// Filename fallbacks used when a name part is missing.
const (
	FallbackFirstName = "Resume"
	FallbackLastName  = "CV"
)

// Filename derives the download name "<First>_<Last>.pdf" from the personal
// details.
func Filename(pd types.PersonalDetails) string {
	first := sanitizeNamePart(pd.Get(types.FieldFirstName))
	if first == "" {
		first = FallbackFirstName
	}
	last := sanitizeNamePart(pd.Get(types.FieldLastName))
	if last == "" {
		last = FallbackLastName
	}
	return first + "_" + last + ".pdf"
}

// Title is the page title: the person's name, or a generic label.
func Title(pd types.PersonalDetails) string {
	name := strings.TrimSpace(pd.Get(types.FieldFirstName) + " " + pd.Get(types.FieldLastName))
	if name == "" {
		return FallbackFirstName
	}
	return name
}

// sanitizeNamePart drops characters that are unsafe in a file name and
// trims the result.
func sanitizeNamePart(text string) string {
	if text == "" {
		return ""
	}

	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			continue
		default:
			if unicode.IsControl(r) {
				continue
			}
			result.WriteRune(r)
		}
	}

	return strings.Trim(result.String(), " .")
}
