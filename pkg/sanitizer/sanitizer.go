// Package sanitizer normalizes user supplied text before it is validated or
// stored. Functions are pure and compose with Apply.
package sanitizer

import (
	"html"
	"regexp"
	"strings"
	"unicode"
)

var (
	tagRegex        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRegex = regexp.MustCompile(`[ \t\f\v]+`)
	anySpaceRegex   = regexp.MustCompile(`\s+`)
	blankLinesRegex = regexp.MustCompile(`\n{3,}`)
)

// Apply runs transforms left to right.
func Apply[T any](value T, transforms ...func(T) T) T {
	for _, transform := range transforms {
		value = transform(value)
	}
	return value
}

// NormalizeEmail trims and lowercases an address. It is the canonical key
// for account lookups, so equal addresses in different case collide.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RemoveControlChars drops control characters except newline and tab.
func RemoveControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// StripHTML removes tags and unescapes entities.
func StripHTML(s string) string {
	return html.UnescapeString(tagRegex.ReplaceAllString(s, ""))
}

// SingleLine collapses every whitespace run, newlines included, into one
// space and trims the result.
func SingleLine(s string) string {
	return strings.TrimSpace(anySpaceRegex.ReplaceAllString(s, " "))
}

// Name cleans a display name: no markup, no control characters, one line.
func Name(s string) string {
	return Apply(s, StripHTML, RemoveControlChars, SingleLine)
}

// MultiLine cleans free text such as a bio. Line breaks survive, but runs of
// blank lines and horizontal whitespace are collapsed.
func MultiLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = Apply(s, StripHTML, RemoveControlChars)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(whitespaceRegex.ReplaceAllString(line, " "))
	}
	s = strings.Join(lines, "\n")
	return strings.TrimSpace(blankLinesRegex.ReplaceAllString(s, "\n\n"))
}

// Phone trims the number and drops internal whitespace.
func Phone(s string) string {
	return strings.Join(strings.Fields(s), "")
}
