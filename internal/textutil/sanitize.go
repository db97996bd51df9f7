// Package textutil provides small text helpers shared across hearth
// components.
package textutil

import "strings"

var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
	"\x00", "",
)

// SanitizeFileName converts an arbitrary title into a safe file name
// component. Separator characters become hyphens, shell-hostile characters
// are dropped, and runs of whitespace collapse to single spaces.
func SanitizeFileName(name string) string {
	cleaned := fileNameReplacer.Replace(strings.TrimSpace(name))
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	cleaned = strings.Trim(cleaned, ". ")
	if cleaned == "" {
		return "untitled"
	}
	return cleaned
}

// CollapseSpaces trims the string and folds internal whitespace runs into
// single spaces.
func CollapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
