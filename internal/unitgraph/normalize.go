package unitgraph

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Lower folds a unit token to lower case and trims surrounding space.
// A new Caser is built per call because cases.Caser is not safe for
// concurrent use.
func Lower(s string) string {
	return cases.Lower(language.Und).String(strings.TrimSpace(s))
}

// Singular strips one trailing "s". The bare name "s" (seconds) is kept.
func Singular(name string) string {
	if name == "s" || !strings.HasSuffix(name, "s") {
		return name
	}
	return strings.TrimSuffix(name, "s")
}

// Normalize lower-cases and singularizes a unit name the way the table
// builder stores it.
func Normalize(name string) string {
	return Singular(Lower(name))
}
