package annotate

import (
	"strings"
	"unicode"
)

// valueReplacer maps characters that would break INFO syntax or VCF
// columns. "," and ";" both become "." so "A,B" and "A;B" collide.
var valueReplacer = strings.NewReplacer(
	"-", "_",
	"/", "_",
	" ", "_",
	"(", ".",
	")", ".",
	"#", "n",
	",", ".",
	";", ".",
	"\\", "_",
	"\t", "_",
	"\"", "_",
	"=", "_",
	"\r", "_",
	"\n", "_",
)

// SanitizeValue makes a table value safe to embed as an INFO value.
// Any remaining Unicode whitespace becomes "_".
func SanitizeValue(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, valueReplacer.Replace(s))
}
