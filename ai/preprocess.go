package ai

import (
	"regexp"
	"strings"
)

// abbreviations expands common campus shorthand so the encoder sees the
// full terms.
var abbreviations = map[string]string{
	"prof":  "professor",
	"dept":  "department",
	"admin": "administration",
	"mgmt":  "management",
	"hr":    "human resources",
	"it":    "information technology",
	"ac":    "air conditioning",
	"wifi":  "internet connection",
	"lab":   "laboratory",
}

// phraseExpansions appends synonym terms after common complaint idioms to
// boost recall. The original phrase is kept; the expansion is additive.
// Ordered so the output is deterministic even though expansions overlap.
var phraseExpansions = []struct {
	phrase    string
	expansion string
}{
	{"no water", "water shortage water supply water problem"},
	{"water issue", "water problem water shortage"},
	{"water supply", "water availability water access"},
	{"water shortage", "no water water problem water crisis"},
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	abbrevRe     = map[string]*regexp.Regexp{}
)

func init() {
	for abbr := range abbreviations {
		abbrevRe[abbr] = regexp.MustCompile(`\b` + abbr + `\b`)
	}
}

// PreprocessText normalizes complaint text before embedding: lowercase,
// collapsed whitespace, phrase expansions, then abbreviation expansion.
func PreprocessText(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = whitespaceRe.ReplaceAllString(text, " ")

	for _, p := range phraseExpansions {
		if strings.Contains(text, p.phrase) {
			text = strings.ReplaceAll(text, p.phrase, p.phrase+" "+p.expansion)
		}
	}

	for abbr, full := range abbreviations {
		text = abbrevRe[abbr].ReplaceAllString(text, full)
	}

	return text
}
