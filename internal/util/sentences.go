package util

import "strings"

// abbreviations that end with a period but do not terminate a sentence
var abbreviations = map[string]bool{
	"mr": true, "mrs": true, "ms": true, "dr": true, "prof": true,
	"st": true, "vs": true, "etc": true, "inc": true, "ltd": true,
	"co": true, "jr": true, "sr": true, "no": true, "approx": true,
}

// SplitSentences splits text into ordered sentences. Whitespace-only
// fragments are dropped; the result is empty for blank input. This is the
// sentence-granularity seam of the verifier.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\n", " ")

	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i, r := range runes {
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// Only break when followed by whitespace or end of text.
		if i+1 < len(runes) && runes[i+1] != ' ' && runes[i+1] != '\t' {
			continue
		}
		if r == '.' && isAbbreviation(current.String()) {
			continue
		}

		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	if rest := strings.TrimSpace(current.String()); rest != "" {
		sentences = append(sentences, rest)
	}

	return sentences
}

// isAbbreviation reports whether the text ends in a known abbreviation
// (including a trailing period).
func isAbbreviation(text string) bool {
	text = strings.TrimSuffix(strings.TrimSpace(text), ".")
	idx := strings.LastIndexAny(text, " \t")
	word := text
	if idx >= 0 {
		word = text[idx+1:]
	}
	return abbreviations[strings.ToLower(word)]
}
