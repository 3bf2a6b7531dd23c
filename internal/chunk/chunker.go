package chunk

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/wikiprov/wikiprov/internal/model"
)

// Span is a contiguous piece of the normalized reference text.
type Span struct {
	Text   string
	Offset int // Rune offset of the span in the normalized text
}

// Normalize cleans raw article content into paragraphs: section header
// markers ("==...") and blank lines are dropped, and consecutive
// single-sentence lines are joined so short fragments do not become
// passages of their own. Returns the normalized text.
func Normalize(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "==") {
			continue
		}
		lines = append(lines, line)
	}

	// Join consecutive single-sentence lines into one paragraph.
	var paragraphs []string
	var paragraph string
	for _, line := range lines {
		if strings.Count(line, ".") <= 1 {
			paragraph += " " + line
			continue
		}
		if paragraph != "" {
			paragraphs = append(paragraphs, strings.TrimSpace(paragraph))
		}
		paragraph = line
	}
	if paragraph != "" {
		paragraphs = append(paragraphs, strings.TrimSpace(paragraph))
	}

	return strings.Join(paragraphs, "\n\n")
}

// Split cuts text into bounded overlapping spans. Consecutive spans share
// exactly overlap runes so evidence straddling a boundary appears whole in
// at least one span. Cuts prefer whitespace when one exists inside the
// allowed window. Deterministic for identical input and parameters.
func Split(text string, maxLen, overlap int) ([]Span, error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("%w: max length %d must be positive", model.ErrInvalidConfiguration, maxLen)
	}
	if overlap < 0 || overlap >= maxLen {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", model.ErrInvalidConfiguration, overlap, maxLen)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}

	var spans []Span
	start := 0
	for start < len(runes) {
		end := start + maxLen
		if end >= len(runes) {
			spans = append(spans, Span{Text: string(runes[start:]), Offset: start})
			break
		}

		// The cut must leave room for the next span to start after this
		// one, otherwise the walk would not terminate.
		minCut := start + maxLen - overlap
		if minCut <= start+overlap {
			minCut = start + overlap + 1
		}

		cut := end
		for i := end; i > minCut; i-- {
			if unicode.IsSpace(runes[i-1]) {
				cut = i
				break
			}
		}

		spans = append(spans, Span{Text: string(runes[start:cut]), Offset: start})
		start = cut - overlap
	}

	return spans, nil
}

// Passages normalizes raw article content and splits every paragraph into
// bounded spans. This is the index-build entry point.
func Passages(content string, maxLen, overlap int) ([]Span, error) {
	normalized := Normalize(content)
	if strings.TrimSpace(normalized) == "" {
		return nil, nil
	}

	var spans []Span
	offset := 0
	for _, paragraph := range strings.Split(normalized, "\n\n") {
		part, err := Split(paragraph, maxLen, overlap)
		if err != nil {
			return nil, err
		}
		for _, s := range part {
			s.Offset += offset
			spans = append(spans, s)
		}
		offset += len([]rune(paragraph)) + 2 // account for the separator
	}
	return spans, nil
}
