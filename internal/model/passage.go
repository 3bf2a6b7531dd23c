package model

// Passage is a contiguous span of reference text with its embedding.
// Passages are created at index-build time and immutable afterwards.
type Passage struct {
	ID     string    `json:"id"`               // Stable identifier within the topic index
	Text   string    `json:"text"`             // The passage text itself
	Offset int       `json:"offset"`           // Rune offset of the span in the reference text
	Vector []float32 `json:"vector,omitempty"` // Embedding vector
}

// Evidence pairs a retrieved passage with its similarity to a claim unit.
type Evidence struct {
	Passage Passage `json:"passage"`
	Score   float64 `json:"score"` // Cosine similarity, higher is closer
}
