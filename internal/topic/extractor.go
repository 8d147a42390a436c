// Package topic extracts coarse topic labels from free text.
package topic

import "strings"

// Extractor pulls topic labels from text. Implementations may later swap
// the keyword matcher for a model-based classifier without touching callers.
type Extractor interface {
	Extract(text string) []string
}

// defaultVocabulary is the fixed subject list matched against queries.
var defaultVocabulary = []string{
	"mathematics", "algebra", "geometry", "calculus",
	"science", "biology", "chemistry", "physics",
	"history", "geography", "literature", "language",
	"art", "music", "sports", "technology",
}

type keywordExtractor struct {
	vocabulary []string
}

// NewKeywordExtractor creates an extractor over the given vocabulary, or the
// default subject list when vocabulary is empty.
func NewKeywordExtractor(vocabulary []string) Extractor {
	if len(vocabulary) == 0 {
		vocabulary = defaultVocabulary
	}
	return &keywordExtractor{vocabulary: vocabulary}
}

// Extract returns every vocabulary entry that occurs in the text,
// case-insensitively, in vocabulary order.
func (e *keywordExtractor) Extract(text string) []string {
	lower := strings.ToLower(text)
	var topics []string
	for _, t := range e.vocabulary {
		if strings.Contains(lower, t) {
			topics = append(topics, t)
		}
	}
	return topics
}
