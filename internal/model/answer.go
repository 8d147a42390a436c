package model

// Answer is the pipeline's final product for one query.
type Answer struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Level    string           `json:"level"`
	Report   ValidationReport `json:"validation_report"`
	Sources  []SearchResult   `json:"sources,omitempty"`
}
