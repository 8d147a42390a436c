// Package model defines the data structures shared across the pipeline.
package model

// ChunkMetadata carries provenance for an indexed chunk.
type ChunkMetadata struct {
	SourceName string `json:"source_name"`
	Offset     int    `json:"offset"`
}

// Chunk is a bounded slice of source text stored with its embedding.
// Immutable once indexed; removed only by an explicit reset.
type Chunk struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
	Vector   []float32     `json:"vector,omitempty"`
}

// SearchResult is produced per query and never persisted.
type SearchResult struct {
	ChunkID        string        `json:"chunk_id"`
	Content        string        `json:"content"`
	Metadata       ChunkMetadata `json:"metadata"`
	SemanticScore  float64       `json:"semantic_score"`
	KeywordScore   float64       `json:"keyword_score"`
	HybridScore    float64       `json:"hybrid_score"`
	RelevanceScore float64       `json:"relevance_score"`
}
