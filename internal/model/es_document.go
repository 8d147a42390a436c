package model

// EsDocument is the chunk form stored in the Elasticsearch backend.
type EsDocument struct {
	ChunkID     string    `json:"chunk_id"`
	SourceName  string    `json:"source_name"`
	Offset      int       `json:"offset"`
	TextContent string    `json:"text_content"`
	Vector      []float32 `json:"vector"`
	ModelName   string    `json:"model_name"`
}
