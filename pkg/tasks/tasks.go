// Package tasks defines the structure for tasks that are sent to Kafka.
package tasks

// DocumentIngestTask represents the data structure for a document ingestion job.
type DocumentIngestTask struct {
	DocumentID string `json:"document_id"`
	ObjectName string `json:"object_name"`
	SourceName string `json:"source_name"`
	UserID     string `json:"user_id"`
}
