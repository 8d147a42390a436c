package service

import (
	"bytes"
	"context"
	"fmt"

	"smart-tutor-go/internal/config"
	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/retriever"
	"smart-tutor-go/pkg/kafka"
	"smart-tutor-go/pkg/log"
	"smart-tutor-go/pkg/storage"
	"smart-tutor-go/pkg/tasks"

	"github.com/google/uuid"
)

// DocumentService manages the learning corpus: ingestion, search, and
// collection maintenance.
type DocumentService interface {
	IngestText(ctx context.Context, sourceName, text string) (int, error)
	EnqueueDocument(ctx context.Context, userID, sourceName string, body []byte) (string, error)
	Search(ctx context.Context, query string, k int, mode string) ([]model.SearchResult, error)
	Stats(ctx context.Context) (*CollectionStats, error)
	Reset(ctx context.Context) error
}

// CollectionStats summarizes the indexed corpus.
type CollectionStats struct {
	Backend    string `json:"backend"`
	ChunkCount int    `json:"chunk_count"`
}

type documentService struct {
	ret      *retriever.Retriever
	kafkaCfg config.KafkaConfig
	minioCfg config.MinIOConfig
}

func NewDocumentService(ret *retriever.Retriever, kafkaCfg config.KafkaConfig, minioCfg config.MinIOConfig) DocumentService {
	return &documentService{ret: ret, kafkaCfg: kafkaCfg, minioCfg: minioCfg}
}

// IngestText chunks, embeds, and indexes a document synchronously.
func (s *documentService) IngestText(ctx context.Context, sourceName, text string) (int, error) {
	log.Infof("[DocumentService] synchronous ingest of '%s' (%d chars)", sourceName, len(text))
	return s.ret.IndexDocument(ctx, sourceName, text)
}

// EnqueueDocument stores the raw document in MinIO and publishes an
// ingestion task for the background consumer. When Kafka is disabled the
// document is ingested inline instead.
func (s *documentService) EnqueueDocument(ctx context.Context, userID, sourceName string, body []byte) (string, error) {
	if len(body) == 0 {
		return "", fmt.Errorf("document body is empty")
	}

	if !s.kafkaCfg.Enabled {
		log.Infof("[DocumentService] Kafka disabled, ingesting '%s' inline", sourceName)
		if _, err := s.ret.IndexDocument(ctx, sourceName, string(body)); err != nil {
			return "", err
		}
		return "", nil
	}

	documentID := uuid.NewString()
	objectName := fmt.Sprintf("documents/%s/%s", documentID, sourceName)

	log.Infof("[DocumentService] step 1: uploading '%s' to MinIO as %s", sourceName, objectName)
	err := storage.PutObject(ctx, s.minioCfg.BucketName, objectName, bytes.NewReader(body), int64(len(body)), "text/plain")
	if err != nil {
		return "", fmt.Errorf("upload document to MinIO: %w", err)
	}

	log.Info("[DocumentService] step 2: publishing ingestion task")
	task := tasks.DocumentIngestTask{
		DocumentID: documentID,
		ObjectName: objectName,
		SourceName: sourceName,
		UserID:     userID,
	}
	if err := kafka.ProduceIngestTask(task); err != nil {
		return "", fmt.Errorf("publish ingestion task: %w", err)
	}

	log.Infof("[DocumentService] document '%s' enqueued, task id: %s", sourceName, documentID)
	return documentID, nil
}

func (s *documentService) Search(ctx context.Context, query string, k int, mode string) ([]model.SearchResult, error) {
	return s.ret.Search(ctx, query, k, searchMode(mode))
}

func (s *documentService) Stats(ctx context.Context) (*CollectionStats, error) {
	count, err := s.ret.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &CollectionStats{
		Backend:    s.ret.Backend(),
		ChunkCount: count,
	}, nil
}

// Reset drops the whole indexed corpus.
func (s *documentService) Reset(ctx context.Context) error {
	log.Warnf("[DocumentService] resetting the indexed corpus")
	return s.ret.Reset(ctx)
}
