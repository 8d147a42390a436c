package service

import (
	"context"
	"testing"

	"smart-tutor-go/internal/config"
	"smart-tutor-go/internal/retriever"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDocumentService() DocumentService {
	ret := retriever.New(retriever.NewMemoryIndex(), hashEmbedder{}, uniformReranker{}, 0.7, 500, 50)
	// Kafka disabled: uploads are ingested inline
	return NewDocumentService(ret, config.KafkaConfig{}, config.MinIOConfig{})
}

func TestIngestTextAndStats(t *testing.T) {
	svc := newTestDocumentService()
	ctx := context.Background()

	n, err := svc.IngestText(ctx, "notes", "Photosynthesis converts sunlight into chemical energy.")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, "memory", stats.Backend)
	assert.Equal(t, 1, stats.ChunkCount)
}

func TestEnqueueDocumentInlineWhenKafkaDisabled(t *testing.T) {
	svc := newTestDocumentService()
	ctx := context.Background()

	id, err := svc.EnqueueDocument(ctx, "user-1", "upload.txt", []byte("The water cycle moves water between oceans and land."))
	require.NoError(t, err)
	assert.Empty(t, id, "inline ingestion has no task id")

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ChunkCount)
}

func TestEnqueueDocumentRejectsEmptyBody(t *testing.T) {
	svc := newTestDocumentService()

	_, err := svc.EnqueueDocument(context.Background(), "user-1", "empty.txt", nil)
	assert.Error(t, err)
}

func TestSearchAndReset(t *testing.T) {
	svc := newTestDocumentService()
	ctx := context.Background()

	_, err := svc.IngestText(ctx, "notes", "Mitochondria are the powerhouse of the cell.")
	require.NoError(t, err)

	results, err := svc.Search(ctx, "mitochondria powerhouse", 5, "hybrid")
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Contains(t, results[0].Content, "Mitochondria")

	require.NoError(t, svc.Reset(ctx))
	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ChunkCount)
}
