// Package pipeline runs the asynchronous document ingestion flow.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"smart-tutor-go/internal/config"
	"smart-tutor-go/internal/retriever"
	"smart-tutor-go/pkg/log"
	"smart-tutor-go/pkg/storage"
	"smart-tutor-go/pkg/tasks"
)

// Processor downloads an uploaded document from object storage and feeds it
// through chunking, embedding, and indexing.
type Processor struct {
	ret      *retriever.Retriever
	minioCfg config.MinIOConfig
}

func NewProcessor(ret *retriever.Retriever, minioCfg config.MinIOConfig) *Processor {
	return &Processor{ret: ret, minioCfg: minioCfg}
}

// Process is the entry point invoked for each ingestion task.
func (p *Processor) Process(ctx context.Context, task tasks.DocumentIngestTask) error {
	log.Infof("[Processor] processing document, id: %s, source: %s, user: %s", task.DocumentID, task.SourceName, task.UserID)

	log.Infof("[Processor] step 1: downloading from MinIO, bucket: %s, object: %s", p.minioCfg.BucketName, task.ObjectName)
	body, err := storage.FetchObject(ctx, p.minioCfg.BucketName, task.ObjectName)
	if err != nil {
		log.Errorf("[Processor] failed to download object '%s': %v", task.ObjectName, err)
		return fmt.Errorf("download document from MinIO: %w", err)
	}
	if len(body) == 0 {
		log.Warnf("[Processor] document '%s' is empty, aborting", task.SourceName)
		return errors.New("document body is empty")
	}
	if !utf8.Valid(body) {
		log.Warnf("[Processor] document '%s' is not valid UTF-8, aborting", task.SourceName)
		return errors.New("document body is not valid UTF-8 text")
	}
	log.Infof("[Processor] step 1: downloaded %d bytes", len(body))

	log.Info("[Processor] step 2: chunking, embedding, and indexing")
	count, err := p.ret.IndexDocument(ctx, task.SourceName, string(body))
	if err != nil {
		log.Errorf("[Processor] indexing failed for '%s': %v", task.SourceName, err)
		return fmt.Errorf("index document: %w", err)
	}

	log.Infof("[Processor] document '%s' ingested, %d chunks indexed", task.SourceName, count)
	return nil
}
