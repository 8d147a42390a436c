// Package kafka connects the document ingestion queue.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smart-tutor-go/internal/config"
	"smart-tutor-go/pkg/database"
	"smart-tutor-go/pkg/log"
	"smart-tutor-go/pkg/tasks"

	"github.com/segmentio/kafka-go"
)

// TaskProcessor defines the interface for any service that can process a task.
// This decouples the Kafka consumer from the concrete pipeline implementation.
type TaskProcessor interface {
	Process(ctx context.Context, task tasks.DocumentIngestTask) error
}

var producer *kafka.Writer

// InitProducer initializes the Kafka producer.
func InitProducer(cfg config.KafkaConfig) {
	producer = &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers),
		Topic:    cfg.Topic,
		Balancer: &kafka.LeastBytes{},
	}
	log.Info("Kafka producer initialized successfully")
}

// ProduceIngestTask sends a document ingestion task to Kafka.
func ProduceIngestTask(task tasks.DocumentIngestTask) error {
	taskBytes, err := json.Marshal(task)
	if err != nil {
		return err
	}

	return producer.WriteMessages(context.Background(),
		kafka.Message{
			Value: taskBytes,
		},
	)
}

// StartConsumer starts a Kafka consumer that feeds ingestion tasks to the
// processor. Failures are retried by leaving the offset uncommitted; after
// three attempts (counted in Redis) the message is committed and dropped.
func StartConsumer(cfg config.KafkaConfig, processor TaskProcessor) {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Brokers},
		Topic:    cfg.Topic,
		GroupID:  "smart-tutor-go-consumer",
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})

	log.Infof("Kafka consumer started, listening on topic '%s'", cfg.Topic)

	for {
		m, err := r.FetchMessage(context.Background())
		if err != nil {
			log.Error("failed to read message from Kafka", err)
			break
		}

		log.Infof("received Kafka message: offset %d", m.Offset)

		var task tasks.DocumentIngestTask
		if err := json.Unmarshal(m.Value, &task); err != nil {
			log.Errorf("cannot parse Kafka message: %v, value: %s", err, string(m.Value))
			// malformed message, commit it to keep the queue moving
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("failed to commit malformed message: %v", err)
			}
			continue
		}

		log.Infof("processing ingestion task: id=%s, source=%s", task.DocumentID, task.SourceName)
		if err := processor.Process(context.Background(), task); err != nil {
			log.Errorf("ingestion task failed: id=%s, error: %v", task.DocumentID, err)
			attempts, ok := attemptsAfterFailure(context.Background(), task.DocumentID)
			if !ok {
				// counter unavailable: leave the offset uncommitted so Kafka retries
				continue
			}
			if attempts >= 3 {
				log.Errorf("ingestion task failed repeatedly (>=3), committing offset to stop retries: id=%s", task.DocumentID)
				if err := r.CommitMessages(context.Background(), m); err != nil {
					log.Errorf("failed to commit Kafka offset: %v", err)
				}
			}
		} else {
			log.Infof("ingestion task done: id=%s", task.DocumentID)
			clearAttempts(context.Background(), task.DocumentID)
			if err := r.CommitMessages(context.Background(), m); err != nil {
				log.Errorf("failed to commit Kafka offset: %v", err)
			}
		}
	}

	if err := r.Close(); err != nil {
		log.Fatalf("failed to close Kafka consumer: %v", err)
	}
}

// attemptsAfterFailure bumps the retry counter for a failed task. ok is
// false when the counter is unavailable (Redis down or not configured), in
// which case the offset must stay uncommitted so Kafka redelivers.
func attemptsAfterFailure(ctx context.Context, documentID string) (attempts int64, ok bool) {
	if database.RDB == nil {
		return 0, false
	}
	key := fmt.Sprintf("kafka:attempts:%s", documentID)
	attempts, err := database.RDB.Incr(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	_ = database.RDB.Expire(ctx, key, 24*time.Hour).Err()
	return attempts, true
}

func clearAttempts(ctx context.Context, documentID string) {
	if database.RDB == nil {
		return
	}
	_ = database.RDB.Del(ctx, fmt.Sprintf("kafka:attempts:%s", documentID)).Err()
}
