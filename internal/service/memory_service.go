package service

import (
	"context"
	"fmt"

	"smart-tutor-go/internal/memory"
	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/repository"
	"smart-tutor-go/pkg/log"
)

// MemoryService exposes the personalization memory: snapshot export/import,
// mastery feedback, and clearing.
type MemoryService interface {
	Export(ctx context.Context, userID string) (model.MemorySnapshot, error)
	Import(ctx context.Context, snapshot model.MemorySnapshot) error
	Clear(ctx context.Context, userID, kind string) error
	TopicFeedback(ctx context.Context, userID, topicName string, correct bool) error
}

type memoryService struct {
	memories   *memory.Manager
	memoryRepo repository.MemoryRepository // nil when Redis is disabled
}

func NewMemoryService(memories *memory.Manager, memoryRepo repository.MemoryRepository) MemoryService {
	return &memoryService{memories: memories, memoryRepo: memoryRepo}
}

// Export snapshots the session and persists it when a store is configured.
func (s *memoryService) Export(ctx context.Context, userID string) (model.MemorySnapshot, error) {
	snapshot := s.memories.Session(userID).Snapshot()
	if s.memoryRepo != nil {
		if err := s.memoryRepo.Save(ctx, snapshot); err != nil {
			log.Errorf("[MemoryService] failed to persist snapshot for user %s: %v", userID, err)
		}
	}
	return snapshot, nil
}

// Import replaces the user's session wholesale with the given snapshot.
func (s *memoryService) Import(ctx context.Context, snapshot model.MemorySnapshot) error {
	if snapshot.UserID == "" {
		return fmt.Errorf("snapshot has no user id")
	}
	s.memories.Session(snapshot.UserID).Restore(snapshot)
	if s.memoryRepo != nil {
		if err := s.memoryRepo.Save(ctx, snapshot); err != nil {
			return fmt.Errorf("persist imported snapshot: %w", err)
		}
	}
	log.Infof("[MemoryService] imported memory snapshot for user %s", snapshot.UserID)
	return nil
}

func (s *memoryService) Clear(ctx context.Context, userID, kind string) error {
	switch kind {
	case "session", "long_term", "all":
	default:
		return fmt.Errorf("unknown memory kind %q", kind)
	}
	s.memories.Session(userID).ClearKind(kind)
	if kind == "all" && s.memoryRepo != nil {
		if err := s.memoryRepo.Delete(ctx, userID); err != nil {
			log.Errorf("[MemoryService] failed to delete persisted snapshot for user %s: %v", userID, err)
		}
	}
	return nil
}

// TopicFeedback records one assessment outcome for a topic.
func (s *memoryService) TopicFeedback(ctx context.Context, userID, topicName string, correct bool) error {
	if topicName == "" {
		return fmt.Errorf("topic is required")
	}
	session := s.memories.Session(userID)
	session.UpdateTopicMastery(topicName, correct)
	if s.memoryRepo != nil {
		if err := s.memoryRepo.Save(ctx, session.Snapshot()); err != nil {
			log.Errorf("[MemoryService] failed to persist snapshot for user %s: %v", userID, err)
		}
	}
	return nil
}
