package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"smart-tutor-go/internal/model"

	"github.com/go-redis/redis/v8"
)

const memorySnapshotTTL = 30 * 24 * time.Hour

// MemoryRepository stores per-user memory snapshots.
type MemoryRepository interface {
	Save(ctx context.Context, snapshot model.MemorySnapshot) error
	Load(ctx context.Context, userID string) (*model.MemorySnapshot, error)
	Delete(ctx context.Context, userID string) error
}

type memoryRepository struct {
	rdb *redis.Client
}

func NewMemoryRepository(rdb *redis.Client) MemoryRepository {
	return &memoryRepository{rdb: rdb}
}

func memoryKey(userID string) string {
	return fmt.Sprintf("tutor:memory:%s", userID)
}

func (r *memoryRepository) Save(ctx context.Context, snapshot model.MemorySnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal memory snapshot: %w", err)
	}
	return r.rdb.Set(ctx, memoryKey(snapshot.UserID), data, memorySnapshotTTL).Err()
}

// Load returns the stored snapshot, or nil when the user has none yet.
func (r *memoryRepository) Load(ctx context.Context, userID string) (*model.MemorySnapshot, error) {
	data, err := r.rdb.Get(ctx, memoryKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snapshot model.MemorySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal memory snapshot: %w", err)
	}
	return &snapshot, nil
}

func (r *memoryRepository) Delete(ctx context.Context, userID string) error {
	return r.rdb.Del(ctx, memoryKey(userID)).Err()
}
