package service

import (
	"context"
	"testing"

	"smart-tutor-go/internal/memory"
	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/topic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapMemoryRepo keeps snapshots in a map, standing in for redis.
type mapMemoryRepo struct {
	snapshots map[string]model.MemorySnapshot
}

func newMapMemoryRepo() *mapMemoryRepo {
	return &mapMemoryRepo{snapshots: make(map[string]model.MemorySnapshot)}
}

func (r *mapMemoryRepo) Save(_ context.Context, snapshot model.MemorySnapshot) error {
	r.snapshots[snapshot.UserID] = snapshot
	return nil
}

func (r *mapMemoryRepo) Load(_ context.Context, userID string) (*model.MemorySnapshot, error) {
	snap, ok := r.snapshots[userID]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (r *mapMemoryRepo) Delete(_ context.Context, userID string) error {
	delete(r.snapshots, userID)
	return nil
}

func managerWithRepo(repo *mapMemoryRepo) *memory.Manager {
	m := memory.NewManager(memory.Config{}, topic.NewKeywordExtractor(nil))
	m.SetSnapshotLoader(func(userID string) *model.MemorySnapshot {
		snap, _ := repo.Load(context.Background(), userID)
		return snap
	})
	return m
}

func TestMemorySurvivesRestartThroughPersistence(t *testing.T) {
	repo := newMapMemoryRepo()
	ctx := context.Background()

	memories := managerWithRepo(repo)
	svc := NewMemoryService(memories, repo)

	memories.Session("user-1").Record("user", "explain physics please", "en", "beginner")
	_, err := svc.Export(ctx, "user-1")
	require.NoError(t, err)

	// a fresh manager stands in for a restarted process
	restarted := managerWithRepo(repo)
	turns := restarted.Session("user-1").RecentTurns()
	require.Len(t, turns, 1)
	assert.Equal(t, "explain physics please", turns[0].Content)
	assert.Equal(t, []string{"physics"}, turns[0].Topics)
}

func TestImportPersistsAndReplacesSession(t *testing.T) {
	repo := newMapMemoryRepo()
	memories := managerWithRepo(repo)
	svc := NewMemoryService(memories, repo)

	snap := model.MemorySnapshot{
		UserID:        "user-1",
		SessionWindow: []model.Turn{{Role: "user", Content: "imported turn"}},
	}
	require.NoError(t, svc.Import(context.Background(), snap))

	assert.Len(t, memories.Session("user-1").RecentTurns(), 1)
	assert.Contains(t, repo.snapshots, "user-1")

	assert.Error(t, svc.Import(context.Background(), model.MemorySnapshot{}), "a snapshot without a user id is rejected")
}

func TestClearAllDeletesPersistedSnapshot(t *testing.T) {
	repo := newMapMemoryRepo()
	memories := managerWithRepo(repo)
	svc := NewMemoryService(memories, repo)
	ctx := context.Background()

	memories.Session("user-1").Record("user", "a chemistry question", "en", "beginner")
	_, err := svc.Export(ctx, "user-1")
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "user-1", "all"))
	assert.NotContains(t, repo.snapshots, "user-1")
	assert.Empty(t, memories.Session("user-1").RecentTurns())

	assert.Error(t, svc.Clear(ctx, "user-1", "bogus"))
}

func TestTopicFeedbackPersistsMastery(t *testing.T) {
	repo := newMapMemoryRepo()
	memories := managerWithRepo(repo)
	svc := NewMemoryService(memories, repo)
	ctx := context.Background()

	require.NoError(t, svc.TopicFeedback(ctx, "user-1", "algebra", true))
	require.NoError(t, svc.TopicFeedback(ctx, "user-1", "algebra", false))

	persisted := repo.snapshots["user-1"]
	assert.Equal(t, 2, persisted.TopicMastery["algebra"].Total)
	assert.Equal(t, 1, persisted.TopicMastery["algebra"].Correct)

	assert.Error(t, svc.TopicFeedback(ctx, "user-1", "", true))
}
