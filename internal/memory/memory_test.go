package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/topic"
	"smart-tutor-go/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *Manager {
	return NewManager(Config{SessionWindow: 5, LongTermWindow: 10}, topic.NewKeywordExtractor(nil))
}

func TestSessionWindowNeverExceedsCap(t *testing.T) {
	m := newTestManager()
	s := m.Session("user-1")

	for i := 0; i < 20; i++ {
		s.Record("user", fmt.Sprintf("question %d about physics", i), "en", "beginner")
	}

	turns := s.RecentTurns()
	require.Len(t, turns, 5)
	// survivors are the most recent turns, oldest first
	assert.Contains(t, turns[0].Content, "question 15")
	assert.Contains(t, turns[4].Content, "question 19")
}

func TestLongTermWindowNeverExceedsCap(t *testing.T) {
	m := newTestManager()
	s := m.Session("user-1")

	for i := 0; i < 30; i++ {
		s.Record("user", fmt.Sprintf("turn %d", i), "en", "beginner")
	}

	snap := s.Snapshot()
	assert.Len(t, snap.LongTermWindow, 10)
	assert.Contains(t, snap.LongTermWindow[0].Content, "turn 20")
}

func TestRecordTagsTopics(t *testing.T) {
	m := newTestManager()
	s := m.Session("user-1")
	s.Record("user", "Can you explain algebra and geometry?", "en", "beginner")

	turns := s.RecentTurns()
	require.Len(t, turns, 1)
	assert.Equal(t, []string{"algebra", "geometry"}, turns[0].Topics)
}

func TestAnalyzePreferences(t *testing.T) {
	m := newTestManager()
	s := m.Session("user-1")
	s.Record("user", "what is gravity", "en", "beginner")
	s.Record("user", "what is algebra", "am", "intermediate")
	s.Record("user", "what is geometry", "am", "intermediate")

	analysis := s.Analyze()
	assert.Equal(t, "am", analysis.PreferredLanguage)
	assert.Equal(t, "intermediate", analysis.PreferredLevel)
	assert.Equal(t, 3, analysis.TotalInteractions)
	assert.Equal(t, 2, analysis.LanguageCounts["am"])
	assert.Equal(t, 1, analysis.TopicFrequency["algebra"])
}

func TestAnalyzePreferenceTieGoesToFirstSeen(t *testing.T) {
	m := newTestManager()
	s := m.Session("user-1")
	s.Record("user", "hello", "sw", "beginner")
	s.Record("user", "hola", "yo", "advanced")

	analysis := s.Analyze()
	assert.Equal(t, "sw", analysis.PreferredLanguage)
	assert.Equal(t, "beginner", analysis.PreferredLevel)
}

func TestAnalyzeEmptySessionUsesDefaults(t *testing.T) {
	m := newTestManager()
	analysis := m.Session("user-1").Analyze()
	assert.Equal(t, "en", analysis.PreferredLanguage)
	assert.Equal(t, "beginner", analysis.PreferredLevel)
	assert.Equal(t, 12, analysis.MostActiveHour)
	assert.Zero(t, analysis.TotalInteractions)
}

func TestTopicMasteryAndWeakStrongSignals(t *testing.T) {
	m := NewManager(Config{WeakThreshold: 3, StrongThreshold: 8}, topic.NewKeywordExtractor(nil))
	s := m.Session("user-1")

	// low accuracy despite many attempts
	for i := 0; i < 10; i++ {
		s.UpdateTopicMastery("algebra", i%2 == 0)
	}
	// few attempts, perfect accuracy
	s.UpdateTopicMastery("physics", true)
	// many attempts, high accuracy
	for i := 0; i < 10; i++ {
		s.UpdateTopicMastery("biology", true)
	}

	assert.InDelta(t, 0.5, s.Mastery("algebra").Accuracy(), 1e-9)
	assert.Zero(t, s.Mastery("chemistry").Accuracy(), "unattempted topic reads as zero")

	analysis := s.Analyze()
	assert.Contains(t, analysis.WeakTopics, "algebra", "accuracy below 0.6")
	assert.Contains(t, analysis.WeakTopics, "physics", "too few attempts")
	assert.NotContains(t, analysis.WeakTopics, "biology")
}

func TestStrongTopicsComeFromFrequency(t *testing.T) {
	m := NewManager(Config{SessionWindow: 5, LongTermWindow: 100, StrongThreshold: 8}, topic.NewKeywordExtractor(nil))
	s := m.Session("user-1")
	for i := 0; i < 9; i++ {
		s.Record("user", "more about chemistry please", "en", "beginner")
	}
	s.Record("user", "one question on history", "en", "beginner")

	analysis := s.Analyze()
	assert.Contains(t, analysis.StrongTopics, "chemistry")
	assert.NotContains(t, analysis.StrongTopics, "history")
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	m := newTestManager()
	s := m.Session("user-1")
	s.Record("user", "tell me about physics", "en", "advanced")
	s.UpdateTopicMastery("physics", true)

	snap := s.Snapshot()
	assert.Equal(t, "user-1", snap.UserID)

	restored := m.Session("user-2")
	restored.Restore(snap)
	assert.Len(t, restored.RecentTurns(), 1)
	assert.Equal(t, 1, restored.Mastery("physics").Correct)
}

func TestRestoreReappliesWindowCaps(t *testing.T) {
	var snap model.MemorySnapshot
	for i := 0; i < 50; i++ {
		snap.SessionWindow = append(snap.SessionWindow, model.Turn{Content: fmt.Sprintf("turn %d", i)})
		snap.LongTermWindow = append(snap.LongTermWindow, model.Turn{Content: fmt.Sprintf("turn %d", i)})
	}

	m := newTestManager()
	s := m.Session("user-1")
	s.Restore(snap)

	turns := s.RecentTurns()
	require.Len(t, turns, 5)
	assert.Equal(t, "turn 45", turns[0].Content)
}

func TestStreakDays(t *testing.T) {
	m := newTestManager()

	s := m.Session("user-1")
	assert.Equal(t, 0, s.StreakDays())

	var snap model.MemorySnapshot
	now := time.Now()
	for i := 0; i < 3; i++ {
		snap.LongTermWindow = append(snap.LongTermWindow, model.Turn{
			Role:      "user",
			Content:   "question",
			Timestamp: now.AddDate(0, 0, -i),
		})
	}
	s.Restore(snap)
	assert.Equal(t, 3, s.StreakDays())

	// a gap before the run: older activity does not extend the streak
	broken := m.Session("user-2")
	snap.LongTermWindow = append(snap.LongTermWindow, model.Turn{
		Role:      "user",
		Content:   "question",
		Timestamp: now.AddDate(0, 0, -5),
	})
	broken.Restore(snap)
	assert.Equal(t, 3, broken.StreakDays())
}

func TestClearKinds(t *testing.T) {
	m := newTestManager()
	s := m.Session("user-1")
	s.Record("user", "about algebra", "en", "beginner")
	s.UpdateTopicMastery("algebra", false)

	s.ClearKind("session")
	assert.Empty(t, s.RecentTurns())
	assert.NotEmpty(t, s.Snapshot().LongTermWindow, "session clear keeps long-term memory")

	s.ClearKind("all")
	snap := s.Snapshot()
	assert.Empty(t, snap.LongTermWindow)
	assert.Empty(t, snap.TopicMastery)
	assert.Equal(t, "en", snap.Profile.PreferredLanguage)
}

func TestManagerLoadsPersistedSnapshotOnFirstAccess(t *testing.T) {
	m := newTestManager()
	loaded := 0
	m.SetSnapshotLoader(func(userID string) *model.MemorySnapshot {
		loaded++
		if userID != "user-1" {
			return nil
		}
		return &model.MemorySnapshot{
			UserID:        "user-1",
			SessionWindow: []model.Turn{{Role: "user", Content: "what is algebra"}},
			TopicMastery:  map[string]model.TopicMastery{"algebra": {Total: 4, Correct: 3}},
		}
	})

	s := m.Session("user-1")
	require.Len(t, s.RecentTurns(), 1)
	assert.Equal(t, "what is algebra", s.RecentTurns()[0].Content)
	assert.Equal(t, 3, s.Mastery("algebra").Correct)

	// only the first access consults the loader
	m.Session("user-1")
	assert.Equal(t, 1, loaded)

	// a user with nothing persisted starts empty
	assert.Empty(t, m.Session("user-2").RecentTurns())
	assert.Equal(t, 2, loaded)
}

func TestManagerReturnsSameSessionPerUser(t *testing.T) {
	m := newTestManager()
	assert.Same(t, m.Session("a"), m.Session("a"))
	assert.NotSame(t, m.Session("a"), m.Session("b"))
}

func TestConcurrentRecordsStayBounded(t *testing.T) {
	m := newTestManager()
	s := m.Session("user-1")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Record("user", fmt.Sprintf("g%d turn %d", n, j), "en", "beginner")
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.RecentTurns(), 5)
	assert.Len(t, s.Snapshot().LongTermWindow, 10)
}

type stubLLM struct {
	response string
	err      error
	prompts  []string
}

func (s *stubLLM) Complete(_ context.Context, messages []llm.Message, _ *llm.GenerationParams) (string, error) {
	s.prompts = append(s.prompts, messages[len(messages)-1].Content)
	return s.response, s.err
}

func (s *stubLLM) StreamChatMessages(context.Context, []llm.Message, *llm.GenerationParams, llm.MessageWriter) error {
	return errors.New("not implemented")
}

func TestPersonalizeUsesProfileContext(t *testing.T) {
	client := &stubLLM{response: "Since you are doing great in biology, let's revisit algebra."}
	p := NewPersonalizer(client)

	analysis := model.LearningAnalysis{
		PreferredLanguage: "am",
		PreferredLevel:    "intermediate",
		MostActiveHour:    19,
		WeakTopics:        []string{"algebra"},
		TopicFrequency:    map[string]int{"biology": 9, "algebra": 4},
		TotalInteractions: 13,
	}
	out := p.Personalize(context.Background(), "Algebra is about symbols.", analysis, "en", "beginner")

	assert.Equal(t, client.response, out)
	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Preferred Language: am")
	assert.Contains(t, client.prompts[0], "Weak Topics (need more practice): algebra")
	assert.Contains(t, client.prompts[0], "biology(9)")
	assert.Contains(t, client.prompts[0], "Most Active Hour: 19:00")
}

func TestPersonalizeFailureKeepsDraft(t *testing.T) {
	p := NewPersonalizer(&stubLLM{err: errors.New("model down")})
	draft := "Algebra is about symbols."
	assert.Equal(t, draft, p.Personalize(context.Background(), draft, model.LearningAnalysis{}, "en", "beginner"))
}

func TestRecommendations(t *testing.T) {
	analysis := model.LearningAnalysis{
		PreferredLanguage: "sw",
		PreferredLevel:    "beginner",
		MostActiveHour:    8,
		WeakTopics:        []string{"algebra", "chemistry", "geometry", "history"},
		TotalInteractions: 25,
	}
	recs := Recommendations(analysis)
	require.NotEmpty(t, recs)
	assert.Contains(t, recs[0], "algebra, chemistry, geometry")
	assert.NotContains(t, recs[0], "history", "only the top three weak topics are suggested")
	assert.Contains(t, recs[1], "sw")
	assert.Contains(t, recs[2], "intermediate level")
	assert.Contains(t, recs[3], "8:00")
}
