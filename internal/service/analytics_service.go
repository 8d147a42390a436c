package service

import (
	"context"

	"smart-tutor-go/internal/memory"
	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/repository"
	"smart-tutor-go/pkg/log"
)

// AnalyticsService derives read-only learning insights. It consumes the
// memory analysis and interaction history and never mutates either.
type AnalyticsService interface {
	Insights(ctx context.Context, userID string) (*LearningInsights, error)
	History(ctx context.Context, userID string, limit int) ([]model.Interaction, error)
}

// LearningInsights is the insight payload for one learner.
type LearningInsights struct {
	Analysis        model.LearningAnalysis `json:"analysis"`
	Recommendations []string               `json:"recommendations"`
	Points          int                    `json:"points"`
	StreakDays      int                    `json:"streak_days"`
	Achievements    []Achievement          `json:"achievements"`
	SessionSummary  SessionSummary         `json:"session_summary"`
}

// Achievement is a milestone the learner has reached.
type Achievement struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

// SessionSummary counts the memory the insights were derived from.
type SessionSummary struct {
	RecentInteractions int `json:"recent_interactions"`
	TotalInteractions  int `json:"total_interactions"`
	WeakTopicsCount    int `json:"weak_topics_count"`
	StrongTopicsCount  int `json:"strong_topics_count"`
}

type analyticsService struct {
	memories        *memory.Manager
	interactionRepo repository.InteractionRepository // nil when MySQL is disabled
}

func NewAnalyticsService(memories *memory.Manager, interactionRepo repository.InteractionRepository) AnalyticsService {
	return &analyticsService{memories: memories, interactionRepo: interactionRepo}
}

func (s *analyticsService) Insights(ctx context.Context, userID string) (*LearningInsights, error) {
	session := s.memories.Session(userID)
	analysis := session.Analyze()

	totalInteractions := int64(analysis.TotalInteractions)
	if s.interactionRepo != nil {
		count, err := s.interactionRepo.CountByUser(userID)
		if err != nil {
			log.Errorf("[AnalyticsService] failed to count interactions for user %s: %v", userID, err)
		} else if count > totalInteractions {
			// the durable log outlives the bounded memory window
			totalInteractions = count
		}
	}

	achievements := earnedAchievements(analysis, totalInteractions)
	points := 0
	for _, a := range achievements {
		points += a.Points
	}

	return &LearningInsights{
		Analysis:        analysis,
		Recommendations: memory.Recommendations(analysis),
		Points:          points,
		StreakDays:      session.StreakDays(),
		Achievements:    achievements,
		SessionSummary: SessionSummary{
			RecentInteractions: len(session.RecentTurns()),
			TotalInteractions:  int(totalInteractions),
			WeakTopicsCount:    len(analysis.WeakTopics),
			StrongTopicsCount:  len(analysis.StrongTopics),
		},
	}, nil
}

// History pages the durable interaction log, newest first. Without a
// configured store there is no history to page.
func (s *analyticsService) History(ctx context.Context, userID string, limit int) ([]model.Interaction, error) {
	if s.interactionRepo == nil {
		return []model.Interaction{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	return s.interactionRepo.FindByUser(userID, limit)
}

// earnedAchievements evaluates the milestone rules against the learner's
// activity.
func earnedAchievements(analysis model.LearningAnalysis, totalInteractions int64) []Achievement {
	var earned []Achievement

	if totalInteractions >= 1 {
		earned = append(earned, Achievement{
			ID:          "first_question",
			Name:        "First Steps",
			Description: "Ask your first question",
			Points:      10,
		})
	}
	if len(analysis.LanguageCounts) >= 3 {
		earned = append(earned, Achievement{
			ID:          "language_explorer",
			Name:        "Language Explorer",
			Description: "Use 3 different languages",
			Points:      25,
		})
	}
	if len(analysis.LanguageCounts) >= 6 {
		earned = append(earned, Achievement{
			ID:          "multilingual_master",
			Name:        "Multilingual Master",
			Description: "Use all 6 supported languages",
			Points:      75,
		})
	}
	if totalInteractions >= 100 {
		earned = append(earned, Achievement{
			ID:          "knowledge_seeker",
			Name:        "Knowledge Seeker",
			Description: "Ask 100 questions",
			Points:      100,
		})
	}
	if len(analysis.StrongTopics) >= 1 {
		earned = append(earned, Achievement{
			ID:          "topic_specialist",
			Name:        "Topic Specialist",
			Description: "Build strong mastery in a topic",
			Points:      40,
		})
	}
	return earned
}
