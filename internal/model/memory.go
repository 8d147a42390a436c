package model

import "time"

// Turn is one interaction recorded in personalization memory.
type Turn struct {
	Timestamp time.Time `json:"timestamp"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	Level     string    `json:"level"`
	Topics    []string  `json:"topics"`
}

// TopicMastery counts assessment outcomes for one topic.
type TopicMastery struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Accuracy returns correct/total, or 0 when there are no attempts yet.
func (m TopicMastery) Accuracy() float64 {
	if m.Total == 0 {
		return 0
	}
	return float64(m.Correct) / float64(m.Total)
}

// LearningProfile is the derived per-user preference record.
type LearningProfile struct {
	PreferredLanguage string         `json:"preferred_language"`
	PreferredLevel    string         `json:"preferred_level"`
	WeakTopics        map[string]int `json:"weak_topics"`
	StrongTopics      map[string]int `json:"strong_topics"`
	TotalInteractions int            `json:"total_interactions"`
	LastUpdated       time.Time      `json:"last_updated"`
}

// MemorySnapshot is the wholesale export/import form of InteractionMemory.
type MemorySnapshot struct {
	UserID         string                  `json:"user_id"`
	SessionWindow  []Turn                  `json:"session_window"`
	LongTermWindow []Turn                  `json:"long_term_window"`
	TopicMastery   map[string]TopicMastery `json:"topic_mastery"`
	Profile        LearningProfile         `json:"learning_profile"`
}

// LearningAnalysis aggregates long-term memory into actionable signals.
type LearningAnalysis struct {
	PreferredLanguage string         `json:"preferred_language"`
	PreferredLevel    string         `json:"preferred_level"`
	MostActiveHour    int            `json:"most_active_hour"`
	LanguageCounts    map[string]int `json:"language_distribution"`
	LevelCounts       map[string]int `json:"level_distribution"`
	TopicFrequency    map[string]int `json:"topic_frequency"`
	WeakTopics        []string       `json:"weak_topics"`
	StrongTopics      []string       `json:"strong_topics"`
	TotalInteractions int            `json:"total_interactions"`
}

// Interaction is the durable record of an answered turn.
type Interaction struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;size:64;not null" json:"userId"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Answer    string    `gorm:"type:text;not null" json:"answer"`
	Language  string    `gorm:"size:8" json:"language"`
	Level     string    `gorm:"size:16" json:"level"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Interaction) TableName() string {
	return "interactions"
}
