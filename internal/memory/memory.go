// Package memory tracks per-user interaction history and derives the
// learning signals used to personalize answers.
package memory

import (
	"sort"
	"sync"
	"time"

	"smart-tutor-go/internal/model"
	"smart-tutor-go/internal/topic"
)

// Config bounds the two FIFO windows and the mastery thresholds.
type Config struct {
	SessionWindow   int
	LongTermWindow  int
	WeakThreshold   int // topics attempted fewer times than this count as weak
	StrongThreshold int // topics attempted at least this often count as strong
}

func (c Config) withDefaults() Config {
	if c.SessionWindow <= 0 {
		c.SessionWindow = 20
	}
	if c.LongTermWindow <= 0 {
		c.LongTermWindow = 1000
	}
	if c.WeakThreshold <= 0 {
		c.WeakThreshold = 3
	}
	if c.StrongThreshold <= 0 {
		c.StrongThreshold = 8
	}
	return c
}

// Session is the in-process memory of one user. All methods are safe for
// concurrent use.
type Session struct {
	mu sync.Mutex

	userID         string
	cfg            Config
	extractor      topic.Extractor
	sessionWindow  []model.Turn
	longTermWindow []model.Turn
	topicMastery   map[string]model.TopicMastery
	profile        model.LearningProfile
}

func newSession(userID string, cfg Config, extractor topic.Extractor) *Session {
	return &Session{
		userID:       userID,
		cfg:          cfg,
		extractor:    extractor,
		topicMastery: make(map[string]model.TopicMastery),
		profile: model.LearningProfile{
			PreferredLanguage: "en",
			PreferredLevel:    "beginner",
			WeakTopics:        make(map[string]int),
			StrongTopics:      make(map[string]int),
		},
	}
}

// Record appends a turn to both windows, tagging it with extracted topics.
// When a window overflows its cap, the oldest turns are dropped.
func (s *Session) Record(role, content, language, level string) {
	turn := model.Turn{
		Timestamp: time.Now(),
		Role:      role,
		Content:   content,
		Language:  language,
		Level:     level,
		Topics:    s.extractor.Extract(content),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionWindow = appendBounded(s.sessionWindow, turn, s.cfg.SessionWindow)
	s.longTermWindow = appendBounded(s.longTermWindow, turn, s.cfg.LongTermWindow)
	s.profile.TotalInteractions++
	s.profile.LastUpdated = turn.Timestamp
}

func appendBounded(window []model.Turn, turn model.Turn, limit int) []model.Turn {
	window = append(window, turn)
	if len(window) > limit {
		window = window[len(window)-limit:]
	}
	return window
}

// RecentTurns returns a copy of the session window, oldest first.
func (s *Session) RecentTurns() []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Turn, len(s.sessionWindow))
	copy(out, s.sessionWindow)
	return out
}

// StreakDays counts consecutive calendar days with at least one user turn,
// ending today or yesterday. A learner who skipped yesterday reads as zero.
func (s *Session) StreakDays() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	days := make(map[string]bool)
	for _, turn := range s.longTermWindow {
		if turn.Role == "user" {
			days[turn.Timestamp.Format("2006-01-02")] = true
		}
	}

	day := time.Now()
	if !days[day.Format("2006-01-02")] {
		day = day.AddDate(0, 0, -1)
	}
	streak := 0
	for days[day.Format("2006-01-02")] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

// UpdateTopicMastery records one assessment outcome for a topic.
func (s *Session) UpdateTopicMastery(topicName string, correct bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.topicMastery[topicName]
	m.Total++
	if correct {
		m.Correct++
	}
	s.topicMastery[topicName] = m
}

// Mastery returns the recorded outcomes for a topic; a topic never attempted
// reads as zero.
func (s *Session) Mastery(topicName string) model.TopicMastery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topicMastery[topicName]
}

// Analyze aggregates the long-term window into preferences and topic
// signals. Preference ties go to the value seen first.
func (s *Session) Analyze() model.LearningAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis := model.LearningAnalysis{
		PreferredLanguage: s.profile.PreferredLanguage,
		PreferredLevel:    s.profile.PreferredLevel,
		MostActiveHour:    12,
		LanguageCounts:    make(map[string]int),
		LevelCounts:       make(map[string]int),
		TopicFrequency:    make(map[string]int),
		TotalInteractions: len(s.longTermWindow),
	}

	var langOrder, levelOrder []string
	hourCounts := make(map[int]int)
	var hourOrder []int
	for _, turn := range s.longTermWindow {
		if _, seen := analysis.LanguageCounts[turn.Language]; !seen {
			langOrder = append(langOrder, turn.Language)
		}
		analysis.LanguageCounts[turn.Language]++
		if _, seen := analysis.LevelCounts[turn.Level]; !seen {
			levelOrder = append(levelOrder, turn.Level)
		}
		analysis.LevelCounts[turn.Level]++
		for _, t := range turn.Topics {
			analysis.TopicFrequency[t]++
		}
		hour := turn.Timestamp.Hour()
		if _, seen := hourCounts[hour]; !seen {
			hourOrder = append(hourOrder, hour)
		}
		hourCounts[hour]++
	}

	if lang := argmax(analysis.LanguageCounts, langOrder); lang != "" {
		analysis.PreferredLanguage = lang
	}
	if level := argmax(analysis.LevelCounts, levelOrder); level != "" {
		analysis.PreferredLevel = level
	}
	if len(hourOrder) > 0 {
		best := hourOrder[0]
		for _, h := range hourOrder {
			if hourCounts[h] > hourCounts[best] {
				best = h
			}
		}
		analysis.MostActiveHour = best
	}

	analysis.WeakTopics = s.weakTopicsLocked()
	analysis.StrongTopics = s.strongTopicsLocked(analysis.TopicFrequency)
	return analysis
}

func argmax(counts map[string]int, order []string) string {
	if len(order) == 0 {
		return ""
	}
	best := order[0]
	for _, key := range order {
		if counts[key] > counts[best] {
			best = key
		}
	}
	return best
}

// weakTopicsLocked lists attempted topics with low accuracy or too few
// attempts. Caller holds the lock.
func (s *Session) weakTopicsLocked() []string {
	var weak []string
	for topicName, m := range s.topicMastery {
		if m.Total == 0 {
			continue
		}
		if m.Accuracy() < 0.6 || m.Total < s.cfg.WeakThreshold {
			weak = append(weak, topicName)
		}
	}
	sort.Strings(weak)
	return weak
}

func (s *Session) strongTopicsLocked(frequency map[string]int) []string {
	var strong []string
	for topicName, count := range frequency {
		if count >= s.cfg.StrongThreshold {
			strong = append(strong, topicName)
		}
	}
	sort.Strings(strong)
	return strong
}

// UpdateProfile folds an analysis back into the stored profile.
func (s *Session) UpdateProfile(analysis model.LearningAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if analysis.PreferredLanguage != "" {
		s.profile.PreferredLanguage = analysis.PreferredLanguage
	}
	if analysis.PreferredLevel != "" {
		s.profile.PreferredLevel = analysis.PreferredLevel
	}
	for _, t := range analysis.WeakTopics {
		s.profile.WeakTopics[t]++
	}
	for _, t := range analysis.StrongTopics {
		s.profile.StrongTopics[t] = analysis.TopicFrequency[t]
	}
	s.profile.LastUpdated = time.Now()
}

// ClearKind drops one kind of memory: "session", "long_term", or "all".
func (s *Session) ClearKind(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case "session":
		s.sessionWindow = nil
	case "long_term":
		s.longTermWindow = nil
	case "all":
		s.sessionWindow = nil
		s.longTermWindow = nil
		s.topicMastery = make(map[string]model.TopicMastery)
		s.profile = model.LearningProfile{
			PreferredLanguage: "en",
			PreferredLevel:    "beginner",
			WeakTopics:        make(map[string]int),
			StrongTopics:      make(map[string]int),
		}
		s.profile.LastUpdated = time.Now()
	}
}

// Snapshot exports the whole session for persistence.
func (s *Session) Snapshot() model.MemorySnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.MemorySnapshot{
		UserID:         s.userID,
		SessionWindow:  make([]model.Turn, len(s.sessionWindow)),
		LongTermWindow: make([]model.Turn, len(s.longTermWindow)),
		TopicMastery:   make(map[string]model.TopicMastery, len(s.topicMastery)),
		Profile:        s.profile,
	}
	copy(snap.SessionWindow, s.sessionWindow)
	copy(snap.LongTermWindow, s.longTermWindow)
	for k, v := range s.topicMastery {
		snap.TopicMastery[k] = v
	}
	snap.Profile.WeakTopics = copyCounts(s.profile.WeakTopics)
	snap.Profile.StrongTopics = copyCounts(s.profile.StrongTopics)
	return snap
}

// Restore replaces the session wholesale with a snapshot, re-applying the
// window caps in case the snapshot was written under a larger configuration.
func (s *Session) Restore(snap model.MemorySnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessionWindow = boundCopy(snap.SessionWindow, s.cfg.SessionWindow)
	s.longTermWindow = boundCopy(snap.LongTermWindow, s.cfg.LongTermWindow)
	s.topicMastery = make(map[string]model.TopicMastery, len(snap.TopicMastery))
	for k, v := range snap.TopicMastery {
		s.topicMastery[k] = v
	}
	s.profile = snap.Profile
	if s.profile.WeakTopics == nil {
		s.profile.WeakTopics = make(map[string]int)
	}
	if s.profile.StrongTopics == nil {
		s.profile.StrongTopics = make(map[string]int)
	}
	if s.profile.PreferredLanguage == "" {
		s.profile.PreferredLanguage = "en"
	}
	if s.profile.PreferredLevel == "" {
		s.profile.PreferredLevel = "beginner"
	}
}

func boundCopy(turns []model.Turn, limit int) []model.Turn {
	if len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	out := make([]model.Turn, len(turns))
	copy(out, turns)
	return out
}

func copyCounts(src map[string]int) map[string]int {
	out := make(map[string]int, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// SnapshotLoader fetches a previously persisted snapshot for a user.
// Returning nil means nothing is stored; the loader handles its own errors.
type SnapshotLoader func(userID string) *model.MemorySnapshot

// Manager hands out one Session per user.
type Manager struct {
	mu        sync.RWMutex
	cfg       Config
	extractor topic.Extractor
	sessions  map[string]*Session
	loader    SnapshotLoader
}

func NewManager(cfg Config, extractor topic.Extractor) *Manager {
	return &Manager{
		cfg:       cfg.withDefaults(),
		extractor: extractor,
		sessions:  make(map[string]*Session),
	}
}

// SetSnapshotLoader installs a loader consulted on first access to each
// session, so persisted memory survives a process restart.
func (m *Manager) SetSnapshotLoader(loader SnapshotLoader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loader = loader
}

// Session returns the user's session, creating it on first use. A new
// session starts from the persisted snapshot when a loader is installed.
func (m *Manager) Session(userID string) *Session {
	m.mu.RLock()
	s, ok := m.sessions[userID]
	loader := m.loader
	m.mu.RUnlock()
	if ok {
		return s
	}

	// load outside the lock; a concurrent creator wins at the re-check below
	var snap *model.MemorySnapshot
	if loader != nil {
		snap = loader(userID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s = newSession(userID, m.cfg, m.extractor)
	if snap != nil {
		s.Restore(*snap)
	}
	m.sessions[userID] = s
	return s
}
