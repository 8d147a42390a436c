package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"smart-tutor-go/internal/model"
	"smart-tutor-go/pkg/llm"
	"smart-tutor-go/pkg/log"
)

// Personalizer rewrites a validated answer using the learner's profile. A
// model failure returns the draft unchanged.
type Personalizer struct {
	llmClient llm.Client
}

func NewPersonalizer(llmClient llm.Client) *Personalizer {
	return &Personalizer{llmClient: llmClient}
}

func (p *Personalizer) Personalize(ctx context.Context, draft string, analysis model.LearningAnalysis, language, level string) string {
	if strings.TrimSpace(draft) == "" {
		return draft
	}

	prompt := fmt.Sprintf(`You are personalizing an educational response based on the user's learning profile.

Base Response: %s

Personalization Context:
%s

Personalize the response by:
1. Addressing weak topics if relevant
2. Using preferred learning style
3. Building on previous knowledge
4. Providing encouragement based on progress
5. Suggesting related topics for improvement

Keep the core educational content but make it more personalized and relevant.`,
		draft, buildPersonalizationContext(analysis, language, level))

	personalized, err := p.llmClient.Complete(ctx, []llm.Message{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		log.Warnf("[Personalizer] personalization failed, keeping validated draft: %v", err)
		return draft
	}
	personalized = strings.TrimSpace(personalized)
	if personalized == "" {
		return draft
	}
	return personalized
}

func buildPersonalizationContext(analysis model.LearningAnalysis, language, level string) string {
	var parts []string

	preferredLanguage := analysis.PreferredLanguage
	if preferredLanguage == "" {
		preferredLanguage = language
	}
	preferredLevel := analysis.PreferredLevel
	if preferredLevel == "" {
		preferredLevel = level
	}

	parts = append(parts,
		"Learning Preferences:",
		fmt.Sprintf("- Preferred Language: %s", preferredLanguage),
		fmt.Sprintf("- Preferred Level: %s", preferredLevel),
		fmt.Sprintf("- Total Interactions: %d", analysis.TotalInteractions),
	)

	if len(analysis.WeakTopics) > 0 {
		parts = append(parts, fmt.Sprintf("Weak Topics (need more practice): %s", strings.Join(analysis.WeakTopics, ", ")))
	}

	if len(analysis.TopicFrequency) > 0 {
		parts = append(parts, fmt.Sprintf("Most Studied Topics: %s", strings.Join(topTopics(analysis.TopicFrequency, 5), ", ")))
	}

	parts = append(parts,
		"Learning Patterns:",
		fmt.Sprintf("- Most Active Hour: %d:00", analysis.MostActiveHour),
	)
	return strings.Join(parts, "\n")
}

// topTopics lists the n most frequent topics as "name(count)", descending by
// count with name ties broken alphabetically.
func topTopics(frequency map[string]int, n int) []string {
	type entry struct {
		name  string
		count int
	}
	entries := make([]entry, 0, len(frequency))
	for name, count := range frequency {
		entries = append(entries, entry{name, count})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].count != entries[b].count {
			return entries[a].count > entries[b].count
		}
		return entries[a].name < entries[b].name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("%s(%d)", e.name, e.count)
	}
	return out
}

// Recommendations derives study suggestions from a profile and analysis.
func Recommendations(analysis model.LearningAnalysis) []string {
	var recs []string
	if len(analysis.WeakTopics) > 0 {
		top := analysis.WeakTopics
		if len(top) > 3 {
			top = top[:3]
		}
		recs = append(recs, fmt.Sprintf("Focus on improving these weak topics: %s", strings.Join(top, ", ")))
	}
	if analysis.PreferredLanguage != "" && analysis.PreferredLanguage != "en" {
		recs = append(recs, fmt.Sprintf("Continue practicing in %s for better comprehension", analysis.PreferredLanguage))
	}
	if analysis.TotalInteractions > 20 && analysis.PreferredLevel == "beginner" {
		recs = append(recs, "Consider progressing to intermediate level for more challenging content")
	}
	recs = append(recs, fmt.Sprintf("Your most productive study time is around %d:00", analysis.MostActiveHour))
	return recs
}
