package validator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"smart-tutor-go/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM answers Complete calls from a fixed script, recording every
// prompt it receives.
type scriptedLLM struct {
	responses []string
	err       error
	prompts   []string
}

func (s *scriptedLLM) Complete(_ context.Context, messages []llm.Message, _ *llm.GenerationParams) (string, error) {
	s.prompts = append(s.prompts, messages[len(messages)-1].Content)
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", errors.New("script exhausted")
	}
	next := s.responses[0]
	s.responses = s.responses[1:]
	return next, nil
}

func (s *scriptedLLM) StreamChatMessages(context.Context, []llm.Message, *llm.GenerationParams, llm.MessageWriter) error {
	return errors.New("not implemented")
}

const goodDraft = "Great question! Photosynthesis is how plants make food from sunlight. " +
	"To understand it, think of a leaf as a tiny kitchen. For example, the plant uses light, water, and air to cook its own sugar. Keep up the curiosity!"

const perfectAssessment = "ACCURACY: 9/10, CLARITY: 9/10, COMPLETENESS: 8/10, APPROPRIATENESS: 9/10, ENGAGEMENT: 9/10\nIssues: none"
const perfectAccuracy = "ACCURACY: 9/10\nIssues: none"

func TestValidateCleanDraftNoRepair(t *testing.T) {
	client := &scriptedLLM{responses: []string{perfectAssessment, perfectAccuracy}}
	v := New(client)

	improved, report := v.Validate(context.Background(), goodDraft, "photosynthesis notes", "en", "beginner")

	assert.Equal(t, goodDraft, improved)
	assert.False(t, report.ImprovementsMade)
	assert.Len(t, client.prompts, 2, "quality and accuracy checks only, no repair")
	assert.InDelta(t, 1.0, report.SafetyScore, 1e-9)
	assert.InDelta(t, 0.88, report.QualityScore, 1e-9)
	assert.InDelta(t, 0.9, report.AccuracyScore, 1e-9)
	assert.True(t, report.FinalCheck.Passed)
}

func TestOverallScoreIsMeanOfThree(t *testing.T) {
	client := &scriptedLLM{responses: []string{perfectAssessment, perfectAccuracy}}
	v := New(client)

	_, report := v.Validate(context.Background(), goodDraft, "", "en", "beginner")

	mean := (report.SafetyScore + report.QualityScore + report.AccuracyScore) / 3
	assert.InDelta(t, mean, report.OverallScore, 1e-9)
	assert.GreaterOrEqual(t, report.OverallScore, 0.0)
	assert.LessOrEqual(t, report.OverallScore, 1.0)
}

func TestSafetyScorePenalizesPatterns(t *testing.T) {
	score, issues := checkSafety("This is dangerous and always illegal.")
	// dangerous, illegal, always
	assert.Len(t, issues, 3)
	assert.InDelta(t, 0.4, score, 1e-9)
}

func TestSafetyScoreFloorsAtZero(t *testing.T) {
	score, issues := checkSafety("violence harmful dangerous illegal discriminatory offensive")
	assert.GreaterOrEqual(t, len(issues), 6)
	assert.Zero(t, score)
}

func TestMisleadingWordsMatchWholeWordsOnly(t *testing.T) {
	_, issues := checkSafety("The player threw the ball overall really far.")
	assert.Empty(t, issues, "substrings of misleading words must not trigger")
}

func TestRepairRunsExactlyOnce(t *testing.T) {
	// rubric scores low enough to force a repair, even for the repaired text
	lowAssessment := "ACCURACY: 3/10, CLARITY: 3/10, COMPLETENESS: 3/10, APPROPRIATENESS: 3/10, ENGAGEMENT: 3/10\nIssues: too shallow"
	lowAccuracy := "ACCURACY: 3/10\nIssues: unsupported claim"
	client := &scriptedLLM{responses: []string{lowAssessment, lowAccuracy, "A better draft to help you learn. " + goodDraft}}
	v := New(client)

	improved, report := v.Validate(context.Background(), goodDraft, "", "en", "beginner")

	assert.True(t, report.ImprovementsMade)
	assert.NotEqual(t, goodDraft, improved)
	require.Len(t, client.prompts, 3, "quality, accuracy, and exactly one repair")
	assert.Contains(t, client.prompts[2], "Issues to Fix")
}

func TestRepairFailureKeepsOriginal(t *testing.T) {
	lowAssessment := "ACCURACY: 3/10, CLARITY: 3/10, COMPLETENESS: 3/10, APPROPRIATENESS: 3/10, ENGAGEMENT: 3/10\nIssues: too shallow"
	lowAccuracy := "ACCURACY: 3/10\nIssues:"
	client := &scriptedLLM{responses: []string{lowAssessment, lowAccuracy}}
	v := New(client)

	improved, report := v.Validate(context.Background(), goodDraft, "", "en", "beginner")

	assert.Equal(t, goodDraft, improved)
	assert.False(t, report.ImprovementsMade)
	assert.Len(t, client.prompts, 3, "the repair was attempted once and failed")
}

func TestModelFailureFallsBackToNeutralScores(t *testing.T) {
	client := &scriptedLLM{err: errors.New("model down")}
	v := New(client)

	improved, report := v.Validate(context.Background(), goodDraft, "", "en", "beginner")

	assert.Equal(t, goodDraft, improved)
	assert.InDelta(t, 0.5, report.QualityScore, 1e-9)
	assert.InDelta(t, 0.5, report.AccuracyScore, 1e-9)
	assert.Contains(t, report.QualityIssues, "quality assessment failed")
	assert.Contains(t, report.AccuracyIssues, "accuracy validation failed")
}

func TestMissingRubricScoreDefaultsToFive(t *testing.T) {
	assessment := "ACCURACY: 8/10\nIssues: none"
	assert.Equal(t, 8.0, parseRubricScore(assessment, "ACCURACY"))
	assert.Equal(t, 5.0, parseRubricScore(assessment, "CLARITY"))
}

func TestFinalCheckCriteria(t *testing.T) {
	t.Run("passes on a good answer", func(t *testing.T) {
		fc := finalCheck(goodDraft)
		assert.True(t, fc.Passed)
		assert.InDelta(t, 1.0, fc.Score, 1e-9)
	})

	t.Run("too short", func(t *testing.T) {
		fc := finalCheck("Learn well! Good.")
		assert.False(t, fc.Passed)
		assert.False(t, fc.Checks["length_appropriate"])
	})

	t.Run("too long", func(t *testing.T) {
		fc := finalCheck(strings.Repeat("Learn something good every day. ", 100))
		assert.False(t, fc.Checks["length_appropriate"])
	})

	t.Run("unsafe content fails", func(t *testing.T) {
		fc := finalCheck(goodDraft + " This could be dangerous.")
		assert.False(t, fc.Passed)
		assert.False(t, fc.Checks["no_inappropriate_content"])
	})

	t.Run("score is fraction of passed checks", func(t *testing.T) {
		fc := finalCheck("Learn well! Good.")
		passed := 0
		for _, ok := range fc.Checks {
			if ok {
				passed++
			}
		}
		assert.InDelta(t, float64(passed)/float64(len(fc.Checks)), fc.Score, 1e-9)
	})
}

func TestParseIssues(t *testing.T) {
	issues := parseIssues("ACCURACY: 4/10\nIssues: [missing dates; vague claim, no sources]")
	assert.Equal(t, []string{"missing dates", "vague claim", "no sources"}, issues)

	assert.Nil(t, parseIssues("no issues section here"))
	assert.Nil(t, parseIssues("Issues: none"))
}

func TestSummary(t *testing.T) {
	client := &scriptedLLM{responses: []string{perfectAssessment, perfectAccuracy}}
	_, report := New(client).Validate(context.Background(), goodDraft, "", "en", "beginner")
	s := Summary(report)
	assert.Contains(t, s, "excellent")
	assert.Contains(t, s, "no improvements needed")
}
