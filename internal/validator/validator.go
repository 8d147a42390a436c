// Package validator checks generated answers for safety, educational
// quality, and factual accuracy, and repairs them once when any dimension
// falls below threshold.
package validator

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"smart-tutor-go/internal/model"
	"smart-tutor-go/pkg/llm"
	"smart-tutor-go/pkg/log"
)

const (
	safetyThreshold   = 0.8
	qualityThreshold  = 0.7
	accuracyThreshold = 0.7

	defaultRubricScore   = 5.0
	defaultAccuracyScore = 0.5

	minAnswerLength = 50
	maxAnswerLength = 2000
)

var inappropriatePatterns = []string{
	"violence", "harmful", "dangerous", "illegal",
	"discriminatory", "offensive", "inappropriate",
}

var misleadingPatterns = []string{
	"always", "never", "all", "none", "guaranteed",
	"definitely", "certainly", "impossible",
}

var educationalMarkers = []string{"explain", "understand", "learn", "study", "example"}

var encouragementMarkers = []string{"good", "great", "excellent", "well done", "keep up"}

var rubricCriteria = []string{"ACCURACY", "CLARITY", "COMPLETENESS", "APPROPRIATENESS", "ENGAGEMENT"}

var accuracyScorePattern = regexp.MustCompile(`(?i)ACCURACY:\s*(\d+)/10`)

// Validator scores an answer draft and repairs it at most once.
type Validator interface {
	Validate(ctx context.Context, draft, contextText, language, level string) (string, model.ValidationReport)
}

type reflectiveValidator struct {
	llmClient llm.Client
}

func New(llmClient llm.Client) Validator {
	return &reflectiveValidator{llmClient: llmClient}
}

// Validate runs the full pipeline: safety scan, quality rubric, accuracy
// check, one bounded repair when thresholds are missed, and a final surface
// check. It never returns an error; model failures fall back to neutral
// scores so the caller always gets a usable answer and report.
func (v *reflectiveValidator) Validate(ctx context.Context, draft, contextText, language, level string) (string, model.ValidationReport) {
	log.Infof("[Validator] validating answer, language: %s, level: %s, length: %d", language, level, len(draft))

	safetyScore, safetyIssues := checkSafety(draft)
	qualityScore, qualityIssues := v.assessQuality(ctx, draft, contextText, language, level)
	accuracyScore, accuracyIssues := v.validateAccuracy(ctx, draft, contextText)

	improved := draft
	if safetyScore < safetyThreshold || qualityScore < qualityThreshold || accuracyScore < accuracyThreshold {
		log.Infof("[Validator] thresholds missed (safety=%.2f quality=%.2f accuracy=%.2f), attempting repair",
			safetyScore, qualityScore, accuracyScore)
		improved = v.repair(ctx, draft, contextText, language, level, safetyIssues, qualityIssues, accuracyIssues)
	}

	report := model.ValidationReport{
		SafetyScore:      safetyScore,
		QualityScore:     qualityScore,
		AccuracyScore:    accuracyScore,
		OverallScore:     (safetyScore + qualityScore + accuracyScore) / 3,
		SafetyIssues:     safetyIssues,
		QualityIssues:    qualityIssues,
		AccuracyIssues:   accuracyIssues,
		ImprovementsMade: improved != draft,
		FinalCheck:       finalCheck(improved),
	}
	log.Infof("[Validator] done, overall: %.2f, improved: %v, final check passed: %v",
		report.OverallScore, report.ImprovementsMade, report.FinalCheck.Passed)
	return improved, report
}

// checkSafety scans for inappropriate and misleading terms. Each distinct
// hit costs 0.2, floored at zero.
func checkSafety(text string) (float64, []string) {
	var issues []string
	lower := strings.ToLower(text)
	for _, pattern := range inappropriatePatterns {
		if strings.Contains(lower, pattern) {
			issues = append(issues, fmt.Sprintf("potentially inappropriate content: %s", pattern))
		}
	}
	for _, pattern := range misleadingPatterns {
		if containsWord(lower, pattern) {
			issues = append(issues, fmt.Sprintf("potentially misleading statement: %s", pattern))
		}
	}
	score := 1 - float64(len(issues))*0.2
	if score < 0 {
		score = 0
	}
	return score, issues
}

func (v *reflectiveValidator) assessQuality(ctx context.Context, draft, contextText, language, level string) (float64, []string) {
	prompt := fmt.Sprintf(`You are an educational quality assessor. Evaluate this response for educational quality.

Response: %s
Context: %s
Language: %s
Learning Level: %s

Rate each criterion from 1-10:
1. Accuracy: Is the information factually correct?
2. Clarity: Is the explanation clear and understandable?
3. Completeness: Does it adequately cover the topic?
4. Appropriateness: Is it appropriate for the learning level?
5. Engagement: Is it encouraging and motivating?

Provide scores and identify any issues that need improvement.
Format: ACCURACY: X/10, CLARITY: X/10, COMPLETENESS: X/10, APPROPRIATENESS: X/10, ENGAGEMENT: X/10
Issues: [list any issues]`, draft, contextText, language, level)

	assessment, err := v.llmClient.Complete(ctx, []llm.Message{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		log.Warnf("[Validator] quality assessment failed: %v", err)
		return 0.5, []string{"quality assessment failed"}
	}

	total := 0.0
	for _, criterion := range rubricCriteria {
		total += parseRubricScore(assessment, criterion)
	}
	score := total / float64(len(rubricCriteria)) / 10
	return score, parseIssues(assessment)
}

func (v *reflectiveValidator) validateAccuracy(ctx context.Context, draft, contextText string) (float64, []string) {
	prompt := fmt.Sprintf(`You are a fact-checker. Validate the accuracy of this response.

Response: %s
Context: %s

Check for:
1. Factual accuracy
2. Logical consistency
3. Proper citations or sources
4. No contradictions

Rate accuracy from 1-10 and list any inaccuracies.
Format: ACCURACY: X/10
Issues: [list any inaccuracies]`, draft, contextText)

	validation, err := v.llmClient.Complete(ctx, []llm.Message{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		log.Warnf("[Validator] accuracy validation failed: %v", err)
		return defaultAccuracyScore, []string{"accuracy validation failed"}
	}

	score := defaultAccuracyScore
	if m := accuracyScorePattern.FindStringSubmatch(validation); m != nil {
		n, _ := strconv.Atoi(m[1])
		score = float64(n) / 10
	}
	return score, parseIssues(validation)
}

// repair asks the model for one improved draft. A failed repair keeps the
// original text; there is no second attempt.
func (v *reflectiveValidator) repair(ctx context.Context, draft, contextText, language, level string, safetyIssues, qualityIssues, accuracyIssues []string) string {
	prompt := fmt.Sprintf(`You are improving an educational response. Fix the identified issues while maintaining the core message.

Original Response: %s
Context: %s
Language: %s
Learning Level: %s

Issues to Fix:
Safety Issues: %s
Quality Issues: %s
Accuracy Issues: %s

Generate an improved response that:
1. Fixes all identified issues
2. Maintains educational value
3. Is appropriate for the learning level
4. Is clear and engaging
5. Is factually accurate

Improved Response:`, draft, contextText, language, level,
		strings.Join(safetyIssues, ", "),
		strings.Join(qualityIssues, ", "),
		strings.Join(accuracyIssues, ", "))

	improved, err := v.llmClient.Complete(ctx, []llm.Message{{Role: "user", Content: prompt}}, nil)
	if err != nil {
		log.Warnf("[Validator] repair failed, keeping original draft: %v", err)
		return draft
	}
	improved = strings.TrimSpace(improved)
	if improved == "" {
		return draft
	}
	return improved
}

// finalCheck runs the surface checks on the answer that will actually be
// returned to the learner.
func finalCheck(text string) model.FinalCheck {
	lower := strings.ToLower(text)
	length := len([]rune(text))

	checks := map[string]bool{
		"length_appropriate":       length >= minAnswerLength && length <= maxAnswerLength,
		"no_inappropriate_content": !containsAny(lower, inappropriatePatterns),
		"has_educational_value":    containsAny(lower, educationalMarkers),
		"encouraging_tone":         containsAny(lower, encouragementMarkers),
	}

	passed := true
	passedCount := 0
	for _, ok := range checks {
		if ok {
			passedCount++
		} else {
			passed = false
		}
	}
	return model.FinalCheck{
		Passed: passed,
		Checks: checks,
		Score:  float64(passedCount) / float64(len(checks)),
	}
}

func parseRubricScore(assessment, criterion string) float64 {
	pattern := regexp.MustCompile(`(?i)` + criterion + `:\s*(\d+)/10`)
	if m := pattern.FindStringSubmatch(assessment); m != nil {
		n, _ := strconv.Atoi(m[1])
		return float64(n)
	}
	return defaultRubricScore
}

func parseIssues(text string) []string {
	idx := strings.Index(text, "Issues:")
	if idx < 0 {
		return nil
	}
	section := strings.TrimSpace(text[idx+len("Issues:"):])
	section = strings.Trim(section, "[]")
	var issues []string
	for _, part := range regexp.MustCompile(`[,;]`).Split(section, -1) {
		if p := strings.TrimSpace(part); p != "" && !strings.EqualFold(p, "none") {
			issues = append(issues, p)
		}
	}
	return issues
}

func containsAny(lower string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

var misleadingWordPatterns = func() map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp, len(misleadingPatterns))
	for _, w := range misleadingPatterns {
		out[w] = regexp.MustCompile(`\b` + regexp.QuoteMeta(w) + `\b`)
	}
	return out
}()

func containsWord(lower, word string) bool {
	return misleadingWordPatterns[word].MatchString(lower)
}
