package model

// FinalCheck holds the deterministic structural checks on the final text.
type FinalCheck struct {
	Passed bool            `json:"passed"`
	Checks map[string]bool `json:"checks"`
	Score  float64         `json:"score"`
}

// ValidationReport scores one generation attempt. OverallScore is always the
// arithmetic mean of the three component scores, each in [0,1].
type ValidationReport struct {
	SafetyScore      float64    `json:"safety_score"`
	QualityScore     float64    `json:"quality_score"`
	AccuracyScore    float64    `json:"accuracy_score"`
	OverallScore     float64    `json:"overall_score"`
	SafetyIssues     []string   `json:"safety_issues"`
	QualityIssues    []string   `json:"quality_issues"`
	AccuracyIssues   []string   `json:"accuracy_issues"`
	ImprovementsMade bool       `json:"improvements_made"`
	FinalCheck       FinalCheck `json:"final_check"`
}

// Issues returns all issue lists flattened for display.
func (r ValidationReport) Issues() []string {
	out := make([]string, 0, len(r.SafetyIssues)+len(r.QualityIssues)+len(r.AccuracyIssues))
	out = append(out, r.SafetyIssues...)
	out = append(out, r.QualityIssues...)
	out = append(out, r.AccuracyIssues...)
	return out
}
