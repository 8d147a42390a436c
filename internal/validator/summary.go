package validator

import (
	"fmt"

	"smart-tutor-go/internal/model"
)

// Summary renders a short human-readable digest of a validation report.
func Summary(report model.ValidationReport) string {
	status := "needs improvement"
	switch {
	case report.OverallScore >= 0.8:
		status = "excellent"
	case report.OverallScore >= 0.6:
		status = "good"
	}

	improvement := "no improvements needed"
	if report.ImprovementsMade {
		improvement = "response improved"
	}

	return fmt.Sprintf("%s (score: %.2f/1.0) - safety: %.2f, quality: %.2f, accuracy: %.2f - %s",
		status, report.OverallScore, report.SafetyScore, report.QualityScore, report.AccuracyScore, improvement)
}
