package analyzer

import (
	"fmt"

	"github.com/zombar/docready/internal/models"
)

// readinessInput bundles the upstream stage results the scorer consumes
type readinessInput struct {
	structure    models.ContentStructure
	translation  models.TranslationAnalysis
	languages    models.LanguageHints
	segmentation models.SegmentationReport
}

// readinessCriteria is the fixed, ordered criterion table. Each entry
// carries its static remediation message; adding or adjusting a criterion
// means adding a row here, not touching the scoring loop.
var readinessCriteria = []struct {
	name           string
	recommendation string
	passed         func(in readinessInput) bool
}{
	{
		name:           "Has sufficient translatable content",
		recommendation: "Add more meaningful text content (minimum 3 characters, 1 word)",
		passed: func(in readinessInput) bool {
			return in.translation.HasTranslatableContent
		},
	},
	{
		name:           "Good text density",
		recommendation: "Increase ratio of translatable text to total content",
		passed: func(in readinessInput) bool {
			return in.translation.TextDensity > minTextDensity
		},
	},
	{
		name:           "Optimal segment sizes",
		recommendation: fmt.Sprintf("Break large segments into smaller parts (max %d chars)", MaxSegmentLength),
		passed: func(in readinessInput) bool {
			return !in.segmentation.RequiresSegmentation
		},
	},
	{
		name:           "Supported languages detected",
		recommendation: "Verify document language is supported by Azure AI Translate",
		passed: func(in readinessInput) bool {
			return in.languages.AzureSupported
		},
	},
	{
		name:           "Valid content structure",
		recommendation: "Ensure document has proper paragraph or table structure",
		passed: func(in readinessInput) bool {
			return in.structure.TotalElements > 0
		},
	},
	{
		name:           "Format suitable for preservation",
		recommendation: "Verify document formatting is compatible with DOCX preservation",
		passed: func(in readinessInput) bool {
			return in.translation.TotalWords > 0
		},
	},
}

// ScoreReadiness evaluates the six fixed criteria and combines them into a
// verdict. Score is the passed fraction; ready requires at least 0.8, so a
// single failure (5/6 = 0.833) still passes while two failures (0.667) do
// not. Recommendations carry one static message per failed criterion in
// criterion order, then a final summary line.
func ScoreReadiness(
	structure models.ContentStructure,
	translation models.TranslationAnalysis,
	languages models.LanguageHints,
	segmentation models.SegmentationReport,
) models.ReadinessVerdict {
	in := readinessInput{
		structure:    structure,
		translation:  translation,
		languages:    languages,
		segmentation: segmentation,
	}

	verdict := models.ReadinessVerdict{
		Checks:          make([]models.CriterionCheck, 0, len(readinessCriteria)),
		Recommendations: []string{},
	}

	passed := 0
	for _, criterion := range readinessCriteria {
		ok := criterion.passed(in)
		verdict.Checks = append(verdict.Checks, models.CriterionCheck{Name: criterion.name, Passed: ok})
		if ok {
			passed++
		} else {
			verdict.Recommendations = append(verdict.Recommendations, criterion.recommendation)
		}
	}

	verdict.Score = float64(passed) / float64(len(readinessCriteria))
	verdict.Ready = verdict.Score >= readinessThreshold

	if verdict.Ready {
		verdict.Recommendations = append(verdict.Recommendations,
			"Document is ready for Azure AI Translate service")
	} else {
		verdict.Recommendations = append(verdict.Recommendations,
			fmt.Sprintf("Address %d issues before translation", len(readinessCriteria)-passed))
	}

	return verdict
}
