// Package analyzer implements the translation-readiness pipeline: it
// extracts text segments from a parsed document, classifies them as
// translatable or noise, hints at scripts and languages, checks segment
// sizes against the service limit, inventories formatting, and combines
// everything into a scored readiness verdict.
//
// Every stage is a pure function over immutable inputs; the pipeline has no
// side effects and no failure modes of its own. The only fatal error is an
// unreadable document, which is the caller's (docx.Read) responsibility.
package analyzer

import (
	"fmt"

	"github.com/zombar/docready/internal/docx"
	"github.com/zombar/docready/internal/models"
)

// Limits imposed by the downstream translation service. The 5000-character
// segment limit and the 0.8 readiness threshold are service-compatibility
// constants, preserved exactly rather than re-derived.
const (
	minTranslatableChars = 3
	minTranslatableWords = 1

	// MaxSegmentLength is the largest segment the translation service
	// accepts without splitting, in characters (runes).
	MaxSegmentLength = 5000

	optimalAverageRatio = 0.8
	minTextDensity      = 0.1
	readinessThreshold  = 0.8
)

// Analyzer runs the readiness pipeline
type Analyzer struct{}

// New creates a new Analyzer
func New() *Analyzer {
	return &Analyzer{}
}

// Analyze runs the full pipeline over a parsed document. Stages run in
// dependency order: extraction feeds classification, language hinting and
// segmentation; formatting is surveyed from the raw document; the scorer
// consumes all four results.
func (a *Analyzer) Analyze(doc *docx.Document) models.Analysis {
	structure := ExtractContent(doc)
	translation := AnalyzeTranslationReadiness(structure)
	languages := DetectLanguages(structure.CombinedText)
	segmentation := AnalyzeSegmentation(structure.Segments)
	formatting := SurveyFormatting(doc)
	verdict := ScoreReadiness(structure, translation, languages, segmentation)

	return models.Analysis{
		Ready:          verdict.Ready,
		ReadinessScore: verdict.Score,
		Structure:      structure,
		Translation:    translation,
		Languages:      languages,
		Segmentation:   segmentation,
		Formatting:     formatting,
		Compatibility:  verdict,
	}
}

// AnalyzeFile reads and analyzes the document at path. An unreadable
// document yields a *docx.ReadError and no partial result.
func (a *Analyzer) AnalyzeFile(path string) (models.Analysis, error) {
	doc, err := docx.Read(path)
	if err != nil {
		return models.Analysis{}, err
	}
	return a.Analyze(doc), nil
}

// Summarize projects an Analysis into the concise caller-facing view,
// truncating recommendations to the top three.
func Summarize(analysis models.Analysis) models.Summary {
	recommendations := analysis.Compatibility.Recommendations
	if len(recommendations) > 3 {
		recommendations = recommendations[:3]
	}

	return models.Summary{
		ReadyForTranslation: analysis.Ready,
		ReadinessScore:      fmt.Sprintf("%.1f%%", analysis.ReadinessScore*100),
		TranslatableWords:   analysis.Translation.TranslatableWords,
		DetectedLanguages:   analysis.Languages.LikelyLanguages,
		ContentTypes:        analysis.Translation.ContentTypes,
		KeyRecommendations:  recommendations,
		AzureCompatible:     analysis.Compatibility.Ready,
	}
}
