package models

import "time"

// Report represents a stored document readiness report
type Report struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Analysis  Analysis  `json:"analysis"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Analysis contains all results from the readiness pipeline for one document
type Analysis struct {
	Ready          bool    `json:"azure_translate_ready"`
	ReadinessScore float64 `json:"readiness_score"`

	Structure     ContentStructure    `json:"content_structure"`
	Translation   TranslationAnalysis `json:"translation_analysis"`
	Languages     LanguageHints       `json:"language_analysis"`
	Segmentation  SegmentationReport  `json:"segmentation_analysis"`
	Formatting    FormattingReport    `json:"formatting_analysis"`
	Compatibility ReadinessVerdict    `json:"azure_compatibility"`
}

// SegmentSource identifies where in the document a segment was extracted from
type SegmentSource string

const (
	SourceParagraph SegmentSource = "paragraph"
	SourceTableCell SegmentSource = "table_cell"
	SourceHeader    SegmentSource = "header"
	SourceFooter    SegmentSource = "footer"
)

// Segment is one extracted unit of text with its provenance tag.
// Segments are immutable once extracted; order is document traversal order.
type Segment struct {
	Text   string        `json:"text"`
	Source SegmentSource `json:"source"`
}

// ContentStructure aggregates all extracted segments and derived counts.
// CombinedText is the segments' raw text joined by single spaces; header and
// footer segments contribute their raw text only, never a source label.
type ContentStructure struct {
	Segments          []Segment `json:"segments"`
	CombinedText      string    `json:"all_text"`
	ParagraphCount    int       `json:"paragraph_count"`
	TableCount        int       `json:"table_count"`
	HeaderFooterCount int       `json:"header_footer_count"`
	TotalElements     int       `json:"total_elements"`
}

// TranslationAnalysis aggregates per-segment translatability classification
type TranslationAnalysis struct {
	HasTranslatableContent  bool     `json:"has_translatable_content"`
	TranslatableSegments    int      `json:"translatable_segments"`
	NonTranslatableSegments int      `json:"non_translatable_segments"`
	TotalCharacters         int      `json:"total_characters"`
	TotalWords              int      `json:"total_words"`
	TranslatableCharacters  int      `json:"translatable_characters"`
	TranslatableWords       int      `json:"translatable_words"`
	TextDensity             float64  `json:"text_density"`
	ContentTypes            []string `json:"content_types"`
	TranslationComplexity   string   `json:"translation_complexity"` // none, low, medium, high
}

// LanguageHints holds script-based language detection results
type LanguageHints struct {
	DetectedScripts []string `json:"detected_scripts"`
	LikelyLanguages []string `json:"likely_languages"`
	IsMultilingual  bool     `json:"is_multilingual"`
	Confidence      string   `json:"confidence"` // low, medium
	AzureSupported  bool     `json:"azure_supported"`
}

// SegmentationReport describes segment sizes against the service limit
type SegmentationReport struct {
	TotalSegments          int     `json:"total_segments"`
	SegmentsWithinLimit    int     `json:"segments_within_limit"`
	SegmentsExceedingLimit int     `json:"segments_exceeding_limit"`
	AverageSegmentLength   float64 `json:"average_segment_length"`
	MaxSegmentLength       int     `json:"max_segment_length"`
	RequiresSegmentation   bool    `json:"requires_segmentation"`
	OptimalForTranslation  bool    `json:"optimal_for_translation"`
}

// FormattingReport inventories presentational features present in a document
type FormattingReport struct {
	FormattingElements    []string `json:"formatting_elements"`
	HasFormatting         bool     `json:"has_formatting"`
	ComplexFormatting     bool     `json:"complex_formatting"`
	PreservationSupported bool     `json:"preservation_supported"`
}

// CriterionCheck is one readiness criterion and whether the document passed it
type CriterionCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

// ReadinessVerdict combines the six fixed criteria into a score and
// remediation recommendations. Checks are in fixed criterion order;
// Recommendations holds one entry per failed criterion plus a final summary
// line. Callers wanting a short view truncate to the first three entries.
type ReadinessVerdict struct {
	Checks          []CriterionCheck `json:"checks"`
	Score           float64          `json:"score"`
	Ready           bool             `json:"is_ready"`
	Recommendations []string         `json:"recommendations"`
}

// Summary is the concise caller-facing projection of an Analysis
type Summary struct {
	ReadyForTranslation bool     `json:"ready_for_translation"`
	ReadinessScore      string   `json:"readiness_score"`
	TranslatableWords   int      `json:"translatable_words"`
	DetectedLanguages   []string `json:"detected_languages"`
	ContentTypes        []string `json:"content_types"`
	KeyRecommendations  []string `json:"key_recommendations"`
	AzureCompatible     bool     `json:"azure_compatibility"`
}

// Operation is one append-only audit trail record
type Operation struct {
	ID        int64          `json:"id"`
	Operation string         `json:"operation"`
	Filename  string         `json:"filename"`
	Status    string         `json:"status"` // success, error
	Details   map[string]any `json:"details,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ProcessingSummary aggregates audit trail records over a time window
type ProcessingSummary struct {
	TotalOperations      int            `json:"total_operations"`
	SuccessfulOperations int            `json:"successful_operations"`
	FailedOperations     int            `json:"failed_operations"`
	OperationsByType     map[string]int `json:"operations_by_type"`
	FilesProcessed       []string       `json:"files_processed"`
	UniqueFilesProcessed int            `json:"unique_files_processed"`
	TimeRangeHours       int            `json:"time_range_hours"`
}
