package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/zombar/docready/internal/models"
)

var (
	pureNumberPattern = regexp.MustCompile(`^\d+\.?\d*$`)
	datePattern       = regexp.MustCompile(`^\d{1,2}[/\-.]\d{1,2}[/\-.]\d{2,4}$`)
	urlEmailPattern   = regexp.MustCompile(`^https?://|^www\.|@.*\.[a-z]{2,}$`)

	// Word characters are letters, digits and underscore in any script,
	// matching the behavior the classification rules were tuned against.
	symbolsOnlyPattern = regexp.MustCompile(`^[^\p{L}\p{N}_\s]+$`)
	wordCharsPattern   = regexp.MustCompile(`[\p{L}\p{N}_]+`)

	// latinLetterPattern covers ASCII letters plus the Latin-extended
	// accented range. This is a known heuristic gap, preserved on purpose:
	// segments written entirely in non-Latin scripts (CJK, Arabic,
	// Cyrillic) carry meaning but are classified as non-translatable by
	// this rule.
	latinLetterPattern = regexp.MustCompile(`[a-zA-ZàáâãäåæçèéêëìíîïðñòóôõöøùúûüýþÿÀ-Ÿ]`)
)

// classificationRule rejects a segment as non-translatable when its match
// function returns true. Rules are evaluated in order with short-circuit on
// the first match; keeping them as a table keeps each rule independently
// testable, in particular the Latin-only letter check.
type classificationRule struct {
	name  string
	match func(string) bool
}

var nonTranslatableRules = []classificationRule{
	{"too_short", func(s string) bool {
		return utf8.RuneCountInString(s) < minTranslatableChars
	}},
	{"pure_number", pureNumberPattern.MatchString},
	{"date", datePattern.MatchString},
	{"url_or_email", func(s string) bool {
		return urlEmailPattern.MatchString(strings.ToLower(s))
	}},
	{"symbols_only", symbolsOnlyPattern.MatchString},
	{"no_latin_letters", func(s string) bool {
		return !latinLetterPattern.MatchString(s)
	}},
	{"too_few_word_chars", func(s string) bool {
		words := wordCharsPattern.FindAllString(s, -1)
		return utf8.RuneCountInString(strings.Join(words, " ")) < minTranslatableChars
	}},
}

// IsSegmentTranslatable reports whether a text segment carries
// human-meaningful content worth sending to the translation service.
// It is a pure, total function: any input string yields a boolean.
func IsSegmentTranslatable(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, rule := range nonTranslatableRules {
		if rule.match(trimmed) {
			return false
		}
	}
	return true
}

// AnalyzeTranslationReadiness classifies every segment and aggregates
// character and word counts over the translatable ones. Density is the
// ratio of translatable to total characters; both are rune counts.
// Translation complexity is graded over the full combined text, not just
// the translatable segments.
func AnalyzeTranslationReadiness(structure models.ContentStructure) models.TranslationAnalysis {
	analysis := models.TranslationAnalysis{
		TotalCharacters: utf8.RuneCountInString(structure.CombinedText),
		TotalWords:      len(strings.Fields(structure.CombinedText)),
		ContentTypes:    []string{},
	}

	var translatableParts []string
	for _, segment := range structure.Segments {
		if IsSegmentTranslatable(segment.Text) {
			analysis.TranslatableSegments++
			translatableParts = append(translatableParts, segment.Text)
		} else {
			analysis.NonTranslatableSegments++
		}
	}

	if len(translatableParts) > 0 {
		combined := strings.Join(translatableParts, " ")
		analysis.TranslatableCharacters = utf8.RuneCountInString(combined)
		analysis.TranslatableWords = len(strings.Fields(combined))
		analysis.HasTranslatableContent = analysis.TranslatableCharacters >= minTranslatableChars &&
			analysis.TranslatableWords >= minTranslatableWords
	}

	if analysis.TotalCharacters > 0 {
		analysis.TextDensity = float64(analysis.TranslatableCharacters) / float64(analysis.TotalCharacters)
	}

	if structure.ParagraphCount > 0 {
		analysis.ContentTypes = append(analysis.ContentTypes, "text_paragraphs")
	}
	if structure.TableCount > 0 {
		analysis.ContentTypes = append(analysis.ContentTypes, "structured_tables")
	}
	if structure.HeaderFooterCount > 0 {
		analysis.ContentTypes = append(analysis.ContentTypes, "headers_footers")
	}

	analysis.TranslationComplexity = assessComplexity(structure.CombinedText)

	return analysis
}
