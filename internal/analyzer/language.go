package analyzer

import (
	"regexp"

	"github.com/zombar/docready/internal/models"
)

// supportedLanguages is the translation service's language allowlist
var supportedLanguages = map[string]bool{
	"en": true, "es": true, "fr": true, "de": true, "it": true,
	"pt": true, "ru": true, "zh": true, "ja": true, "ko": true,
	"ar": true, "hi": true, "tr": true, "pl": true, "nl": true,
	"sv": true, "da": true, "no": true, "fi": true,
}

// scriptHint maps a character-range signature to a script name and the
// plausible languages for it. Hints are checked in fixed order so language
// deduplication is deterministic across runs.
type scriptHint struct {
	script    string
	pattern   *regexp.Regexp
	languages []string
}

var scriptHints = []scriptHint{
	{"Latin", regexp.MustCompile(`[a-zA-Z]`), []string{"en", "es", "fr", "de", "it"}},
	{"Latin_Extended", regexp.MustCompile(`[àáâãäåæçèéêëìíîïðñòóôõöøùúûüýþÿ]`), []string{"es", "fr", "de", "pt"}},
	{"Chinese", regexp.MustCompile(`[\x{4e00}-\x{9fff}]`), []string{"zh"}},
	{"Japanese", regexp.MustCompile(`[\x{3040}-\x{309f}\x{30a0}-\x{30ff}]`), []string{"ja"}},
	{"Arabic", regexp.MustCompile(`[\x{0600}-\x{06ff}]`), []string{"ar"}},
}

// DetectLanguages scans the combined text for script signatures and emits
// plausible language hints. This is character-range matching, not
// statistical identification: confidence never exceeds "medium". Empty
// text yields empty sets with confidence "low".
func DetectLanguages(text string) models.LanguageHints {
	hints := models.LanguageHints{
		DetectedScripts: []string{},
		LikelyLanguages: []string{},
		Confidence:      "low",
		AzureSupported:  true,
	}

	if text == "" {
		return hints
	}

	seen := make(map[string]bool)
	for _, hint := range scriptHints {
		if !hint.pattern.MatchString(text) {
			continue
		}
		hints.DetectedScripts = append(hints.DetectedScripts, hint.script)
		for _, lang := range hint.languages {
			if !seen[lang] {
				seen[lang] = true
				hints.LikelyLanguages = append(hints.LikelyLanguages, lang)
			}
		}
	}

	for _, lang := range hints.LikelyLanguages {
		if !supportedLanguages[lang] {
			hints.AzureSupported = false
		}
	}

	hints.IsMultilingual = len(hints.DetectedScripts) > 1
	if len(hints.LikelyLanguages) > 0 {
		hints.Confidence = "medium"
	}

	return hints
}
