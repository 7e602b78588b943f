package analyzer

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	technicalTermPattern = regexp.MustCompile(`\b[A-Z]{2,}\b`)
	numberRunPattern     = regexp.MustCompile(`\d+`)
	specialCharPattern   = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	sentenceEndPattern   = regexp.MustCompile(`[.!?]+`)
)

// complexitySignal is one content characteristic that makes a document
// harder to translate. Signals are independent; each present signal adds
// one point to the complexity score.
type complexitySignal struct {
	name    string
	present func(string) bool
}

var complexitySignals = []complexitySignal{
	{"technical_terms", func(s string) bool {
		// Runs of uppercase letters read as acronyms or technical terms
		return len(technicalTermPattern.FindAllString(s, -1)) > 5
	}},
	{"number_density", func(s string) bool {
		return len(numberRunPattern.FindAllString(s, -1)) > 10
	}},
	{"special_characters", func(s string) bool {
		special := len(specialCharPattern.FindAllString(s, -1))
		return float64(special) > float64(utf8.RuneCountInString(s))*0.1
	}},
	{"long_sentences", func(s string) bool {
		sentences := sentenceEndPattern.Split(s, -1)
		words := 0
		for _, sentence := range sentences {
			if strings.TrimSpace(sentence) != "" {
				words += len(strings.Fields(sentence))
			}
		}
		avg := float64(words) / float64(max(len(sentences), 1))
		return avg > 25
	}},
}

// assessComplexity grades how demanding the combined text is to translate.
// Empty text is "none"; otherwise zero signals is "low", one or two is
// "medium", three or more is "high".
func assessComplexity(text string) string {
	if text == "" {
		return "none"
	}

	score := 0
	for _, signal := range complexitySignals {
		if signal.present(text) {
			score++
		}
	}

	switch {
	case score == 0:
		return "low"
	case score <= 2:
		return "medium"
	default:
		return "high"
	}
}
