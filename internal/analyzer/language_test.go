package analyzer

import (
	"reflect"
	"testing"
)

func TestDetectLanguages(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		scripts       []string
		languages     []string
		multilingual  bool
		confidence    string
		azureSupports bool
	}{
		{
			name:          "plain english",
			input:         "Hello world",
			scripts:       []string{"Latin"},
			languages:     []string{"en", "es", "fr", "de", "it"},
			multilingual:  false,
			confidence:    "medium",
			azureSupports: true,
		},
		{
			name:          "accented latin",
			input:         "café résumé",
			scripts:       []string{"Latin", "Latin_Extended"},
			languages:     []string{"en", "es", "fr", "de", "it", "pt"},
			multilingual:  true,
			confidence:    "medium",
			azureSupports: true,
		},
		{
			name:          "chinese",
			input:         "你好世界",
			scripts:       []string{"Chinese"},
			languages:     []string{"zh"},
			multilingual:  false,
			confidence:    "medium",
			azureSupports: true,
		},
		{
			name:          "japanese kana",
			input:         "こんにちは",
			scripts:       []string{"Japanese"},
			languages:     []string{"ja"},
			multilingual:  false,
			confidence:    "medium",
			azureSupports: true,
		},
		{
			name:          "arabic",
			input:         "مرحبا",
			scripts:       []string{"Arabic"},
			languages:     []string{"ar"},
			multilingual:  false,
			confidence:    "medium",
			azureSupports: true,
		},
		{
			name:          "mixed english and chinese",
			input:         "Hello 世界",
			scripts:       []string{"Latin", "Chinese"},
			languages:     []string{"en", "es", "fr", "de", "it", "zh"},
			multilingual:  true,
			confidence:    "medium",
			azureSupports: true,
		},
		{
			name:          "empty text",
			input:         "",
			scripts:       []string{},
			languages:     []string{},
			multilingual:  false,
			confidence:    "low",
			azureSupports: true,
		},
		{
			name:          "digits only",
			input:         "12345",
			scripts:       []string{},
			languages:     []string{},
			multilingual:  false,
			confidence:    "low",
			azureSupports: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hints := DetectLanguages(tt.input)

			if !reflect.DeepEqual(hints.DetectedScripts, tt.scripts) {
				t.Errorf("scripts: got %v, want %v", hints.DetectedScripts, tt.scripts)
			}
			if !reflect.DeepEqual(hints.LikelyLanguages, tt.languages) {
				t.Errorf("languages: got %v, want %v", hints.LikelyLanguages, tt.languages)
			}
			if hints.IsMultilingual != tt.multilingual {
				t.Errorf("multilingual: got %v, want %v", hints.IsMultilingual, tt.multilingual)
			}
			if hints.Confidence != tt.confidence {
				t.Errorf("confidence: got %q, want %q", hints.Confidence, tt.confidence)
			}
			if hints.AzureSupported != tt.azureSupports {
				t.Errorf("azure supported: got %v, want %v", hints.AzureSupported, tt.azureSupports)
			}
		})
	}
}

func TestDetectLanguagesDeterministicOrder(t *testing.T) {
	// Latin and Latin_Extended overlap on es, fr and de; dedup keeps the
	// first occurrence so order must be stable across runs.
	for i := 0; i < 10; i++ {
		hints := DetectLanguages("café")
		expected := []string{"en", "es", "fr", "de", "it", "pt"}
		if !reflect.DeepEqual(hints.LikelyLanguages, expected) {
			t.Fatalf("run %d: got %v, want %v", i, hints.LikelyLanguages, expected)
		}
	}
}
