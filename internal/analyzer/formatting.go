package analyzer

import (
	"strings"

	"github.com/zombar/docready/internal/docx"
	"github.com/zombar/docready/internal/models"
)

// SurveyFormatting inventories which presentational features appear in the
// document: run-level flags across body paragraphs, table presence, and
// non-empty header/footer sections. The downstream service preserves all
// inventoried features, so preservation is always supported; more than
// three distinct features marks the formatting complex. Feature names are
// emitted in a fixed order for reproducible output.
func SurveyFormatting(doc *docx.Document) models.FormattingReport {
	var bold, italic, underline, fontSize, fontColor bool

	for _, p := range doc.Paragraphs {
		for _, run := range p.Runs {
			if run.Bold {
				bold = true
			}
			if run.Italic {
				italic = true
			}
			if run.Underline {
				underline = true
			}
			if run.HasFontSize {
				fontSize = true
			}
			if run.HasFontColor {
				fontColor = true
			}
		}
	}

	tables := len(doc.Tables) > 0
	headers := anyNonEmpty(doc.Headers)
	footers := anyNonEmpty(doc.Footers)

	elements := []string{}
	for _, feature := range []struct {
		name    string
		present bool
	}{
		{"bold", bold},
		{"italic", italic},
		{"underline", underline},
		{"font_size", fontSize},
		{"font_color", fontColor},
		{"tables", tables},
		{"headers", headers},
		{"footers", footers},
	} {
		if feature.present {
			elements = append(elements, feature.name)
		}
	}

	return models.FormattingReport{
		FormattingElements:    elements,
		HasFormatting:         len(elements) > 0,
		ComplexFormatting:     len(elements) > 3,
		PreservationSupported: true,
	}
}

func anyNonEmpty(paragraphs []docx.Paragraph) bool {
	for _, p := range paragraphs {
		if strings.TrimSpace(p.Text()) != "" {
			return true
		}
	}
	return false
}
