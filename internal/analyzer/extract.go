package analyzer

import (
	"strings"

	"github.com/zombar/docready/internal/docx"
	"github.com/zombar/docready/internal/models"
)

// ExtractContent walks the document tree and produces the ordered segment
// list plus derived counts. Traversal order is fixed: body paragraphs,
// then tables row-major and cell-major, then header paragraphs, then footer
// paragraphs. The order carries no meaning beyond reproducibility, but it
// must be stable so repeated analyses are bit-identical.
//
// A paragraph or cell contributes a segment only when its trimmed text is
// non-empty. Header and footer segments are tagged with their provenance;
// the tag is metadata only and their raw text joins the combined pool so
// character counts are not skewed by labels.
func ExtractContent(doc *docx.Document) models.ContentStructure {
	structure := models.ContentStructure{Segments: []models.Segment{}}

	for _, p := range doc.Paragraphs {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			continue
		}
		structure.Segments = append(structure.Segments, models.Segment{Text: text, Source: models.SourceParagraph})
		structure.ParagraphCount++
	}

	for _, table := range doc.Tables {
		contributed := false
		for _, row := range table.Rows {
			for _, cell := range row.Cells {
				text := strings.TrimSpace(cell.Text())
				if text == "" {
					continue
				}
				structure.Segments = append(structure.Segments, models.Segment{Text: text, Source: models.SourceTableCell})
				contributed = true
			}
		}
		if contributed {
			structure.TableCount++
		}
	}

	for _, p := range doc.Headers {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			continue
		}
		structure.Segments = append(structure.Segments, models.Segment{Text: text, Source: models.SourceHeader})
		structure.HeaderFooterCount++
	}

	for _, p := range doc.Footers {
		text := strings.TrimSpace(p.Text())
		if text == "" {
			continue
		}
		structure.Segments = append(structure.Segments, models.Segment{Text: text, Source: models.SourceFooter})
		structure.HeaderFooterCount++
	}

	texts := make([]string, 0, len(structure.Segments))
	for _, s := range structure.Segments {
		texts = append(texts, s.Text)
	}
	structure.CombinedText = strings.Join(texts, " ")
	structure.TotalElements = len(structure.Segments)

	return structure
}
