package analyzer

import (
	"testing"

	"github.com/zombar/docready/internal/docx"
	"github.com/zombar/docready/internal/models"
)

func para(text string) docx.Paragraph {
	return docx.Paragraph{Runs: []docx.Run{{Text: text}}}
}

func TestExtractContent(t *testing.T) {
	doc := &docx.Document{
		Paragraphs: []docx.Paragraph{
			para("First paragraph"),
			para("   "),
			para("Second paragraph"),
		},
		Tables: []docx.Table{
			{Rows: []docx.Row{
				{Cells: []docx.Cell{
					{Paragraphs: []docx.Paragraph{para("Cell one")}},
					{Paragraphs: []docx.Paragraph{para("")}},
				}},
				{Cells: []docx.Cell{
					{Paragraphs: []docx.Paragraph{para("Cell two")}},
				}},
			}},
		},
		Headers: []docx.Paragraph{para("Page header")},
		Footers: []docx.Paragraph{para("Page footer")},
	}

	structure := ExtractContent(doc)

	if structure.ParagraphCount != 2 {
		t.Errorf("expected 2 paragraphs, got %d", structure.ParagraphCount)
	}
	if structure.TableCount != 1 {
		t.Errorf("expected 1 table, got %d", structure.TableCount)
	}
	if structure.HeaderFooterCount != 2 {
		t.Errorf("expected 2 header/footer segments, got %d", structure.HeaderFooterCount)
	}
	if structure.TotalElements != 6 {
		t.Errorf("expected 6 total elements, got %d", structure.TotalElements)
	}

	expectedOrder := []struct {
		text   string
		source models.SegmentSource
	}{
		{"First paragraph", models.SourceParagraph},
		{"Second paragraph", models.SourceParagraph},
		{"Cell one", models.SourceTableCell},
		{"Cell two", models.SourceTableCell},
		{"Page header", models.SourceHeader},
		{"Page footer", models.SourceFooter},
	}
	for i, expected := range expectedOrder {
		if structure.Segments[i].Text != expected.text {
			t.Errorf("segment %d: expected %q, got %q", i, expected.text, structure.Segments[i].Text)
		}
		if structure.Segments[i].Source != expected.source {
			t.Errorf("segment %d: expected source %q, got %q", i, expected.source, structure.Segments[i].Source)
		}
	}

	expectedCombined := "First paragraph Second paragraph Cell one Cell two Page header Page footer"
	if structure.CombinedText != expectedCombined {
		t.Errorf("combined text mismatch:\n got  %q\n want %q", structure.CombinedText, expectedCombined)
	}
}

func TestExtractContentEmptyDocument(t *testing.T) {
	structure := ExtractContent(&docx.Document{})

	if structure.TotalElements != 0 {
		t.Errorf("expected 0 elements, got %d", structure.TotalElements)
	}
	if structure.CombinedText != "" {
		t.Errorf("expected empty combined text, got %q", structure.CombinedText)
	}
	if structure.Segments == nil {
		t.Error("segments should be an empty slice, not nil")
	}
}

func TestExtractContentEmptyTableNotCounted(t *testing.T) {
	doc := &docx.Document{
		Tables: []docx.Table{
			{Rows: []docx.Row{
				{Cells: []docx.Cell{{Paragraphs: []docx.Paragraph{para("  ")}}}},
			}},
		},
	}

	structure := ExtractContent(doc)

	if structure.TableCount != 0 {
		t.Errorf("table with only blank cells should not count, got %d", structure.TableCount)
	}
}

func TestExtractContentDeterministic(t *testing.T) {
	doc := &docx.Document{
		Paragraphs: []docx.Paragraph{para("Alpha"), para("Beta")},
		Headers:    []docx.Paragraph{para("Header text")},
	}

	first := ExtractContent(doc)
	second := ExtractContent(doc)

	if first.CombinedText != second.CombinedText {
		t.Error("repeated extraction should be identical")
	}
	if len(first.Segments) != len(second.Segments) {
		t.Error("repeated extraction should yield the same segment count")
	}
}
