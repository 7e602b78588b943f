// Package docx reads and validates Open XML word-processing documents.
// A .docx file is a zip archive; the reader parses the parts the readiness
// pipeline needs (body paragraphs, tables, header/footer parts) into an
// immutable document tree and ignores everything else.
package docx

import (
	"fmt"
	"strings"
)

// Run is a contiguous span of text sharing one set of formatting flags
type Run struct {
	Text         string
	Bold         bool
	Italic       bool
	Underline    bool
	HasFontSize  bool
	HasFontColor bool
}

// Paragraph is an ordered list of runs
type Paragraph struct {
	Style string
	Runs  []Run
}

// Text returns the concatenated run text of the paragraph
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Cell is one table cell containing paragraphs
type Cell struct {
	Paragraphs []Paragraph
}

// Text returns the cell's paragraph texts joined by newlines
func (c Cell) Text() string {
	parts := make([]string, 0, len(c.Paragraphs))
	for _, p := range c.Paragraphs {
		parts = append(parts, p.Text())
	}
	return strings.Join(parts, "\n")
}

// Row is one table row
type Row struct {
	Cells []Cell
}

// Table is a grid of rows
type Table struct {
	Rows []Row
}

// Document is a parsed word-processing document. Header and footer
// paragraphs are collected across all header/footer parts, in part-name
// order so repeated reads traverse identically.
type Document struct {
	Paragraphs []Paragraph
	Tables     []Table
	Headers    []Paragraph
	Footers    []Paragraph
}

// ReadError is the single fatal error of the analysis pipeline: the
// document could not be opened or parsed at all.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to read document %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
