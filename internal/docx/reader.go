package docx

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
)

// XML shapes for the word-processing parts. Field tags match local element
// names only, so the w: namespace prefix is irrelevant to decoding.
type xmlDocument struct {
	Body xmlBody `xml:"body"`
}

type xmlBody struct {
	Paragraphs []xmlParagraph `xml:"p"`
	Tables     []xmlTable     `xml:"tbl"`
}

type xmlHeaderFooter struct {
	Paragraphs []xmlParagraph `xml:"p"`
}

type xmlParagraph struct {
	Props *xmlParaProps `xml:"pPr"`
	Runs  []xmlRun      `xml:"r"`
}

type xmlParaProps struct {
	Style *xmlValAttr `xml:"pStyle"`
}

type xmlRun struct {
	Props *xmlRunProps `xml:"rPr"`
	Texts []string     `xml:"t"`
}

type xmlRunProps struct {
	Bold      *xmlValAttr `xml:"b"`
	Italic    *xmlValAttr `xml:"i"`
	Underline *xmlValAttr `xml:"u"`
	Size      *xmlValAttr `xml:"sz"`
	Color     *xmlValAttr `xml:"color"`
}

type xmlValAttr struct {
	Val string `xml:"val,attr"`
}

type xmlTable struct {
	Rows []xmlTableRow `xml:"tr"`
}

type xmlTableRow struct {
	Cells []xmlTableCell `xml:"tc"`
}

type xmlTableCell struct {
	Paragraphs []xmlParagraph `xml:"p"`
}

// Read parses the document at path into a Document tree. Any failure is
// wrapped in a ReadError; no partial document is returned.
func Read(filePath string) (*Document, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, &ReadError{Path: filePath, Err: fmt.Errorf("not a valid zip archive: %w", err)}
	}
	defer zr.Close()

	doc := &Document{}

	body, err := readDocumentBody(&zr.Reader)
	if err != nil {
		return nil, &ReadError{Path: filePath, Err: err}
	}
	for _, p := range body.Paragraphs {
		doc.Paragraphs = append(doc.Paragraphs, convertParagraph(p))
	}
	for _, t := range body.Tables {
		doc.Tables = append(doc.Tables, convertTable(t))
	}

	headers, footers, err := readHeadersFooters(&zr.Reader)
	if err != nil {
		return nil, &ReadError{Path: filePath, Err: err}
	}
	doc.Headers = headers
	doc.Footers = footers

	return doc, nil
}

func readDocumentBody(zr *zip.Reader) (*xmlBody, error) {
	f := findEntry(zr, "word/document.xml")
	if f == nil {
		return nil, fmt.Errorf("missing word/document.xml")
	}

	var parsed xmlDocument
	if err := decodeEntry(f, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse word/document.xml: %w", err)
	}
	return &parsed.Body, nil
}

func readHeadersFooters(zr *zip.Reader) (headers, footers []Paragraph, err error) {
	var names []string
	for _, f := range zr.File {
		base := path.Base(f.Name)
		if path.Dir(f.Name) == "word" &&
			(strings.HasPrefix(base, "header") || strings.HasPrefix(base, "footer")) &&
			strings.HasSuffix(base, ".xml") {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		f := findEntry(zr, name)
		var parsed xmlHeaderFooter
		if err := decodeEntry(f, &parsed); err != nil {
			return nil, nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		for _, p := range parsed.Paragraphs {
			if strings.HasPrefix(path.Base(name), "header") {
				headers = append(headers, convertParagraph(p))
			} else {
				footers = append(footers, convertParagraph(p))
			}
		}
	}
	return headers, footers, nil
}

func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func decodeEntry(f *zip.File, v interface{}) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return err
	}
	return xml.Unmarshal(data, v)
}

func convertParagraph(p xmlParagraph) Paragraph {
	para := Paragraph{Style: "Normal"}
	if p.Props != nil && p.Props.Style != nil && p.Props.Style.Val != "" {
		para.Style = p.Props.Style.Val
	}
	for _, r := range p.Runs {
		run := Run{Text: strings.Join(r.Texts, "")}
		if r.Props != nil {
			run.Bold = flagOn(r.Props.Bold)
			run.Italic = flagOn(r.Props.Italic)
			run.Underline = underlineOn(r.Props.Underline)
			run.HasFontSize = r.Props.Size != nil
			run.HasFontColor = colorSet(r.Props.Color)
		}
		para.Runs = append(para.Runs, run)
	}
	return para
}

func convertTable(t xmlTable) Table {
	table := Table{}
	for _, r := range t.Rows {
		row := Row{}
		for _, c := range r.Cells {
			cell := Cell{}
			for _, p := range c.Paragraphs {
				cell.Paragraphs = append(cell.Paragraphs, convertParagraph(p))
			}
			row.Cells = append(row.Cells, cell)
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// flagOn reports whether a toggle property like <w:b/> is effectively set;
// an explicit val of "false" or "0" turns the toggle off.
func flagOn(v *xmlValAttr) bool {
	if v == nil {
		return false
	}
	return v.Val != "false" && v.Val != "0"
}

func underlineOn(v *xmlValAttr) bool {
	if v == nil {
		return false
	}
	return v.Val != "none" && v.Val != "false" && v.Val != "0"
}

// colorSet reports whether an explicit font color is present; "auto" is the
// document default, not an explicit color.
func colorSet(v *xmlValAttr) bool {
	if v == nil {
		return false
	}
	return v.Val != "" && !strings.EqualFold(v.Val, "auto")
}
