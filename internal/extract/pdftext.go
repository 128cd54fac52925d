package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"vpnvalidator/internal/domain"
)

// cellGap is the horizontal distance (in PDF points) between two text
// fragments beyond which they are treated as separate table cells.
const cellGap = 12.0

// structuredPages extracts row-structured text page by page. Rows keep
// the column layout of tabular regions, which the field extractor
// benefits from when labels and values sit in adjacent cells.
func structuredPages(data []byte) (_ *domain.Content, err error) {
	// The pdf package panics on malformed xref tables and unusual
	// encodings; convert that to a backend failure so the plain
	// backend gets its turn.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("structured extraction panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	content := &domain.Content{}
	var full strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		if p.V.IsNull() {
			content.Pages = append(content.Pages, domain.Page{Number: i})
			full.WriteString(fmt.Sprintf("\n--- Page %d ---\n", i))
			continue
		}

		rows, err := p.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d rows: %w", i, err)
		}

		page := domain.Page{Number: i}
		var pageText strings.Builder
		for _, row := range rows {
			cells := rowCells(row)
			if len(cells) == 0 {
				continue
			}
			page.Rows = append(page.Rows, cells)
			pageText.WriteString(strings.Join(cells, " "))
			pageText.WriteString("\n")
		}
		page.Text = pageText.String()
		content.Pages = append(content.Pages, page)
		full.WriteString(fmt.Sprintf("\n--- Page %d ---\n%s", i, page.Text))
	}

	content.RawText = full.String()
	return content, nil
}

// rowCells groups a row's text fragments into cells, splitting where the
// horizontal gap exceeds cellGap.
func rowCells(row *pdf.Row) []string {
	var cells []string
	var cell strings.Builder
	prevEnd := -1.0
	for _, txt := range row.Content {
		if prevEnd >= 0 && txt.X-prevEnd > cellGap && cell.Len() > 0 {
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		}
		cell.WriteString(txt.S)
		prevEnd = txt.X + txt.W
	}
	if s := strings.TrimSpace(cell.String()); s != "" {
		cells = append(cells, s)
	}
	return cells
}

// plainPages extracts plain per-page text with no layout awareness.
func plainPages(data []byte) (_ *domain.Content, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plain extraction panic: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}

	content := &domain.Content{}
	var full strings.Builder
	fonts := make(map[string]*pdf.Font)
	for i := 1; i <= reader.NumPage(); i++ {
		p := reader.Page(i)
		var text string
		if !p.V.IsNull() {
			text, err = p.GetPlainText(fonts)
			if err != nil {
				return nil, fmt.Errorf("page %d text: %w", i, err)
			}
		}
		content.Pages = append(content.Pages, domain.Page{Number: i, Text: text})
		full.WriteString(fmt.Sprintf("\n--- Page %d ---\n%s", i, text))
	}

	content.RawText = full.String()
	return content, nil
}
