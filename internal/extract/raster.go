package extract

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"

	"vpnvalidator/internal/port"
)

// fitzRasterizer renders PDF pages through MuPDF. It implements
// port.Rasterizer.
type fitzRasterizer struct {
	dpi float64
}

// NewRasterizer creates a page rasterizer rendering at the given DPI.
func NewRasterizer(dpi int) port.Rasterizer {
	return &fitzRasterizer{dpi: float64(dpi)}
}

func (r *fitzRasterizer) Open(data []byte) (port.PageRenderer, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("opening pdf for rendering: %w", err)
	}
	return &fitzRenderer{doc: doc, dpi: r.dpi}, nil
}

type fitzRenderer struct {
	doc *fitz.Document
	dpi float64
}

func (p *fitzRenderer) NumPages() int {
	return p.doc.NumPage()
}

func (p *fitzRenderer) Render(page int) (image.Image, error) {
	img, err := p.doc.ImageDPI(page, p.dpi)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d: %w", page+1, err)
	}
	return img, nil
}

func (p *fitzRenderer) Close() error {
	return p.doc.Close()
}
