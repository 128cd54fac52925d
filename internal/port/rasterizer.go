package port

import "image"

// PageRenderer renders the pages of one opened document.
type PageRenderer interface {
	NumPages() int
	// Render rasterizes the given 0-based page.
	Render(page int) (image.Image, error)
	Close() error
}

// Rasterizer opens a PDF from memory for page rendering.
type Rasterizer interface {
	Open(data []byte) (PageRenderer, error)
}
