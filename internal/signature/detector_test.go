package signature

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpnvalidator/internal/config"
	"vpnvalidator/internal/port"
)

type stubRenderer struct {
	pages   []image.Image
	failAll bool
}

func (s *stubRenderer) NumPages() int { return len(s.pages) }

func (s *stubRenderer) Render(page int) (image.Image, error) {
	if s.failAll {
		return nil, errors.New("render failed")
	}
	return s.pages[page], nil
}

func (s *stubRenderer) Close() error { return nil }

type stubRasterizer struct {
	renderer *stubRenderer
	openErr  error
}

func (s *stubRasterizer) Open(data []byte) (port.PageRenderer, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return s.renderer, nil
}

func whitePage(w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	return img
}

func fillDark(img *image.Gray, x, y, w, h int) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			img.SetGray(x+dx, y+dy, color.Gray{Y: 0})
		}
	}
}

func testConfig() config.SignatureConfig {
	return config.SignatureConfig{
		ResolutionDPI: 150,
		DarkThreshold: 100,
		MinArea:       500,
		MaxArea:       50000,
		MinWidth:      50,
		MinHeight:     20,
		MinAspect:     1.5,
		MaxAspect:     8.0,
	}
}

func TestDetectFindsSignatureShapedBlobs(t *testing.T) {
	page := whitePage(800, 600)
	// 200x40 block: area 8000, aspect 5.
	fillDark(page, 100, 100, 200, 40)

	d := NewDetector(&stubRasterizer{renderer: &stubRenderer{pages: []image.Image{page}}}, testConfig(), 3)
	evidence := d.Detect(nil)

	require.Len(t, evidence.Instances, 1)
	inst := evidence.Instances[0]
	assert.Equal(t, 1, inst.Page)
	assert.Equal(t, 100, inst.X)
	assert.Equal(t, 100, inst.Y)
	assert.Equal(t, 200, inst.Width)
	assert.Equal(t, 40, inst.Height)
	assert.Equal(t, 8000, inst.Area)
	assert.InDelta(t, 0.8, inst.Confidence, 1e-9)
	assert.Equal(t, 1, evidence.Count)
	assert.False(t, evidence.Valid)
}

func TestDetectConfidenceCapped(t *testing.T) {
	page := whitePage(800, 600)
	// 300x60 block: area 18000, confidence capped at 0.9.
	fillDark(page, 50, 50, 300, 60)

	d := NewDetector(&stubRasterizer{renderer: &stubRenderer{pages: []image.Image{page}}}, testConfig(), 1)
	evidence := d.Detect(nil)

	require.Len(t, evidence.Instances, 1)
	assert.InDelta(t, 0.9, evidence.Instances[0].Confidence, 1e-9)
	assert.True(t, evidence.Valid)
}

func TestDetectRejectsWrongShapes(t *testing.T) {
	page := whitePage(800, 600)
	// Square 60x60: aspect 1.0, below minimum aspect.
	fillDark(page, 10, 10, 60, 60)
	// Thin line 300x2: fails minimum height and area.
	fillDark(page, 10, 200, 300, 2)
	// Tiny blob 20x10: fails everything.
	fillDark(page, 400, 400, 20, 10)
	// Huge block 400x200: area 80000 exceeds the maximum.
	fillDark(page, 100, 250, 400, 200)

	d := NewDetector(&stubRasterizer{renderer: &stubRenderer{pages: []image.Image{page}}}, testConfig(), 3)
	evidence := d.Detect(nil)

	assert.Empty(t, evidence.Instances)
	assert.Equal(t, 0, evidence.Count)
	assert.False(t, evidence.Valid)
}

func TestDetectMinimumSignatureBoundary(t *testing.T) {
	page := whitePage(800, 900)
	fillDark(page, 100, 100, 200, 40)
	fillDark(page, 100, 300, 200, 40)
	fillDark(page, 100, 500, 200, 40)

	d := NewDetector(&stubRasterizer{renderer: &stubRenderer{pages: []image.Image{page}}}, testConfig(), 3)
	evidence := d.Detect(nil)

	assert.Equal(t, 3, evidence.Count)
	assert.True(t, evidence.Valid)
}

func TestDetectCountsAcrossPages(t *testing.T) {
	p1 := whitePage(800, 600)
	fillDark(p1, 100, 100, 200, 40)
	p2 := whitePage(800, 600)
	fillDark(p2, 100, 100, 200, 40)

	d := NewDetector(&stubRasterizer{renderer: &stubRenderer{pages: []image.Image{p1, p2}}}, testConfig(), 2)
	evidence := d.Detect(nil)

	assert.Equal(t, 2, evidence.Count)
	assert.Equal(t, 1, evidence.Instances[0].Page)
	assert.Equal(t, 2, evidence.Instances[1].Page)
	assert.True(t, evidence.Valid)
}

func TestDetectIgnoresLightMarks(t *testing.T) {
	page := whitePage(800, 600)
	// Gray above the dark threshold must not be counted.
	for dy := 0; dy < 40; dy++ {
		for dx := 0; dx < 200; dx++ {
			page.SetGray(100+dx, 100+dy, color.Gray{Y: 150})
		}
	}

	d := NewDetector(&stubRasterizer{renderer: &stubRenderer{pages: []image.Image{page}}}, testConfig(), 1)
	evidence := d.Detect(nil)
	assert.Equal(t, 0, evidence.Count)
}

func TestDetectOpenFailureYieldsEmptyEvidence(t *testing.T) {
	d := NewDetector(&stubRasterizer{openErr: errors.New("not a pdf")}, testConfig(), 3)
	evidence := d.Detect([]byte("junk"))

	assert.Equal(t, 0, evidence.Count)
	assert.False(t, evidence.Valid)
	assert.Empty(t, evidence.Instances)
}

func TestDetectRenderFailureCountsZeroForPage(t *testing.T) {
	r := &stubRenderer{pages: []image.Image{whitePage(10, 10)}, failAll: true}
	d := NewDetector(&stubRasterizer{renderer: r}, testConfig(), 3)
	evidence := d.Detect(nil)

	assert.Equal(t, 0, evidence.Count)
	assert.False(t, evidence.Valid)
}
