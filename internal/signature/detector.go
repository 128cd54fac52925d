package signature

import (
	"image"
	"image/color"
	"log"

	"vpnvalidator/internal/config"
	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/port"
)

// Detector counts signature-like marks on rendered PDF pages. It is a
// coarse contour heuristic: dark connected regions whose size and aspect
// ratio look like a handwritten signature. False positives and negatives
// are an accepted limitation; there is no ink or handwriting analysis.
type Detector struct {
	rasterizer    port.Rasterizer
	cfg           config.SignatureConfig
	minSignatures int
}

// NewDetector creates a Detector with the given thresholds.
func NewDetector(rasterizer port.Rasterizer, cfg config.SignatureConfig, minSignatures int) *Detector {
	return &Detector{rasterizer: rasterizer, cfg: cfg, minSignatures: minSignatures}
}

// Detect renders every page and collects signature instances. Failures
// are recovered locally: an unrenderable page contributes zero
// instances, and an unopenable document yields empty evidence. The
// Valid flag compares the total count against the configured minimum.
func (d *Detector) Detect(data []byte) *domain.SignatureEvidence {
	evidence := &domain.SignatureEvidence{}

	renderer, err := d.rasterizer.Open(data)
	if err != nil {
		log.Printf("signature.Detector: cannot open document for rendering: %v", err)
		evidence.Valid = evidence.Count >= d.minSignatures
		return evidence
	}
	defer func() { _ = renderer.Close() }()

	for page := 0; page < renderer.NumPages(); page++ {
		img, err := renderer.Render(page)
		if err != nil {
			log.Printf("signature.Detector: page %d render failed, counting zero instances: %v", page+1, err)
			continue
		}
		evidence.Instances = append(evidence.Instances, d.detectPage(img, page+1)...)
	}

	evidence.Count = len(evidence.Instances)
	evidence.Valid = evidence.Count >= d.minSignatures
	return evidence
}

// detectPage binarizes the page image at the dark threshold, extracts
// connected dark components, and keeps those matching the signature
// shape filter. Instance confidence is min(0.9, area/10000).
func (d *Detector) detectPage(img image.Image, pageNum int) []domain.SignatureInstance {
	mask := darkMask(img, uint8(d.cfg.DarkThreshold))

	var instances []domain.SignatureInstance
	for _, blob := range components(mask) {
		w := blob.maxX - blob.minX + 1
		h := blob.maxY - blob.minY + 1
		aspect := float64(w) / float64(h)

		if blob.area <= d.cfg.MinArea || blob.area >= d.cfg.MaxArea {
			continue
		}
		if w <= d.cfg.MinWidth || h <= d.cfg.MinHeight {
			continue
		}
		if aspect <= d.cfg.MinAspect || aspect >= d.cfg.MaxAspect {
			continue
		}

		confidence := float64(blob.area) / 10000
		if confidence > 0.9 {
			confidence = 0.9
		}
		instances = append(instances, domain.SignatureInstance{
			Page:       pageNum,
			X:          blob.minX,
			Y:          blob.minY,
			Width:      w,
			Height:     h,
			Area:       blob.area,
			Confidence: confidence,
		})
	}
	return instances
}

// darkMask converts the image to a binary mask of pixels whose gray
// intensity is below the threshold.
type bitmask struct {
	w, h int
	bits []bool
}

func (m *bitmask) at(x, y int) bool    { return m.bits[y*m.w+x] }
func (m *bitmask) set(x, y int, v bool) { m.bits[y*m.w+x] = v }

func darkMask(img image.Image, threshold uint8) *bitmask {
	b := img.Bounds()
	mask := &bitmask{w: b.Dx(), h: b.Dy(), bits: make([]bool, b.Dx()*b.Dy())}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			if gray.Y < threshold {
				mask.set(x-b.Min.X, y-b.Min.Y, true)
			}
		}
	}
	return mask
}

type blob struct {
	area                   int
	minX, minY, maxX, maxY int
}

// components labels 8-connected dark regions with an explicit stack
// flood fill (page rasters are large; recursion would blow the stack).
// Blobs are returned in row-major discovery order, which keeps detection
// deterministic.
func components(mask *bitmask) []blob {
	visited := make([]bool, mask.w*mask.h)
	var blobs []blob
	var stack []image.Point

	for y := 0; y < mask.h; y++ {
		for x := 0; x < mask.w; x++ {
			if !mask.at(x, y) || visited[y*mask.w+x] {
				continue
			}

			b := blob{minX: x, minY: y, maxX: x, maxY: y}
			stack = append(stack[:0], image.Pt(x, y))
			visited[y*mask.w+x] = true

			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				b.area++
				if p.X < b.minX {
					b.minX = p.X
				}
				if p.X > b.maxX {
					b.maxX = p.X
				}
				if p.Y < b.minY {
					b.minY = p.Y
				}
				if p.Y > b.maxY {
					b.maxY = p.Y
				}

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= mask.w || ny >= mask.h {
							continue
						}
						if mask.at(nx, ny) && !visited[ny*mask.w+nx] {
							visited[ny*mask.w+nx] = true
							stack = append(stack, image.Pt(nx, ny))
						}
					}
				}
			}

			blobs = append(blobs, b)
		}
	}
	return blobs
}
