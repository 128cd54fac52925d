package extract

import (
	"fmt"
	"log"

	"vpnvalidator/internal/domain"
)

// MethodStructured and MethodPlain name the two extraction backends.
const (
	MethodStructured = "structured"
	MethodPlain      = "plain"
)

type backend struct {
	name    string
	extract func(data []byte) (*domain.Content, error)
}

// Extractor tries extraction backends in order: the row-aware structured
// backend first, then the plain-text backend. It implements
// port.TextExtractor.
type Extractor struct {
	backends []backend
}

// NewExtractor creates an Extractor with the default backend chain.
func NewExtractor() *Extractor {
	return &Extractor{
		backends: []backend{
			{name: MethodStructured, extract: structuredPages},
			{name: MethodPlain, extract: plainPages},
		},
	}
}

// Extract returns the first backend's successful result, with Method set
// to the backend that produced it. When every backend fails the error
// wraps domain.ErrExtractionFailed and the document cannot be validated.
func (e *Extractor) Extract(data []byte) (*domain.Content, error) {
	var lastErr error
	for _, b := range e.backends {
		content, err := b.extract(data)
		if err == nil {
			content.Method = b.name
			return content, nil
		}
		log.Printf("extract.Extractor: %s backend failed: %v", b.name, err)
		lastErr = err
	}
	return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, lastErr)
}
