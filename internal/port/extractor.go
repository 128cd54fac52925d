package port

import "vpnvalidator/internal/domain"

// TextExtractor turns raw PDF bytes into per-page and full text.
type TextExtractor interface {
	Extract(data []byte) (*domain.Content, error)
}
