package classify

import (
	"strings"

	"vpnvalidator/internal/domain"
)

// Keyword sets for the two recognized request types. Matching is
// case-insensitive substring counting; every occurrence of a keyword
// contributes one point.
var (
	newRequestKeywords = []string{
		"permohonan vpn baru",
		"request vpn baru",
		"pengajuan vpn baru",
		"new vpn request",
		"vpn baru",
		"permohonan akses vpn",
	}
	extensionKeywords = []string{
		"perpanjangan vpn",
		"vpn extension",
		"perpanjangan akses vpn",
		"extend vpn",
		"renewal vpn",
		"perpanjangan",
	}
)

// Classifier detects whether a document is a new VPN request or an
// extension from its text. It is pure: identical text always yields an
// identical verdict.
type Classifier struct{}

// NewClassifier creates a Classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify scores both keyword sets against the text. The strictly
// higher score wins; a tie (including zero/zero) is unknown with low
// confidence. The winner's confidence is min(0.9, 0.5 + 0.1*score).
func (c *Classifier) Classify(text string) domain.TypeVerdict {
	lower := strings.ToLower(text)

	newScore := countKeywords(lower, newRequestKeywords)
	extScore := countKeywords(lower, extensionKeywords)

	verdict := domain.TypeVerdict{
		NewRequestScore: newScore,
		ExtensionScore:  extScore,
	}

	switch {
	case newScore > extScore:
		verdict.Label = domain.DocTypeNewRequest
		verdict.Confidence = scoreConfidence(newScore)
	case extScore > newScore:
		verdict.Label = domain.DocTypeExtension
		verdict.Confidence = scoreConfidence(extScore)
	default:
		verdict.Label = domain.DocTypeUnknown
		verdict.Confidence = 0.3
	}
	return verdict
}

func countKeywords(lowerText string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		score += strings.Count(lowerText, kw)
	}
	return score
}

func scoreConfidence(score int) float64 {
	conf := 0.5 + float64(score)*0.1
	if conf > 0.9 {
		return 0.9
	}
	return conf
}
