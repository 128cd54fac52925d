package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpnvalidator/internal/domain"
)

func TestExtractUsesFirstSuccessfulBackend(t *testing.T) {
	e := &Extractor{backends: []backend{
		{name: MethodStructured, extract: func(_ []byte) (*domain.Content, error) {
			return &domain.Content{RawText: "structured text"}, nil
		}},
		{name: MethodPlain, extract: func(_ []byte) (*domain.Content, error) {
			t.Fatal("plain backend must not run when structured succeeds")
			return nil, nil
		}},
	}}

	content, err := e.Extract([]byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "structured text", content.RawText)
	assert.Equal(t, MethodStructured, content.Method)
}

func TestExtractFallsBackToPlain(t *testing.T) {
	e := &Extractor{backends: []backend{
		{name: MethodStructured, extract: func(_ []byte) (*domain.Content, error) {
			return nil, errors.New("broken xref")
		}},
		{name: MethodPlain, extract: func(_ []byte) (*domain.Content, error) {
			return &domain.Content{RawText: "plain text"}, nil
		}},
	}}

	content, err := e.Extract([]byte("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "plain text", content.RawText)
	assert.Equal(t, MethodPlain, content.Method)
}

func TestExtractAllBackendsFail(t *testing.T) {
	e := &Extractor{backends: []backend{
		{name: MethodStructured, extract: func(_ []byte) (*domain.Content, error) {
			return nil, errors.New("broken xref")
		}},
		{name: MethodPlain, extract: func(_ []byte) (*domain.Content, error) {
			return nil, errors.New("no text stream")
		}},
	}}

	_, err := e.Extract([]byte("junk"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
	assert.Contains(t, err.Error(), "no text stream")
}

func TestStructuredBackendRejectsGarbage(t *testing.T) {
	_, err := structuredPages([]byte("this is not a pdf"))
	assert.Error(t, err)
}

func TestPlainBackendRejectsGarbage(t *testing.T) {
	_, err := plainPages([]byte("this is not a pdf"))
	assert.Error(t, err)
}
