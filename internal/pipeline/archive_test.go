package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/port"
)

type memoryStore struct {
	objects map[string][]byte
	putErr  error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: make(map[string][]byte)}
}

func (m *memoryStore) Put(_ context.Context, input port.PutInput) error {
	if m.putErr != nil {
		return m.putErr
	}
	data, err := io.ReadAll(input.Body)
	if err != nil {
		return err
	}
	m.objects[input.Key] = data
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func TestArchiveStoresDocumentAndVerdict(t *testing.T) {
	store := newMemoryStore()
	run := &domain.PipelineRun{
		ID:       uuid.New(),
		Document: "request.pdf",
		State:    domain.RunDecided,
		Verdict:  &domain.FinalVerdict{IsValid: true, Status: domain.StatusApproved},
	}

	err := NewArchiver(store).Archive(context.Background(), run, []byte("%PDF-1.4"))
	require.NoError(t, err)

	pdf, err := store.Get(context.Background(), "runs/"+run.ID.String()+"/document.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))

	record, err := store.Get(context.Background(), "runs/"+run.ID.String()+"/verdict.json")
	require.NoError(t, err)

	var stored domain.PipelineRun
	require.NoError(t, json.Unmarshal(record, &stored))
	assert.Equal(t, run.ID, stored.ID)
	require.NotNil(t, stored.Verdict)
	assert.True(t, stored.Verdict.IsValid)
}

func TestArchiveWrapsStorageErrors(t *testing.T) {
	store := newMemoryStore()
	store.putErr = errors.New("bucket gone")

	err := NewArchiver(store).Archive(context.Background(), &domain.PipelineRun{ID: uuid.New()}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrArchiveFailed)
}
