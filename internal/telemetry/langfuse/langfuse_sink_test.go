package langfuse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vpnvalidator/internal/config"
	"vpnvalidator/internal/port"
)

func TestSendPostsBatchWithBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "pk-test", user)
		assert.Equal(t, "sk-test", pass)

		var payload struct {
			Batch []struct {
				ID   string                 `json:"id"`
				Type string                 `json:"type"`
				Body map[string]interface{} `json:"body"`
			} `json:"batch"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Batch, 1)
		assert.Equal(t, "trace-create", payload.Batch[0].Type)
		assert.NotEmpty(t, payload.Batch[0].ID)
		assert.Equal(t, "pdf_validation", payload.Batch[0].Body["name"])

		w.WriteHeader(http.StatusMultiStatus)
	}))
	defer server.Close()

	sink := NewSinkWithEndpoint(&config.TelemetryConfig{PublicKey: "pk-test", SecretKey: "sk-test"}, server.URL)
	err := sink.Send(context.Background(), port.Trace{
		Name:   "pdf_validation",
		Input:  map[string]interface{}{"file": "request.pdf"},
		Output: map[string]interface{}{"is_valid": true},
	})
	assert.NoError(t, err)
}

func TestSendReportsServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sink := NewSinkWithEndpoint(&config.TelemetryConfig{PublicKey: "pk", SecretKey: "bad"}, server.URL)
	err := sink.Send(context.Background(), port.Trace{Name: "x"})
	assert.Error(t, err)
}
