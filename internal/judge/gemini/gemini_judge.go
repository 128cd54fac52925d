package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"vpnvalidator/internal/config"
	"vpnvalidator/internal/domain"
	"vpnvalidator/internal/judge"
	"vpnvalidator/internal/port"
)

const (
	apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
)

// Judge implements port.Judge using Google's Gemini API.
type Judge struct {
	apiKey        string
	model         string
	endpoint      string
	client        *http.Client
	minSignatures int
	emailDomain   string
}

// NewJudge creates a Gemini-backed judge.
func NewJudge(cfg *config.JudgeConfig, val *config.ValidatorConfig) *Judge {
	return newJudge(cfg, val, "")
}

// NewJudgeWithEndpoint creates a judge pointing at a custom API endpoint (for testing).
func NewJudgeWithEndpoint(cfg *config.JudgeConfig, val *config.ValidatorConfig, endpoint string) *Judge {
	return newJudge(cfg, val, endpoint)
}

func newJudge(cfg *config.JudgeConfig, val *config.ValidatorConfig, endpoint string) *Judge {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	if endpoint == "" {
		endpoint = fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model)
	}
	return &Judge{
		apiKey:        cfg.APIKey,
		model:         model,
		endpoint:      endpoint,
		client:        &http.Client{Timeout: timeout},
		minSignatures: val.MinSignatures,
		emailDomain:   val.EmailDomain,
	}
}

func (j *Judge) Evaluate(ctx context.Context, input port.JudgeInput) (*domain.JudgeVerdict, error) {
	prompt := judge.BuildValidationPrompt(input, j.minSignatures, j.emailDomain)

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role": "user",
				"parts": []map[string]interface{}{
					{"text": prompt},
				},
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  4096,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", j.apiKey)

	resp, err := j.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: calling gemini API: %v", domain.ErrJudgeUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", domain.ErrJudgeUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: gemini API status %d: %s", domain.ErrJudgeUnavailable, resp.StatusCode, truncate(string(respBody), 500))
	}

	return parseResponse(respBody)
}

// geminiResponse models the Gemini API response.
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
}

func parseResponse(body []byte) (*domain.JudgeVerdict, error) {
	var resp geminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling response: %v", domain.ErrJudgeMalformed, err)
	}

	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: empty response from API: no candidates", domain.ErrJudgeMalformed)
	}

	if len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response from API: no parts", domain.ErrJudgeMalformed)
	}

	return judge.ParseVerdict(resp.Candidates[0].Content.Parts[0].Text)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
