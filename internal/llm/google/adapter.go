package google

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/nulzo/prompt-gateway/internal/config"
	"github.com/nulzo/prompt-gateway/internal/llm"
)

func init() {
	llm.Register(llm.Google, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
}

func NewAdapter(config config.ProviderConfig) (llm.Adapter, error) {
	if config.URL == "" {
		config.URL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &Adapter{config: config}, nil
}

func (a *Adapter) Provider() llm.Provider { return llm.Google }

type GeminiPart struct {
	Text string `json:"text"`
}
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}
type GenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}
type GeminiRequest struct {
	Contents         []GeminiContent  `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
}
type GeminiResponse struct {
	Candidates []GeminiCandidate `json:"candidates"`
}

// Shape converts a prompt into a single-turn generateContent body.
func Shape(prompt string, cfg config.ProviderConfig) GeminiRequest {
	return GeminiRequest{
		Contents: []GeminiContent{{Parts: []GeminiPart{{Text: prompt}}}},
		GenerationConfig: GenerationConfig{
			MaxOutputTokens: cfg.MaxTokens,
			Temperature:     cfg.Temperature,
		},
	}
}

func (a *Adapter) BuildRequest(prompt string) (*llm.Call, error) {
	// the key travels in the query string, there is no auth header
	return &llm.Call{
		Method: http.MethodPost,
		URL: fmt.Sprintf("%s/models/%s:generateContent?key=%s",
			strings.TrimRight(a.config.URL, "/"),
			a.config.Model,
			url.QueryEscape(a.config.APIKey),
		),
		Body: Shape(prompt, a.config),
	}, nil
}

func (a *Adapter) ParseResponse(body []byte) (*llm.Result, error) {
	var gResp GeminiResponse
	if err := json.Unmarshal(body, &gResp); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(gResp.Candidates) == 0 || len(gResp.Candidates[0].Content.Parts) == 0 {
		return nil, llm.ErrEmptyCompletion
	}
	return &llm.Result{Text: gResp.Candidates[0].Content.Parts[0].Text}, nil
}
