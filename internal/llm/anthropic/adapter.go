package anthropic

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nulzo/prompt-gateway/internal/config"
	"github.com/nulzo/prompt-gateway/internal/llm"
)

const apiVersion = "2023-06-01"

func init() {
	llm.Register(llm.Anthropic, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
}

func NewAdapter(config config.ProviderConfig) (llm.Adapter, error) {
	if config.URL == "" {
		config.URL = "https://api.anthropic.com/v1"
	}
	return &Adapter{config: config}, nil
}

func (a *Adapter) Provider() llm.Provider { return llm.Anthropic }

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []Message `json:"messages"`
}

type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Response struct {
	ID         string    `json:"id"`
	Model      string    `json:"model"`
	Content    []Content `json:"content"`
	StopReason string    `json:"stop_reason"`
}

func (a *Adapter) BuildRequest(prompt string) (*llm.Call, error) {
	return &llm.Call{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/messages", strings.TrimRight(a.config.URL, "/")),
		Headers: map[string]string{
			"x-api-key":         a.config.APIKey,
			"anthropic-version": apiVersion,
		},
		Body: Request{
			Model:     a.config.Model,
			MaxTokens: a.config.MaxTokens,
			Messages:  []Message{{Role: "user", Content: prompt}},
		},
	}, nil
}

func (a *Adapter) ParseResponse(body []byte) (*llm.Result, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode anthropic response: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, llm.ErrEmptyCompletion
	}
	return &llm.Result{Text: resp.Content[0].Text}, nil
}
