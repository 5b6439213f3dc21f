package openai

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nulzo/prompt-gateway/internal/config"
	"github.com/nulzo/prompt-gateway/internal/llm"
)

func init() {
	llm.Register(llm.OpenAI, NewAdapter)
}

type Adapter struct {
	config config.ProviderConfig
}

func NewAdapter(config config.ProviderConfig) (llm.Adapter, error) {
	if config.URL == "" {
		config.URL = "https://api.openai.com/v1"
	}
	return &Adapter{config: config}, nil
}

func (a *Adapter) Provider() llm.Provider { return llm.OpenAI }

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Response struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
}

func (a *Adapter) BuildRequest(prompt string) (*llm.Call, error) {
	return &llm.Call{
		Method: http.MethodPost,
		URL:    fmt.Sprintf("%s/chat/completions", strings.TrimRight(a.config.URL, "/")),
		Headers: map[string]string{
			"Authorization": "Bearer " + a.config.APIKey,
		},
		Body: Request{
			Model:       a.config.Model,
			Messages:    []Message{{Role: "user", Content: prompt}},
			MaxTokens:   a.config.MaxTokens,
			Temperature: a.config.Temperature,
		},
	}, nil
}

func (a *Adapter) ParseResponse(body []byte) (*llm.Result, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode openai response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, llm.ErrEmptyCompletion
	}
	return &llm.Result{Text: resp.Choices[0].Message.Content}, nil
}
