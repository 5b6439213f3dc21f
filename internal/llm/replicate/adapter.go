package replicate

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
	llm.Register(llm.Replicate, NewAdapter)
}

// Prediction statuses reported by the predictions API.
const (
	StatusStarting   = "starting"
	StatusProcessing = "processing"
	StatusSucceeded  = "succeeded"
	StatusFailed     = "failed"
	StatusCanceled   = "canceled"
)

type Adapter struct {
	config config.ProviderConfig
}

func NewAdapter(config config.ProviderConfig) (llm.Adapter, error) {
	if config.URL == "" {
		config.URL = "https://api.replicate.com/v1"
	}
	return &Adapter{config: config}, nil
}

func (a *Adapter) Provider() llm.Provider { return llm.Replicate }

type Input struct {
	Prompt      string  `json:"prompt"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type Request struct {
	Version string `json:"version"`
	Input   Input  `json:"input"`
}

// Prediction is the asynchronous job record returned on submit and on every poll.
type Prediction struct {
	ID     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  interface{}     `json:"error"`
}

// Running reports whether the prediction has not reached a terminal status.
func (p *Prediction) Running() bool {
	return p.Status == StatusStarting || p.Status == StatusProcessing
}

// Text concatenates the output fragments. Some models return a single string
// instead of a sequence.
func (p *Prediction) Text() (string, error) {
	if len(p.Output) == 0 || string(p.Output) == "null" {
		return "", nil
	}
	var fragments []string
	if err := json.Unmarshal(p.Output, &fragments); err == nil {
		return strings.Join(fragments, ""), nil
	}
	var single string
	if err := json.Unmarshal(p.Output, &single); err != nil {
		return "", fmt.Errorf("unexpected replicate output shape: %w", err)
	}
	return single, nil
}

func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Token " + a.config.APIKey,
	}
}

func (a *Adapter) baseURL() string {
	return strings.TrimRight(a.config.URL, "/")
}

func (a *Adapter) BuildRequest(prompt string) (*llm.Call, error) {
	return &llm.Call{
		Method:  http.MethodPost,
		URL:     a.baseURL() + "/predictions",
		Headers: a.headers(),
		Body: Request{
			Version: a.config.Model,
			Input: Input{
				Prompt:      prompt,
				MaxTokens:   a.config.MaxTokens,
				Temperature: a.config.Temperature,
			},
		},
	}, nil
}

// ParseResponse handles both the submit response and poll responses.
func (a *Adapter) ParseResponse(body []byte) (*llm.Result, error) {
	var p Prediction
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("failed to decode replicate prediction: %w", err)
	}

	switch {
	case p.Running():
		if p.ID == "" {
			return nil, fmt.Errorf("replicate prediction in status %q has no id", p.Status)
		}
		return &llm.Result{
			Pending: true,
			Poll: &llm.Call{
				Method:  http.MethodGet,
				URL:     a.baseURL() + "/predictions/" + url.PathEscape(p.ID),
				Headers: a.headers(),
			},
		}, nil

	case p.Status == StatusSucceeded:
		text, err := p.Text()
		if err != nil {
			return nil, err
		}
		return &llm.Result{Text: text}, nil

	case p.Status == StatusFailed || p.Status == StatusCanceled:
		msg := "Replicate prediction " + p.Status
		if p.Error != nil {
			msg = fmt.Sprintf("%s: %v", msg, p.Error)
		}
		return nil, &llm.APIError{Provider: llm.Replicate, Status: p.Status, Message: msg}
	}

	return nil, fmt.Errorf("unknown replicate prediction status %q", p.Status)
}
