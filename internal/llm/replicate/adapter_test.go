package replicate

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/nulzo/prompt-gateway/internal/config"
	"github.com/nulzo/prompt-gateway/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T) llm.Adapter {
	adapter, err := NewAdapter(config.ProviderConfig{
		APIKey:      "r8_key",
		URL:         "https://api.replicate.com/v1",
		Model:       "meta/meta-llama-3-70b-instruct",
		MaxTokens:   1000,
		Temperature: 0.7,
	})
	require.NoError(t, err)
	return adapter
}

func TestBuildRequest(t *testing.T) {
	call, err := newAdapter(t).BuildRequest("Tell me a joke")
	require.NoError(t, err)

	assert.Equal(t, "POST", call.Method)
	assert.Equal(t, "https://api.replicate.com/v1/predictions", call.URL)
	assert.Equal(t, "Token r8_key", call.Headers["Authorization"])

	body, err := json.Marshal(call.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"version": "meta/meta-llama-3-70b-instruct",
		"input": {"prompt": "Tell me a joke", "max_tokens": 1000, "temperature": 0.7}
	}`, string(body))
}

func TestParseResponse_RunningYieldsPollCall(t *testing.T) {
	for _, status := range []string{StatusStarting, StatusProcessing} {
		res, err := newAdapter(t).ParseResponse([]byte(`{"id": "abc123", "status": "` + status + `"}`))
		require.NoError(t, err)

		assert.True(t, res.Pending)
		require.NotNil(t, res.Poll)
		assert.Equal(t, "GET", res.Poll.Method)
		assert.Equal(t, "https://api.replicate.com/v1/predictions/abc123", res.Poll.URL)
		assert.Equal(t, "Token r8_key", res.Poll.Headers["Authorization"])
		assert.Nil(t, res.Poll.Body)
	}
}

func TestParseResponse_SucceededJoinsOutput(t *testing.T) {
	res, err := newAdapter(t).ParseResponse([]byte(`{"id": "abc", "status": "succeeded", "output": ["Why ", "did ", "the"]}`))
	require.NoError(t, err)

	assert.False(t, res.Pending)
	assert.Equal(t, "Why did the", res.Text)
}

func TestParseResponse_SucceededStringOutput(t *testing.T) {
	res, err := newAdapter(t).ParseResponse([]byte(`{"id": "abc", "status": "succeeded", "output": "whole"}`))
	require.NoError(t, err)
	assert.Equal(t, "whole", res.Text)
}

func TestParseResponse_Failed(t *testing.T) {
	_, err := newAdapter(t).ParseResponse([]byte(`{"id": "abc", "status": "failed", "error": "CUDA out of memory"}`))

	var apiErr *llm.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, llm.Replicate, apiErr.Provider)
	assert.Equal(t, StatusFailed, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "CUDA out of memory")
}

func TestParseResponse_UnknownStatus(t *testing.T) {
	_, err := newAdapter(t).ParseResponse([]byte(`{"id": "abc", "status": "queued"}`))
	assert.Error(t, err)
}
