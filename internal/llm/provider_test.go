package llm_test

import (
	"errors"
	"testing"

	"github.com/nulzo/prompt-gateway/internal/config"
	"github.com/nulzo/prompt-gateway/internal/llm"
	_ "github.com/nulzo/prompt-gateway/internal/llm/anthropic"
	_ "github.com/nulzo/prompt-gateway/internal/llm/google"
	_ "github.com/nulzo/prompt-gateway/internal/llm/openai"
	_ "github.com/nulzo/prompt-gateway/internal/llm/replicate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProvider(t *testing.T) {
	cases := map[string]llm.Provider{
		"gpt-4":  llm.OpenAI,
		"claude": llm.Anthropic,
		"gemini": llm.Google,
		"llama":  llm.Replicate,
	}
	for id, want := range cases {
		got, err := llm.ParseProvider(id)
		require.NoError(t, err, id)
		assert.Equal(t, want, got)
		assert.Equal(t, id, got.PublicID())
	}
}

func TestParseProvider_Unknown(t *testing.T) {
	for _, id := range []string{"unknown-id", "", "GPT-4", "openai"} {
		_, err := llm.ParseProvider(id)

		var unknown *llm.UnknownProviderError
		require.True(t, errors.As(err, &unknown), id)
		assert.Equal(t, id, unknown.ID)
	}
}

func TestProviderNames(t *testing.T) {
	assert.Equal(t, "openai", llm.OpenAI.String())
	assert.Equal(t, "Anthropic Claude", llm.Anthropic.DisplayName())
	assert.Equal(t, "Google Gemini", llm.Google.DisplayName())
	assert.Equal(t, "Meta Llama", llm.Replicate.DisplayName())
	assert.False(t, llm.Provider(42).Valid())
	assert.Equal(t, "gpt-4, claude, gemini, llama", llm.PublicIDs())
}

func TestEveryProviderHasAnAdapter(t *testing.T) {
	for _, p := range llm.All {
		adapter, err := llm.NewAdapter(p, config.ProviderConfig{})
		require.NoError(t, err, p.String())
		assert.Equal(t, p, adapter.Provider())
	}
}
