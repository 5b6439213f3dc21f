package gateway

import (
	"testing"

	"github.com/nulzo/prompt-gateway/internal/llm"
	"github.com/stretchr/testify/assert"
)

func TestDemoResponse(t *testing.T) {
	text := DemoResponse("Anthropic Claude", "hi")
	assert.Contains(t, text, `"hi"`)
	assert.Contains(t, text, "Claude")
}

func TestDemoResponse_EveryProviderHasTemplate(t *testing.T) {
	for _, p := range llm.All {
		_, ok := demoTemplates[p.DisplayName()]
		assert.True(t, ok, "no demo template for %s", p.DisplayName())
	}
}

func TestDemoResponse_Fallback(t *testing.T) {
	assert.Equal(t, `Demo response for: "hi"`, DemoResponse("Mistral", "hi"))
}
