package api

type GenerateRequest struct {
	// public provider identifier: gpt-4, claude, gemini or llama
	Provider string `json:"provider" binding:"required"`

	// the prompt forwarded verbatim to the provider
	Prompt string `json:"prompt" binding:"required,max=32000"`
}
