package gateway

import "fmt"

var demoTemplates = map[string]string{
	"OpenAI GPT-4":     `As GPT-4, I can provide a comprehensive analysis of your query: "%s". My response focuses on accuracy, creativity, and detailed explanations. I excel at complex reasoning tasks and can provide nuanced perspectives on various topics.`,
	"Anthropic Claude": `Hello! I'm Claude, an AI assistant created by Anthropic. Regarding your question about "%s", I aim to be helpful, harmless, and honest in my responses. I prioritize providing accurate information while maintaining a conversational tone.`,
	"Google Gemini":    `I'm Gemini, Google's advanced AI model. For your prompt "%s", I can leverage Google's extensive knowledge base to provide current and relevant information. I'm particularly strong at multi-step reasoning and context understanding.`,
	"Meta Llama":       `As Llama 3, Meta's open-source AI model, I respond to "%s" with a focus on accessibility and community-driven development. My training emphasizes helpful, accurate responses while respecting ethical guidelines.`,
}

// DemoResponse returns the canned answer for a model display name, with the
// prompt quoted inside it. Unknown names get a generic reply.
func DemoResponse(model, prompt string) string {
	if tmpl, ok := demoTemplates[model]; ok {
		return fmt.Sprintf(tmpl, prompt)
	}
	return fmt.Sprintf(`Demo response for: "%s"`, prompt)
}
