package llm

import (
	"fmt"
	"strings"
)

// Provider identifies one of the supported completion vendors.
type Provider int

const (
	OpenAI Provider = iota
	Anthropic
	Google
	Replicate
)

// All lists every provider in dispatch order.
var All = []Provider{OpenAI, Anthropic, Google, Replicate}

type providerInfo struct {
	key         string // config section and rate limit key
	publicID    string // identifier accepted from callers
	displayName string
}

var providers = map[Provider]providerInfo{
	OpenAI:    {key: "openai", publicID: "gpt-4", displayName: "OpenAI GPT-4"},
	Anthropic: {key: "anthropic", publicID: "claude", displayName: "Anthropic Claude"},
	Google:    {key: "google", publicID: "gemini", displayName: "Google Gemini"},
	Replicate: {key: "replicate", publicID: "llama", displayName: "Meta Llama"},
}

// String returns the vendor key, e.g. "openai".
func (p Provider) String() string {
	if info, ok := providers[p]; ok {
		return info.key
	}
	return fmt.Sprintf("provider(%d)", int(p))
}

// PublicID returns the identifier callers use to select this provider.
func (p Provider) PublicID() string { return providers[p].publicID }

// DisplayName is the human readable model family, used by demo mode.
func (p Provider) DisplayName() string { return providers[p].displayName }

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	_, ok := providers[p]
	return ok
}

// ParseProvider maps a public identifier ("gpt-4", "claude", "gemini", "llama")
// onto a Provider.
func ParseProvider(id string) (Provider, error) {
	for _, p := range All {
		if providers[p].publicID == id {
			return p, nil
		}
	}
	return 0, &UnknownProviderError{ID: id}
}

// PublicIDs returns the accepted identifiers, joined for messages.
func PublicIDs() string {
	ids := make([]string, 0, len(All))
	for _, p := range All {
		ids = append(ids, p.PublicID())
	}
	return strings.Join(ids, ", ")
}

// Call is a single outbound HTTP exchange described by an adapter.
type Call struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    interface{} // marshalled as JSON when non-nil
}

// Result is what an adapter extracted from a vendor response.
type Result struct {
	Text string

	// Pending is set when the vendor accepted the job asynchronously.
	// Poll must then be sent until a terminal Result comes back.
	Pending bool
	Poll    *Call
}

// Adapter translates a prompt into a vendor request and a vendor response
// back into plain text. Adapters perform no I/O.
type Adapter interface {
	Provider() Provider
	BuildRequest(prompt string) (*Call, error)
	ParseResponse(body []byte) (*Result, error)
}
