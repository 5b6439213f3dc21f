package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/nulzo/prompt-gateway/pkg/api"
)

const title = "prompt-gateway"

// PrintSummary writes the startup banner: listen address and the state of
// every provider.
func PrintSummary(w io.Writer, addr string, providers []api.ProviderInfo) {
	var b strings.Builder

	b.WriteString("\n  ")
	for i, r := range []rune(title) {
		b.WriteString(Gradient(string(r), BrandBlue, BrandPurple, float64(i)/float64(len(title)-1)))
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "  %s Listening on %s\n\n", Arrow(), Style(addr, Bold))

	for _, p := range providers {
		mark, mode := CheckMark(), "live"
		if p.Demo {
			mark, mode = Warning(), Style("demo", Yellow)
		}
		fmt.Fprintf(&b, "  %s %-8s %-18s %s %s\n", mark, p.ID, p.Name, Style(p.Model, Dim), mode)
	}
	b.WriteString("\n")

	_, _ = io.WriteString(w, b.String())
}
