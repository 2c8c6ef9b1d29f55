package generator

import (
	"context"
	"fmt"
	"strings"
)

// Request carries the topic and presentation preferences for one
// generation call.
type Request struct {
	Topic    string
	Level    string
	Tone     string
	Language string
	Extras   string
}

// Generator is the narrow interface to the external text-generation
// provider. A returned error means the call itself failed (transport,
// timeout, provider rejection); provider-authored error prose comes back
// as ordinary text.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// BuildPrompt assembles the instruction sent to the provider.
func BuildPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explain '%s' clearly for someone at %s level.\n\n", req.Topic, req.Level)
	fmt.Fprintf(&b, "Use a %s tone and %s language.\n", req.Tone, req.Language)
	if req.Extras != "" {
		fmt.Fprintf(&b, "Additional requirements: %s\n", req.Extras)
	}
	b.WriteString("\nMake it comprehensive, engaging, and easy to understand with examples.")
	return b.String()
}
