// Package embedding turns text into vectors via an Ollama-compatible API.
package embedding

import "context"

// Provider is the opaque text-to-vector contract the semantic tools depend
// on.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}
