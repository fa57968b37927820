package llm

import "context"

// StatusData is the result of a provider health probe
type StatusData struct {
	Provider    string `json:"provider"`
	Available   bool   `json:"available"`
	URL         string `json:"url,omitempty"`
	ModelsCount int    `json:"models_count,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Provider generates text using an external language model endpoint
type Provider interface {
	Name() string
	// CheckStatus probes availability without side effects
	CheckStatus(ctx context.Context) *StatusData
	ListModels(ctx context.Context) ([]string, error)
	// Generate returns model output for the prompt, "" means no result
	Generate(ctx context.Context, model, prompt string) (string, error)
}
