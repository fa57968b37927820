package mocks

import (
	"context"

	"github.com/airenas/scribe/internal/pkg/llm"
	"github.com/stretchr/testify/mock"
)

// Extractor is audio extraction executor mock
type Extractor struct{ mock.Mock }

func (m *Extractor) ExtractAudio(ctx context.Context, src, dst string, progress func(float64, string)) error {
	args := m.Called(ctx, src, dst, progress)
	return args.Error(0)
}

// Transcriber is speech to text executor mock
type Transcriber struct{ mock.Mock }

func (m *Transcriber) Transcribe(ctx context.Context, audioPath, dst string, progress func(float64, string)) error {
	args := m.Called(ctx, audioPath, dst, progress)
	return args.Error(0)
}

// LLM is text generation service mock
type LLM struct{ mock.Mock }

func (m *LLM) Available(ctx context.Context) bool {
	args := m.Called(ctx)
	return args.Bool(0)
}

func (m *LLM) CheckStatus(ctx context.Context) *llm.StatusData {
	args := m.Called(ctx)
	return to[*llm.StatusData](args.Get(0))
}

func (m *LLM) ListModels(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return to[[]string](args.Get(0)), args.Error(1)
}

func (m *LLM) Provider() string {
	args := m.Called()
	return args.String(0)
}

func (m *LLM) DetectLanguage(ctx context.Context, text, model string) (string, error) {
	args := m.Called(ctx, text, model)
	return args.String(0), args.Error(1)
}

func (m *LLM) FormatTranscript(ctx context.Context, text, model string, progress func(float64, string)) (string, error) {
	args := m.Called(ctx, text, model, progress)
	return args.String(0), args.Error(1)
}

func (m *LLM) TranslateAndFormat(ctx context.Context, text, targetLang, model string, progress func(float64, string)) (string, error) {
	args := m.Called(ctx, text, targetLang, model, progress)
	return args.String(0), args.Error(1)
}

func to[T interface{}](val interface{}) T {
	if val == nil {
		var res T
		return res
	}
	return val.(T)
}
