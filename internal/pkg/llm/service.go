package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/scribe/internal/pkg/api"
)

// Service wraps a provider with the transcript level operations
type Service struct {
	provider     Provider
	defaultModel string
}

// NewService creates the llm service
func NewService(provider Provider, defaultModel string) (*Service, error) {
	if provider == nil {
		return nil, fmt.Errorf("no provider")
	}
	return &Service{provider: provider, defaultModel: defaultModel}, nil
}

// Provider returns the configured provider name
func (s *Service) Provider() string {
	return s.provider.Name()
}

// Available reports if the provider answers
func (s *Service) Available(ctx context.Context) bool {
	return s.CheckStatus(ctx).Available
}

// CheckStatus delegates to the provider
func (s *Service) CheckStatus(ctx context.Context) *StatusData {
	return s.provider.CheckStatus(ctx)
}

// ListModels delegates to the provider
func (s *Service) ListModels(ctx context.Context) ([]string, error) {
	return s.provider.ListModels(ctx)
}

const formatPrompt = `You are a professional transcript editor. Format the following speech transcript.

Rules:
1. Keep every word of the original text, do not delete, rewrite or add content
2. Add punctuation based on meaning and pauses
3. Split into paragraphs where the topic changes
4. Output only the processed text, no titles, notes or summaries

Original text:

%s

Processed text:

`

const translatePrompt = `You are a professional translator and transcript editor. Translate the following speech transcript into %s and format it.

Rules:
1. Translate everything, do not leave out any part
2. Preserve the meaning and tone of the original
3. Add punctuation following the conventions of the target language
4. Split into paragraphs where the content changes
5. Output only the translated text, no titles, notes or summaries

Original text:

%s

Translation:

`

const detectPrompt = `Identify the language of the following text. Reply with the language code only.

Possible codes: zh (Chinese), en (English), ja (Japanese), ko (Korean), fr (French), de (German), es (Spanish), ru (Russian), pt (Portuguese), it (Italian), ar (Arabic), th (Thai), vi (Vietnamese)

Text:
%s

Language code:`

// FormatTranscript adds punctuation and paragraphs. Returns "" when
// the model produced nothing usable
func (s *Service) FormatTranscript(ctx context.Context, text, model string, progress func(float64, string)) (string, error) {
	report(progress, 0, "Preparing to format transcript...")
	report(progress, 30, "Sending to LLM for formatting...")
	res, err := s.generate(ctx, model, fmt.Sprintf(formatPrompt, text))
	if err != nil {
		return "", err
	}
	report(progress, 100, "Formatting complete")
	return res, nil
}

// TranslateAndFormat translates into targetLang and formats
func (s *Service) TranslateAndFormat(ctx context.Context, text, targetLang, model string, progress func(float64, string)) (string, error) {
	langName := api.LanguageName(targetLang)
	report(progress, 0, fmt.Sprintf("Preparing to translate to %s...", targetLang))
	report(progress, 30, fmt.Sprintf("Translating to %s...", langName))
	res, err := s.generate(ctx, model, fmt.Sprintf(translatePrompt, langName, text))
	if err != nil {
		return "", err
	}
	report(progress, 100, "Translation complete")
	return res, nil
}

// DetectLanguage asks the model for the language code of a text
// sample. Returns "" when the model gave no recognizable code
func (s *Service) DetectLanguage(ctx context.Context, text, model string) (string, error) {
	sample := text
	if rs := []rune(sample); len(rs) > 500 {
		sample = string(rs[:500])
	}
	res, err := s.generate(ctx, model, fmt.Sprintf(detectPrompt, sample))
	if err != nil {
		return "", err
	}
	res = strings.ToLower(res)
	for _, code := range api.Languages() {
		if strings.Contains(res, code) {
			return code, nil
		}
	}
	goapp.Log.Warn().Str("result", goapp.Sanitize(res)).Msg("no language code in answer")
	return "", nil
}

func (s *Service) generate(ctx context.Context, model, prompt string) (string, error) {
	if model == "" {
		model = s.defaultModel
	}
	res, err := s.provider.Generate(ctx, model, prompt)
	if err != nil {
		return "", fmt.Errorf("can't generate: %w", err)
	}
	return CleanOutput(res), nil
}

func report(progress func(float64, string), value float64, msg string) {
	if progress != nil {
		progress(value, msg)
	}
}
