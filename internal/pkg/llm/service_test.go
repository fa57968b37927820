package llm

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/airenas/scribe/internal/pkg/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testProvider struct {
	generateF func(model, prompt string) (string, error)
	status    *StatusData
	models    []string
	prompts   []string
	usedModel string
}

func (p *testProvider) Name() string { return "test" }

func (p *testProvider) CheckStatus(ctx context.Context) *StatusData {
	if p.status != nil {
		return p.status
	}
	return &StatusData{Provider: "test", Available: true}
}

func (p *testProvider) ListModels(ctx context.Context) ([]string, error) {
	return p.models, nil
}

func (p *testProvider) Generate(ctx context.Context, model, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	p.usedModel = model
	if p.generateF != nil {
		return p.generateF(model, prompt)
	}
	return "olia", nil
}

func TestNewService(t *testing.T) {
	s, err := NewService(&testProvider{}, "m1")
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestNewService_Fail(t *testing.T) {
	_, err := NewService(nil, "m1")
	assert.Error(t, err)
}

func TestFormatTranscript(t *testing.T) {
	p := &testProvider{generateF: func(model, prompt string) (string, error) {
		return "**formatted** olia", nil
	}}
	s, _ := NewService(p, "m1")
	var values []float64
	res, err := s.FormatTranscript(test.Ctx(t), "raw olia", "", func(v float64, msg string) {
		values = append(values, v)
	})
	require.NoError(t, err)
	assert.Equal(t, "formatted olia", res)
	assert.Equal(t, []float64{0, 30, 100}, values)
	assert.Equal(t, "m1", p.usedModel)
	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "raw olia")
}

func TestFormatTranscript_Model(t *testing.T) {
	p := &testProvider{}
	s, _ := NewService(p, "m1")
	_, err := s.FormatTranscript(test.Ctx(t), "olia", "m2", nil)
	require.NoError(t, err)
	assert.Equal(t, "m2", p.usedModel)
}

func TestFormatTranscript_Fail(t *testing.T) {
	p := &testProvider{generateF: func(model, prompt string) (string, error) {
		return "", fmt.Errorf("err")
	}}
	s, _ := NewService(p, "m1")
	_, err := s.FormatTranscript(test.Ctx(t), "olia", "", nil)
	assert.Error(t, err)
}

func TestTranslateAndFormat(t *testing.T) {
	p := &testProvider{generateF: func(model, prompt string) (string, error) {
		return "translated olia", nil
	}}
	s, _ := NewService(p, "m1")
	res, err := s.TranslateAndFormat(test.Ctx(t), "raw olia", "ja", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "translated olia", res)
	require.Len(t, p.prompts, 1)
	assert.Contains(t, p.prompts[0], "Japanese")
	assert.Contains(t, p.prompts[0], "raw olia")
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name     string
		answer   string
		expected string
	}{
		{name: "plain", answer: "en", expected: "en"},
		{name: "upper", answer: "EN", expected: "en"},
		{name: "wrapped", answer: "The language is ja.", expected: "ja"},
		{name: "think", answer: "<think>maybe zh</think>ko", expected: "ko"},
		{name: "none", answer: "no idea", expected: ""},
		{name: "empty", answer: "", expected: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &testProvider{generateF: func(model, prompt string) (string, error) {
				return tt.answer, nil
			}}
			s, _ := NewService(p, "m1")
			res, err := s.DetectLanguage(test.Ctx(t), "olia text", "")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res)
		})
	}
}

func TestDetectLanguage_Sample(t *testing.T) {
	p := &testProvider{generateF: func(model, prompt string) (string, error) {
		return "en", nil
	}}
	s, _ := NewService(p, "m1")
	long := strings.Repeat("a", 2000)
	_, err := s.DetectLanguage(test.Ctx(t), long, "")
	require.NoError(t, err)
	require.Len(t, p.prompts, 1)
	assert.NotContains(t, p.prompts[0], strings.Repeat("a", 501))
}
