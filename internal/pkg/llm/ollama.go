package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/cenkalti/backoff/v4"
)

// Ollama talks to a local Ollama server
type Ollama struct {
	httpclient  *http.Client
	url         string
	timeout     time.Duration
	probeTimout time.Duration
	backoff     func() backoff.BackOff
}

// NewOllama creates an Ollama provider
func NewOllama(url string, timeout time.Duration) (*Ollama, error) {
	if url == "" {
		return nil, fmt.Errorf("no ollama URL")
	}
	if timeout <= 0 {
		timeout = time.Minute * 5
	}
	res := &Ollama{url: url, timeout: timeout, probeTimout: time.Second * 10}
	res.httpclient = &http.Client{Transport: newTransport()}
	res.backoff = newSimpleBackoff
	return res, nil
}

// Name implements Provider
func (sp *Ollama) Name() string {
	return "ollama"
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// CheckStatus probes the /api/tags endpoint
func (sp *Ollama) CheckStatus(ctx context.Context) *StatusData {
	res := &StatusData{Provider: sp.Name(), URL: sp.url}
	ctx, cancelF := context.WithTimeout(ctx, sp.probeTimout)
	defer cancelF()
	tags, err := sp.tags(ctx)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Available = true
	res.ModelsCount = len(tags.Models)
	return res
}

// ListModels returns model names known to the server
func (sp *Ollama) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancelF := context.WithTimeout(ctx, sp.probeTimout)
	defer cancelF()
	tags, err := sp.tags(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		res = append(res, m.Name)
	}
	return res, nil
}

func (sp *Ollama) tags(ctx context.Context) (*tagsResponse, error) {
	return goapp.InvokeWithBackoff(ctx, func() (*tagsResponse, bool, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, sp.url+"/api/tags", nil)
		if err != nil {
			return nil, false, err
		}
		resp, err := sp.httpclient.Do(req)
		if err != nil {
			return nil, goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
		}
		defer drainClose(resp)
		if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
			err = fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
			return nil, goapp.IsRetryableCode(resp.StatusCode), err
		}
		res := &tagsResponse{}
		if err := json.NewDecoder(resp.Body).Decode(res); err != nil {
			return nil, false, fmt.Errorf("can't unmarshal: %w", err)
		}
		return res, false, nil
	}, sp.backoff())
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Generate calls /api/generate without streaming
func (sp *Ollama) Generate(ctx context.Context, model, prompt string) (string, error) {
	b, err := json.Marshal(generateRequest{Model: model, Prompt: prompt})
	if err != nil {
		return "", fmt.Errorf("can't marshal request: %w", err)
	}
	return goapp.InvokeWithBackoff(ctx, func() (string, bool, error) {
		ctx, cancelF := context.WithTimeout(ctx, sp.timeout)
		defer cancelF()
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, sp.url+"/api/generate", bytes.NewReader(b))
		if err != nil {
			return "", false, err
		}
		req.Header.Set("Content-Type", "application/json")
		goapp.Log.Info().Str("url", req.URL.String()).Str("model", model).Msg("call")
		resp, err := sp.httpclient.Do(req)
		if err != nil {
			return "", goapp.IsRetryableErr(err), fmt.Errorf("can't call: %w", err)
		}
		defer drainClose(resp)
		if err := goapp.ValidateHTTPResp(resp, 100); err != nil {
			err = fmt.Errorf("can't invoke '%s': %w", req.URL.String(), err)
			return "", goapp.IsRetryableCode(resp.StatusCode), err
		}
		var respData generateResponse
		if err := json.NewDecoder(resp.Body).Decode(&respData); err != nil {
			return "", false, fmt.Errorf("can't unmarshal: %w", err)
		}
		return respData.Response, false, nil
	}, sp.backoff())
}

func drainClose(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 10000))
	_ = resp.Body.Close()
}

func newTransport() http.RoundTripper {
	// default roundripper has just 2 idle connections per host, tune a bit
	res := http.DefaultTransport.(*http.Transport).Clone()
	res.MaxConnsPerHost = 20
	res.MaxIdleConns = 10
	res.MaxIdleConnsPerHost = 10
	res.IdleConnTimeout = 90 * time.Second
	return res
}

func newSimpleBackoff() backoff.BackOff {
	res := backoff.NewExponentialBackOff()
	return backoff.WithMaxRetries(res, 3)
}
