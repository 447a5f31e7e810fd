package npc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrEmptyResponse means the service answered without any candidate text.
var ErrEmptyResponse = errors.New("advisory response has no text")

type genPart struct {
	Text string `json:"text"`
}

type genContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []genPart `json:"parts"`
}

type genRequest struct {
	Contents []genContent `json:"contents"`
}

type genResponse struct {
	Candidates []struct {
		Content genContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// HTTPAdvisor calls a generateContent-style text generation endpoint:
// POST {endpoint}/{model}:generateContent with the prompt as a single user
// part, and parses the first candidate's text into a Directive.
type HTTPAdvisor struct {
	client   *http.Client
	endpoint string
	model    string
	apiKey   string
}

func NewHTTPAdvisor(client *http.Client, endpoint, model, apiKey string) *HTTPAdvisor {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPAdvisor{
		client:   client,
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		apiKey:   apiKey,
	}
}

func (a *HTTPAdvisor) url() string {
	return fmt.Sprintf("%s/%s:generateContent", a.endpoint, a.model)
}

func (a *HTTPAdvisor) Advise(ctx context.Context, req Request) (Directive, error) {
	body, err := json.Marshal(genRequest{
		Contents: []genContent{{Role: "user", Parts: []genPart{{Text: req.Prompt()}}}},
	})
	if err != nil {
		return Directive{}, fmt.Errorf("encode advisory request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url(), bytes.NewReader(body))
	if err != nil {
		return Directive{}, fmt.Errorf("build advisory request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		httpReq.Header.Set("x-goog-api-key", a.apiKey)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return Directive{}, fmt.Errorf("advisory request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Directive{}, fmt.Errorf("read advisory response: %w", err)
	}
	var out genResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return Directive{}, fmt.Errorf("advisory status %d", resp.StatusCode)
		}
		return Directive{}, fmt.Errorf("decode advisory response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return Directive{}, fmt.Errorf("advisory status %d: %s", resp.StatusCode, out.Error.Message)
		}
		return Directive{}, fmt.Errorf("advisory status %d", resp.StatusCode)
	}

	for _, c := range out.Candidates {
		var text strings.Builder
		for _, p := range c.Content.Parts {
			text.WriteString(p.Text)
		}
		if s := strings.TrimSpace(text.String()); s != "" {
			return ParseDirective(s), nil
		}
	}
	return Directive{}, ErrEmptyResponse
}
