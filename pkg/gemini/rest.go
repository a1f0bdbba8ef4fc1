// Package gemini calls the Gemini generateContent API with one prompt and
// one inline image.
package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"github.com/valyala/fasthttp"
)

// DefaultEndpoint is the v1 models collection of the public API
const DefaultEndpoint = "https://generativelanguage.googleapis.com/v1/models"

var ErrEmptyResponse = errors.New("gemini response has no text")

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Client talks to the REST endpoint over fasthttp
type Client struct {
	http     *fasthttp.Client
	endpoint string
	model    string
	apiKey   string
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the fasthttp client
func WithHTTPClient(hc *fasthttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a REST client for model
func NewClient(endpoint, model, apiKey string, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	c := &Client{
		http:     &fasthttp.Client{Name: "quizquest"},
		endpoint: endpoint,
		model:    model,
		apiKey:   apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) url() string {
	return fmt.Sprintf("%s/%s:generateContent?key=%s", c.endpoint, c.model, url.QueryEscape(c.apiKey))
}

// Generate posts the prompt and image and returns the first candidate's text.
// Any status other than 200 is an error. There is no retry.
func (c *Client) Generate(ctx context.Context, prompt, mimeType string, image []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{
		{Text: prompt},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	}}}})
	if err != nil {
		return "", fmt.Errorf("error encoding request: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url())
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.Do(req, resp)
	}
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		return "", fmt.Errorf("gemini api error: status %d", status)
	}

	var parsed generateResponse
	if err := json.Unmarshal(resp.Body(), &parsed); err != nil {
		return "", fmt.Errorf("error decoding response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
