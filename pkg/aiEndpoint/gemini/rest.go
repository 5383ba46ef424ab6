package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/golang/glog"
	"github.com/second-brain/gemini-ask/pkg/config"
	"github.com/second-brain/gemini-ask/pkg/utils"
)

// DefaultBaseURL is the v1beta root of the generative-language REST API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// maxResponseBytes bounds how much of a reply is read into memory.
const maxResponseBytes = 32 << 20

// RESTClient talks to the generateContent endpoint directly over HTTP.
type RESTClient struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// RESTOption configures a RESTClient.
type RESTOption func(*RESTClient)

// WithBaseURL overrides DefaultBaseURL. An empty value is ignored.
func WithBaseURL(baseURL string) RESTOption {
	return func(c *RESTClient) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) RESTOption {
	return func(c *RESTClient) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewRESTClient returns a client for model authenticated with apiKey.
// An empty apiKey yields config.ErrMissingAPIKey.
func NewRESTClient(apiKey, model string, opts ...RESTOption) (*RESTClient, error) {
	if apiKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	if model == "" {
		return nil, fmt.Errorf("model name must not be empty")
	}
	c := &RESTClient{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		model:      model,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	glog.V(1).Infof("Gemini REST client created for model %q at %s.", c.model, c.baseURL)
	return c, nil
}

func (c *RESTClient) Name() string { return "rest" }

// Endpoint returns the URL of method (generateContent, countTokens) for the
// configured model.
func (c *RESTClient) Endpoint(method string) string {
	return fmt.Sprintf("%s/models/%s:%s", c.baseURL, c.model, method)
}

// call posts req to method and decodes a 2xx reply into out. The raw body is
// returned whenever one was read, including on error.
func (c *RESTClient) call(ctx context.Context, method string, req, out any) ([]byte, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := c.Endpoint(method)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	glog.V(1).Infof("POST %s (%d bytes).", url, len(payload))
	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error making API request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	glog.V(2).Infof("Response %s, body (truncated): %q", res.Status, utils.TruncateString(string(body), 500))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode, Status: res.Status, Body: body}
		var env errorEnvelope
		if json.Unmarshal(body, &env) == nil && env.Error != nil {
			apiErr.Message = env.Error.Message
		}
		return body, apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return body, &ResponseError{Reason: "invalid JSON", Raw: body, Err: err}
	}
	return body, nil
}

// GenerateContent posts req to generateContent and decodes the reply along
// with its raw body.
func (c *RESTClient) GenerateContent(ctx context.Context, req *GenerateContentRequest) (*GenerateContentResponse, []byte, error) {
	var resp GenerateContentResponse
	raw, err := c.call(ctx, "generateContent", req, &resp)
	if err != nil {
		return nil, raw, err
	}
	return &resp, raw, nil
}

// CountTokens asks countTokens how many tokens prompt uses for the model.
func (c *RESTClient) CountTokens(ctx context.Context, prompt string) (int, error) {
	var resp countTokensResponse
	if _, err := c.call(ctx, "countTokens", NewTextRequest(prompt), &resp); err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return resp.TotalTokens, nil
}

// SendPrompt sends prompt as a single-turn request and returns
// candidates[0].content.parts[0].text.
func (c *RESTClient) SendPrompt(ctx context.Context, prompt string) (string, error) {
	glog.V(1).Info("Sending prompt to Gemini REST API...")
	glog.V(2).Infof("Prompt content (truncated): %q", utils.TruncateString(prompt, 200))

	resp, raw, err := c.GenerateContent(ctx, NewTextRequest(prompt))
	if err != nil {
		return "", err
	}
	text, err := ExtractText(resp)
	if err != nil {
		if re, ok := err.(*ResponseError); ok {
			re.Raw = raw
		}
		return "", err
	}
	if text == "" {
		glog.Warning("Gemini response text was empty.")
	}
	glog.V(1).Infof("Received response from Gemini (length: %d).", len(text))
	return text, nil
}
