package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/second-brain/gemini-ask/pkg/config"
	"github.com/second-brain/gemini-ask/pkg/utils"
	"google.golang.org/genai"
)

// SDKClient implements aiEndpoint.AIEngine on top of google.golang.org/genai.
type SDKClient struct {
	client    *genai.Client
	modelName string
}

// NewSDKClient initializes a genai client against the Gemini API backend.
func NewSDKClient(ctx context.Context, apiKey, modelName string) (*SDKClient, error) {
	if apiKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1beta"},
	})
	if err != nil {
		glog.Errorf("Failed to create Gemini client: %v", err)
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	glog.V(1).Infof("genai client created for model %q.", modelName)
	return &SDKClient{client: client, modelName: modelName}, nil
}

func (c *SDKClient) Name() string { return "genai" }

func userContents(text string) []*genai.Content {
	return []*genai.Content{
		{
			Parts: []*genai.Part{{Text: text}},
			Role:  "user",
		},
	}
}

// SendPrompt sends prompt and returns the first part of the first candidate.
func (c *SDKClient) SendPrompt(ctx context.Context, prompt string) (string, error) {
	glog.V(1).Info("Sending prompt to Gemini via genai SDK...")
	glog.V(2).Infof("Prompt content (truncated): %q", utils.TruncateString(prompt, 200))

	resp, err := c.client.Models.GenerateContent(ctx, c.modelName, userContents(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content from Gemini: %w", fromGenAIError(err))
	}
	text, err := sdkText(resp)
	if err != nil {
		if re, ok := err.(*ResponseError); ok {
			re.Raw, _ = json.Marshal(resp)
		}
		return "", err
	}
	glog.V(1).Infof("Received response from Gemini (length: %d).", len(text))
	return text, nil
}

// CountTokens reports the token count of prompt for the configured model.
func (c *SDKClient) CountTokens(ctx context.Context, prompt string) (int, error) {
	glog.V(1).Infof("Requesting token count for prompt in model %q.", c.modelName)
	resp, err := c.client.Models.CountTokens(ctx, c.modelName, userContents(prompt), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", fromGenAIError(err))
	}
	return int(resp.TotalTokens), nil
}

// sdkText mirrors ExtractText. genai decodes a missing text field to "", so
// an empty Text is reported as missing: the SDK cannot tell the two apart.
func sdkText(resp *genai.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", &ResponseError{Reason: "empty response"}
	case len(resp.Candidates) == 0:
		return "", &ResponseError{Reason: "response has no candidates"}
	case resp.Candidates[0] == nil || resp.Candidates[0].Content == nil:
		return "", &ResponseError{Reason: "candidate 0 has no content"}
	case len(resp.Candidates[0].Content.Parts) == 0 || resp.Candidates[0].Content.Parts[0] == nil:
		return "", &ResponseError{Reason: "candidate 0 content has no parts"}
	case resp.Candidates[0].Content.Parts[0].Text == "":
		return "", &ResponseError{Reason: "candidate 0 part 0 has no text"}
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}

// fromGenAIError turns a genai HTTP failure into *APIError. Other errors are
// returned unchanged.
func fromGenAIError(err error) error {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var ptr *genai.APIError
		if !errors.As(err, &ptr) || ptr == nil {
			return err
		}
		apiErr = *ptr
	}
	return &APIError{
		StatusCode: apiErr.Code,
		Message:    apiErr.Message,
		Body:       errorBody(apiErr.Code, apiErr.Message, apiErr.Status, apiErr.Details),
	}
}
