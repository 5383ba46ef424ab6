package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/golang/glog"
	legacy "github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/second-brain/gemini-ask/pkg/config"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// LegacyClient implements aiEndpoint.AIEngine with the older
// github.com/google/generative-ai-go SDK.
type LegacyClient struct {
	client *legacy.Client
	model  *legacy.GenerativeModel
	name   string
}

func NewLegacyClient(ctx context.Context, apiKey, modelName string) (*LegacyClient, error) {
	if apiKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	client, err := legacy.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create generative-ai client: %w", err)
	}
	glog.V(1).Infof("generative-ai client created for model %q.", modelName)
	return &LegacyClient{client: client, model: client.GenerativeModel(modelName), name: modelName}, nil
}

func (c *LegacyClient) Name() string { return "generativeai" }

func (c *LegacyClient) SendPrompt(ctx context.Context, prompt string) (string, error) {
	glog.V(1).Info("Sending prompt to Gemini via generative-ai SDK...")
	resp, err := c.model.GenerateContent(ctx, legacy.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content from Gemini: %w", fromLegacyError(err))
	}
	text, err := legacyText(resp)
	if err != nil {
		if re, ok := err.(*ResponseError); ok {
			re.Raw, _ = json.Marshal(resp)
		}
		return "", err
	}
	return text, nil
}

func (c *LegacyClient) CountTokens(ctx context.Context, prompt string) (int, error) {
	resp, err := c.model.CountTokens(ctx, legacy.Text(prompt))
	if err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", fromLegacyError(err))
	}
	return int(resp.TotalTokens), nil
}

func (c *LegacyClient) Close() error {
	return c.client.Close()
}

func legacyText(resp *legacy.GenerateContentResponse) (string, error) {
	switch {
	case resp == nil:
		return "", &ResponseError{Reason: "empty response"}
	case len(resp.Candidates) == 0:
		return "", &ResponseError{Reason: "response has no candidates"}
	case resp.Candidates[0] == nil || resp.Candidates[0].Content == nil:
		return "", &ResponseError{Reason: "candidate 0 has no content"}
	case len(resp.Candidates[0].Content.Parts) == 0:
		return "", &ResponseError{Reason: "candidate 0 content has no parts"}
	}
	text, ok := resp.Candidates[0].Content.Parts[0].(legacy.Text)
	if !ok {
		return "", &ResponseError{Reason: fmt.Sprintf("candidate 0 part 0 is %T, not text", resp.Candidates[0].Content.Parts[0])}
	}
	return string(text), nil
}

// fromLegacyError turns a googleapi HTTP failure, or a gRPC status carried by
// an apierror, into *APIError. Other errors are returned unchanged.
func fromLegacyError(err error) error {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		body := []byte(gErr.Body)
		if len(body) == 0 {
			body = errorBody(gErr.Code, gErr.Message, "", gErr.Details)
		}
		apiErr := &APIError{StatusCode: gErr.Code, Message: gErr.Message, Body: body}
		if apiErr.Message == "" {
			var env errorEnvelope
			if json.Unmarshal(body, &env) == nil && env.Error != nil {
				apiErr.Message = env.Error.Message
			}
		}
		return apiErr
	}
	if ae, ok := apierror.FromError(err); ok && ae.GRPCStatus() != nil {
		st := ae.GRPCStatus()
		return &APIError{
			Status:  st.Code().String(),
			Message: st.Message(),
			Body:    errorBody(0, st.Message(), st.Code().String(), nil),
		}
	}
	return err
}
