package gemini

import (
	"context"
	"fmt"

	"github.com/second-brain/gemini-ask/pkg/aiEndpoint"
)

// Backend names accepted by NewEngine.
const (
	BackendREST         = "rest"
	BackendGenAI        = "genai"
	BackendGenerativeAI = "generativeai"
)

// NewEngine returns the AIEngine for backend. baseURL only applies to the
// REST backend; the SDKs manage their own endpoints.
func NewEngine(ctx context.Context, backend, apiKey, model, baseURL string) (aiEndpoint.AIEngine, error) {
	var (
		engine aiEndpoint.AIEngine
		err    error
	)
	switch backend {
	case BackendREST, "":
		engine, err = NewRESTClient(apiKey, model, WithBaseURL(baseURL))
	case BackendGenAI:
		engine, err = NewSDKClient(ctx, apiKey, model)
	case BackendGenerativeAI:
		engine, err = NewLegacyClient(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s, %s or %s)", backend, BackendREST, BackendGenAI, BackendGenerativeAI)
	}
	if err != nil {
		return nil, err
	}
	return engine, nil
}
