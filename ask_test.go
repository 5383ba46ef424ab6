package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/second-brain/gemini-ask/pkg/aiEndpoint/gemini"
	"github.com/second-brain/gemini-ask/pkg/config"
)

func TestMain(m *testing.M) {
	flag.Parse()
	os.Exit(m.Run())
}

func testConfig(t *testing.T, baseURL string) Config {
	t.Helper()
	return Config{
		Prompt:  "What is the capital of France?",
		Model:   "gemini-2.5-flash",
		Backend: "rest",
		BaseURL: baseURL,
		EnvFile: filepath.Join(t.TempDir(), config.EnvFileName),
		DumpDir: t.TempDir(),
	}
}

func newServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		status     int
		body       string
		wantCode   int
		wantCalls  int32
		wantStdout string
		wantStderr []string
	}{
		{
			name:       "Success",
			apiKey:     "key",
			status:     http.StatusOK,
			body:       `{"candidates":[{"content":{"parts":[{"text":"Paris"}]}}]}`,
			wantCode:   exitOK,
			wantCalls:  1,
			wantStdout: "\nAPI Response:\nParis\n",
		},
		{
			name:       "Missing API key",
			apiKey:     "",
			status:     http.StatusOK,
			wantCode:   exitError,
			wantCalls:  0,
			wantStderr: []string{"GEMINI_API_KEY not found"},
		},
		{
			name:       "API error",
			apiKey:     "bad",
			status:     http.StatusForbidden,
			body:       `{"error":{"code":403,"message":"denied","status":"PERMISSION_DENIED"}}`,
			wantCode:   exitError,
			wantCalls:  1,
			wantStderr: []string{"Response status code: 403", `"PERMISSION_DENIED"`},
		},
		{
			name:       "Unexpected response shape",
			apiKey:     "key",
			status:     http.StatusOK,
			body:       `{"candidates":[]}`,
			wantCode:   exitError,
			wantCalls:  1,
			wantStderr: []string{"error parsing response JSON", "Full response:", `{"candidates":[]}`},
		},
		{
			name:       "Part without text key",
			apiKey:     "key",
			status:     http.StatusOK,
			body:       `{"candidates":[{"content":{"parts":[{}]}}]}`,
			wantCode:   exitError,
			wantCalls:  1,
			wantStderr: []string{"candidate 0 part 0 has no text", `{"candidates":[{"content":{"parts":[{}]}}]}`},
		},
		{
			name:       "Inline data part",
			apiKey:     "key",
			status:     http.StatusOK,
			body:       `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"iVBORw0KGgo="}}]}}]}`,
			wantCode:   exitError,
			wantCalls:  1,
			wantStderr: []string{"candidate 0 part 0 has no text", "inlineData"},
		},
		{
			name:       "Null text",
			apiKey:     "key",
			status:     http.StatusOK,
			body:       `{"candidates":[{"content":{"parts":[{"text":null}]}}]}`,
			wantCode:   exitError,
			wantCalls:  1,
			wantStderr: []string{"candidate 0 part 0 has no text", `"text":null`},
		},
		{
			name:       "Empty text is still a success",
			apiKey:     "key",
			status:     http.StatusOK,
			body:       `{"candidates":[{"content":{"parts":[{"text":""}]}}]}`,
			wantCode:   exitOK,
			wantCalls:  1,
			wantStdout: "\nAPI Response:\n\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(config.APIKeyEnv, tt.apiKey)
			var calls int32
			srv := newServer(t, tt.status, tt.body, &calls)

			var stdout, stderr bytes.Buffer
			code := run(context.Background(), testConfig(t, srv.URL), &stdout, &stderr)

			if code != tt.wantCode {
				t.Errorf("run() = %d, want %d; stderr: %s", code, tt.wantCode, stderr.String())
			}
			if got := atomic.LoadInt32(&calls); got != tt.wantCalls {
				t.Errorf("server calls = %d, want %d", got, tt.wantCalls)
			}
			if stdout.String() != tt.wantStdout {
				t.Errorf("stdout = %q, want %q", stdout.String(), tt.wantStdout)
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr = %q, want it to contain %q", stderr.String(), want)
				}
			}
		})
	}
}

func TestRun_KeyFromEnvFile(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "")
	os.Unsetenv(config.APIKeyEnv)

	var gotKey atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("x-goog-api-key"))
		io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	}))
	t.Cleanup(srv.Close)

	cfg := testConfig(t, srv.URL)
	if err := os.WriteFile(cfg.EnvFile, []byte(config.APIKeyEnv+"=from-env-file\n"), 0644); err != nil {
		t.Fatalf("Failed to write env file: %v", err)
	}

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), cfg, &stdout, &stderr); code != exitOK {
		t.Fatalf("run() = %d, want %d; stderr: %s", code, exitOK, stderr.String())
	}
	if got, _ := gotKey.Load().(string); got != "from-env-file" {
		t.Errorf("request key = %q, want %q", got, "from-env-file")
	}
}

func TestRun_UnknownBackend(t *testing.T) {
	t.Setenv(config.APIKeyEnv, "key")
	cfg := testConfig(t, "http://127.0.0.1:1")
	cfg.Backend = "smoke-signals"

	var stderr bytes.Buffer
	if code := run(context.Background(), cfg, io.Discard, &stderr); code != exitError {
		t.Errorf("run() = %d, want %d", code, exitError)
	}
	if !strings.Contains(stderr.String(), "unknown backend") {
		t.Errorf("stderr = %q, want unknown backend message", stderr.String())
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{
			name: "HTTP failure from an SDK backend",
			err: fmt.Errorf("failed to generate content from Gemini: %w", &gemini.APIError{
				StatusCode: 400,
				Message:    "bad key",
				Body:       []byte(`{"error":{"code":400,"message":"bad key"}}`),
			}),
			want: []string{"Error making API request", "Response status code: 400", `"message":"bad key"`},
		},
		{
			name: "gRPC status without HTTP code",
			err:  &gemini.APIError{Status: "NotFound", Message: "no model", Body: []byte(`{"error":{"status":"NotFound"}}`)},
			want: []string{"Response status: NotFound", `"status":"NotFound"`},
		},
		{
			name: "Unexpected shape",
			err:  &gemini.ResponseError{Reason: "response has no candidates", Raw: []byte(`{"candidates":[]}`)},
			want: []string{"response has no candidates", "Full response:", `{"candidates":[]}`},
		},
		{
			name: "Other",
			err:  errors.New("dial tcp: connection refused"),
			want: []string{"Error: dial tcp: connection refused"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reportError(&buf, tt.err)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("reportError() = %q, want it to contain %q", buf.String(), want)
				}
			}
		})
	}
}
