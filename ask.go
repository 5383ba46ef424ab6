package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/golang/glog"
	"github.com/second-brain/gemini-ask/pkg/aiEndpoint/gemini"
	"github.com/second-brain/gemini-ask/pkg/config"
	"github.com/second-brain/gemini-ask/pkg/flow"
	"github.com/second-brain/gemini-ask/pkg/prompt"
)

const defaultModel = "gemini-2.5-flash"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// Config holds the command-line arguments.
type Config struct {
	Prompt      string
	Model       string
	Backend     string
	BaseURL     string
	EnvFile     string
	FileList    string
	Timeout     time.Duration
	CountTokens bool
	Dump        bool
	DumpDir     string
	HTML        bool
	Open        bool
}

func main() {
	// Logs go to stderr as well as files unless overridden on the command line.
	if err := flag.Set("alsologtostderr", "true"); err != nil {
		glog.Errorf("Failed to set default for -alsologtostderr: %v", err)
	}
	defer glog.Flush()

	var cfg Config
	flag.StringVar(&cfg.Prompt, "prompt", "", `The prompt to send; "-" reads stdin. Positional arguments are used when empty.`)
	flag.StringVar(&cfg.Model, "model", "", "Model to use (default $"+config.ModelEnv+" or "+defaultModel+")")
	flag.StringVar(&cfg.Backend, "backend", gemini.BackendREST, "Client backend: rest, genai or generativeai")
	flag.StringVar(&cfg.BaseURL, "base-url", "", "REST API base URL (default $"+config.BaseURLEnv+" or "+gemini.DefaultBaseURL+")")
	flag.StringVar(&cfg.EnvFile, "env-file", config.DefaultEnvFile(), "Env file to load before reading "+config.APIKeyEnv)
	flag.StringVar(&cfg.FileList, "file-list", "", "Optional file listing paths whose contents are appended to the prompt")
	flag.DurationVar(&cfg.Timeout, "timeout", 60*time.Second, "Overall request timeout")
	flag.BoolVar(&cfg.CountTokens, "count-tokens", false, "Log the prompt token count before sending")
	flag.BoolVar(&cfg.Dump, "dump", false, "Save the prompt and completion to -dump-dir")
	flag.StringVar(&cfg.DumpDir, "dump-dir", os.TempDir(), "Directory for dumps and HTML output")
	flag.BoolVar(&cfg.HTML, "html", false, "Also save the completion rendered as HTML")
	flag.BoolVar(&cfg.Open, "open", false, "Open the HTML rendering in the default browser (implies -html)")
	flag.Parse()

	text, err := prompt.ReadPrompt(cfg.Prompt, flag.Args(), os.Stdin)
	if err != nil {
		glog.Errorf("Validation Error: %v", err)
		flag.Usage()
		glog.Flush()
		os.Exit(exitUsage)
	}
	cfg.Prompt = text

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, cfg, os.Stdout, os.Stderr)
	stop()
	glog.Flush()
	os.Exit(code)
}

// run loads configuration, sends the prompt and reports the outcome. It
// returns the process exit code.
func run(ctx context.Context, cfg Config, stdout, stderr io.Writer) int {
	loaded, err := config.LoadEnvFile(cfg.EnvFile)
	if err != nil {
		glog.Errorf("%v", err)
		return exitError
	}
	if !loaded && cfg.EnvFile != "" {
		glog.Warningf("%s file not found at %s. Trying environment variables.", config.EnvFileName, cfg.EnvFile)
	}

	apiKey, err := config.APIKey()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	if cfg.Model == "" {
		cfg.Model = config.StringFromEnv(config.ModelEnv, defaultModel)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.StringFromEnv(config.BaseURLEnv, "")
	}
	glog.V(1).Infof("Model: %q, backend: %q, timeout: %s", cfg.Model, cfg.Backend, cfg.Timeout)

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	engine, err := gemini.NewEngine(ctx, cfg.Backend, apiKey, cfg.Model, cfg.BaseURL)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	if closer, ok := engine.(io.Closer); ok {
		defer closer.Close()
	}

	err = flow.Run(ctx, flow.Options{
		Prompt:      cfg.Prompt,
		FileList:    cfg.FileList,
		Model:       cfg.Model,
		CountTokens: cfg.CountTokens,
		Dump:        cfg.Dump,
		DumpDir:     cfg.DumpDir,
		HTML:        cfg.HTML,
		Open:        cfg.Open,
	}, engine, stdout)
	if err != nil {
		reportError(stderr, err)
		return exitError
	}

	glog.V(0).Info("Finished successfully.")
	return exitOK
}

// reportError prints err for a human, including the raw response when the
// failure carried one.
func reportError(w io.Writer, err error) {
	var apiErr *gemini.APIError
	var respErr *gemini.ResponseError
	switch {
	case errors.As(err, &apiErr):
		fmt.Fprintf(w, "\nError making API request: %v\n", err)
		if apiErr.StatusCode != 0 {
			fmt.Fprintf(w, "Response status code: %d\n", apiErr.StatusCode)
		} else {
			fmt.Fprintf(w, "Response status: %s\n", apiErr.Status)
		}
		fmt.Fprintf(w, "Response body: %s\n", apiErr.Body)
	case errors.As(err, &respErr):
		fmt.Fprintf(w, "\n%v\n", err)
		fmt.Fprintln(w, "Full response:")
		fmt.Fprintf(w, "%s\n", respErr.Raw)
	default:
		fmt.Fprintf(w, "\nError: %v\n", err)
	}
}
