package flow

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/second-brain/gemini-ask/pkg/aiEndpoint"
	"github.com/second-brain/gemini-ask/pkg/display"
	"github.com/second-brain/gemini-ask/pkg/prompt"
	"github.com/second-brain/gemini-ask/pkg/utils"
)

// Options controls a single prompt/completion round trip.
type Options struct {
	Prompt      string
	FileList    string // optional file of context paths appended to Prompt
	Model       string // only used in log lines
	CountTokens bool
	Dump        bool   // save prompt and completion to DumpDir
	DumpDir     string // defaults to os.TempDir()
	HTML        bool   // also save the completion rendered as HTML
	Open        bool   // open the HTML file after saving it
}

// Run sends the prompt to engine and prints the completion to out.
// Errors from the engine are returned unchanged so callers can inspect them.
func Run(ctx context.Context, opts Options, engine aiEndpoint.AIEngine, out io.Writer) error {
	fullPrompt := opts.Prompt
	if opts.FileList != "" {
		files, err := prompt.ReadFileList(opts.FileList)
		if err != nil {
			return fmt.Errorf("failed to read files: %w", err)
		}
		glog.V(1).Infof("Successfully read %d files for the prompt.", len(files))
		fullPrompt = prompt.Build(opts.Prompt, files)
	}

	dumpDir := opts.DumpDir
	if dumpDir == "" {
		dumpDir = os.TempDir()
	}
	timestamp := time.Now().Format("20060102_150405")
	if opts.Dump {
		dumpFile(filepath.Join(dumpDir, fmt.Sprintf("ai_prompt_%s.txt", timestamp)), fullPrompt, "prompt")
	}

	glog.V(0).Infof("Sending prompt: %q to %s via %s backend", utils.TruncateString(fullPrompt, 80), opts.Model, engine.Name())

	if opts.CountTokens {
		if counter, ok := engine.(aiEndpoint.TokenCounter); ok {
			n, err := counter.CountTokens(ctx, fullPrompt)
			if err != nil {
				// Counting is informational; the request still goes out.
				glog.Warningf("Token count failed: %v", err)
			} else {
				glog.V(0).Infof("Prompt contains %d tokens.", n)
			}
		} else {
			glog.Warningf("Backend %s cannot count tokens.", engine.Name())
		}
	}

	completion, err := engine.SendPrompt(ctx, fullPrompt)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\nAPI Response:")
	fmt.Fprintln(out, completion)

	if opts.Dump {
		dumpFile(filepath.Join(dumpDir, fmt.Sprintf("ai_raw_output_%s.txt", timestamp)), completion, "completion")
	}

	if opts.HTML || opts.Open {
		// The completion is already printed; a rendering failure is logged only.
		path, err := display.SaveHTML(dumpDir, completion)
		if err != nil {
			glog.Errorf("Failed to save HTML rendering: %v", err)
			return nil
		}
		if opts.Open {
			if err := display.Open(path); err != nil {
				glog.Errorf("%v", err)
			}
		}
	}
	return nil
}

// dumpFile saves content for later inspection. Failures are logged, not
// returned: the completion has already been produced.
func dumpFile(path, content, what string) {
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		glog.Errorf("Failed to save %s to %q: %v", what, path, err)
		return
	}
	glog.V(0).Infof("Saved %s to %q", what, path)
}
