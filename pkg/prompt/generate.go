package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/second-brain/gemini-ask/pkg/utils"
)

// StdinMarker as the prompt value means "read the prompt from stdin".
const StdinMarker = "-"

// ReadPrompt resolves the prompt text from the -prompt flag, falling back to
// the positional arguments joined by spaces. A value of "-" reads stdin.
// Surrounding whitespace is trimmed; an empty result is an error.
func ReadPrompt(flagValue string, args []string, stdin io.Reader) (string, error) {
	text := flagValue
	if text == "" {
		text = strings.Join(args, " ")
	}
	if strings.TrimSpace(text) == StdinMarker {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read prompt from stdin: %w", err)
		}
		text = string(b)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("prompt is empty")
	}
	return text, nil
}

// ReadFileList reads the newline-separated paths listed in fileListPath
// (blank lines skipped) and returns the contents keyed by path.
func ReadFileList(fileListPath string) (map[string]string, error) {
	glog.V(1).Infof("Reading file list from: %q", fileListPath)

	file, err := os.Open(fileListPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file list: %w", err)
	}
	defer file.Close()

	var paths []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file list: %w", err)
	}

	contents := make(map[string]string, len(paths))
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %q: %w", path, err)
		}
		contents[path] = string(b)
		glog.V(3).Infof("Read %d bytes from %q.", len(b), path)
	}
	return contents, nil
}

// Build appends each context file to userInput between start/end markers,
// in sorted path order so the same inputs always produce the same prompt.
// With no files the user input is returned unchanged.
func Build(userInput string, files map[string]string) string {
	if len(files) == 0 {
		return userInput
	}
	glog.V(2).Infof("Building prompt from input (truncated) %q and %d files.", utils.TruncateString(userInput, 100), len(files))

	paths := make([]string, 0, len(files))
	for p := range files {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString(userInput)
	b.WriteString("\n")
	for _, p := range paths {
		content := files[p]
		fmt.Fprintf(&b, "\n--- Start of File: %s ---\n", p)
		b.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- End of File: %s ---\n", p)
	}
	return b.String()
}
