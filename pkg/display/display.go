package display

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/golang/glog"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

const pageTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Gemini response</title>
</head>
<body>
%s</body>
</html>
`

// RenderHTML converts a Markdown completion into an HTML fragment.
func RenderHTML(completion string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(completion), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

// SaveHTML renders completion as a standalone HTML page in dir and returns the
// file path. The name carries a timestamp so earlier responses are kept.
func SaveHTML(dir, completion string) (string, error) {
	fragment, err := RenderHTML(completion)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = os.TempDir()
	}
	filePath := filepath.Join(dir, fmt.Sprintf("gemini_response_%s.html", time.Now().Format("20060102_150405")))
	if err := os.WriteFile(filePath, []byte(fmt.Sprintf(pageTemplate, fragment)), 0644); err != nil {
		return "", fmt.Errorf("failed to save response: %w", err)
	}
	glog.V(0).Infof("Response saved as HTML to %q", filePath)
	return filePath, nil
}

// Open asks the platform's default handler to open filePath. It does not wait
// for the viewer to exit.
func Open(filePath string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", filePath)
	case "linux":
		cmd = exec.Command("xdg-open", filePath)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", filePath)
	default:
		glog.Warningf("Unsupported operating system for opening files: %s. Please open %q manually.", runtime.GOOS, filePath)
		return nil
	}

	glog.V(1).Infof("Opening %q with: %s", filePath, cmd.String())
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %q: %w", filePath, err)
	}
	return nil
}
