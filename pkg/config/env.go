package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

const (
	// EnvFileName is looked up next to the running executable.
	EnvFileName = ".env.local"

	APIKeyEnv  = "GEMINI_API_KEY"
	ModelEnv   = "GEMINI_MODEL"
	BaseURLEnv = "GEMINI_BASE_URL"
)

// ErrMissingAPIKey is returned when GEMINI_API_KEY is absent from both the
// env file and the process environment.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY not found in .env.local or environment variables")

// DefaultEnvFile returns the path of .env.local in the directory that holds
// the running executable. It falls back to the working directory when the
// executable path cannot be resolved.
func DefaultEnvFile() string {
	exe, err := os.Executable()
	if err != nil {
		glog.V(1).Infof("Could not resolve executable path, using working directory for %s: %v", EnvFileName, err)
		return EnvFileName
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Join(filepath.Dir(exe), EnvFileName)
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment are not overridden.
// A missing file is not an error: loaded is false and the caller decides
// whether to warn.
func LoadEnvFile(path string) (loaded bool, err error) {
	if path == "" {
		return false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat env file %q: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	glog.V(1).Infof("Loaded environment from %q.", path)
	return true, nil
}

// APIKey returns the Gemini API key, or ErrMissingAPIKey.
func APIKey() (string, error) {
	apiKey := os.Getenv(APIKeyEnv)
	if apiKey == "" {
		return "", ErrMissingAPIKey
	}
	glog.V(1).Infof("Using API key from %s environment variable.", APIKeyEnv)
	return apiKey, nil
}

// StringFromEnv returns the value of name, or def when it is unset or empty.
func StringFromEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
