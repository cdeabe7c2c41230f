// ABOUTME: Remote catalog endpoints with optional YAML override file
// ABOUTME: Supports ${VAR} expansion so mirrors can be injected from the environment

package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultIndexURL lists the catalog entries.
	DefaultIndexURL = "https://api.github.com/repos/ayka-667/SteamTools-GameList/contents"
	// DefaultRawBaseURL is the prefix archives are fetched from.
	DefaultRawBaseURL = "https://raw.githubusercontent.com/ayka-667/SteamTools-GameList/main"
)

// Endpoints holds the two catalog URLs.
type Endpoints struct {
	IndexURL   string `yaml:"index_url"`
	RawBaseURL string `yaml:"raw_base_url"`
}

// DefaultEndpoints returns the public catalog endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		IndexURL:   DefaultIndexURL,
		RawBaseURL: DefaultRawBaseURL,
	}
}

// LoadEndpoints reads an endpoints override file. A missing file yields the
// defaults; fields left empty in the file keep their defaults.
func LoadEndpoints(path string) (Endpoints, error) {
	ep := DefaultEndpoints()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ep, nil
	}
	if err != nil {
		return ep, fmt.Errorf("reading endpoints %s: %w", path, err)
	}

	var file Endpoints
	if err := yaml.Unmarshal(data, &file); err != nil {
		return ep, fmt.Errorf("parsing endpoints %s: %w", path, err)
	}

	if v := expandEnv(file.IndexURL); v != "" {
		ep.IndexURL = v
	}
	if v := expandEnv(file.RawBaseURL); v != "" {
		ep.RawBaseURL = strings.TrimRight(v, "/")
	}
	return ep, nil
}

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnv replaces ${VAR} with os.Getenv(VAR). Unset vars become "".
func expandEnv(s string) string {
	if s == "" {
		return s
	}
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
