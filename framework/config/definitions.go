package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadDefinitions reads a container definition file. The format follows the
// extension (.yaml, .yml or .json) and ${VAR} references are expanded from the
// environment before parsing.
//
//	# container.yaml
//	mailer:
//	  class: app.Mailer
//	  config:
//	    from: ${MAIL_FROM}
//	  shared: true
func LoadDefinitions(path string) (map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definitions: %w", err)
	}
	return ParseDefinitions(filepath.Ext(path), raw)
}

// ParseDefinitions decodes definitions in the format named by ext.
func ParseDefinitions(ext string, raw []byte) (map[string]any, error) {
	expanded := []byte(os.ExpandEnv(string(raw)))

	defs := map[string]any{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(expanded, &defs); err != nil {
			return nil, fmt.Errorf("parsing yaml definitions: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(expanded, &defs); err != nil {
			return nil, fmt.Errorf("parsing json definitions: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported definitions format %q", ext)
	}
	return defs, nil
}
