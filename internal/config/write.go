package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/remon-cli/remon/internal/errors"
	"gopkg.in/yaml.v3"
)

// Write serializes the config to YAML and writes it to path.
// Parent directories are created if missing.
func Write(cfg *Config, path string) error {
	if err := Validate(cfg); err != nil {
		return err
	}

	var buf strings.Builder
	buf.WriteString("# remon configuration\n")
	buf.WriteString("# Durations accept Go syntax: 30s, 5m, 1h\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to encode config",
			"This is unexpected - please report it.")
	}
	encoder.Close()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot create config directory: "+dir,
				"Check directory permissions")
		}
	}

	if err := os.WriteFile(path, []byte(buf.String()), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check file permissions")
	}

	return nil
}
