package runtime

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AutoescapeSetting is the autoescape key of a config file. It accepts a
// boolean or a list of file extensions.
type AutoescapeSetting struct {
	Enabled    bool
	Extensions []string
	set        bool
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *AutoescapeSetting) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var enabled bool
		if err := node.Decode(&enabled); err != nil {
			return fmt.Errorf("autoescape: expected boolean, got %q", node.Value)
		}
		a.Enabled = enabled
	case yaml.SequenceNode:
		var exts []string
		if err := node.Decode(&exts); err != nil {
			return fmt.Errorf("autoescape: %w", err)
		}
		if exts == nil {
			exts = []string{}
		}
		a.Extensions = exts
	default:
		return fmt.Errorf("autoescape: expected boolean or list at line %d", node.Line)
	}
	a.set = true
	return nil
}

// IsSet reports whether the file configured autoescaping.
func (a AutoescapeSetting) IsSet() bool {
	return a.set
}

// FileConfig is the on-disk configuration format.
type FileConfig struct {
	Autoescape      AutoescapeSetting      `yaml:"autoescape"`
	StrictUndefined bool                   `yaml:"strict_undefined"`
	Globals         map[string]interface{} `yaml:"globals"`
	LogLevel        string                 `yaml:"log_level"`
}

// LoadFileConfig reads and parses a YAML config file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	fc, err := ParseFileConfig(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return fc, nil
}

// ParseFileConfig parses YAML config data. Empty input yields defaults.
func ParseFileConfig(data []byte) (*FileConfig, error) {
	fc := &FileConfig{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return fc, nil
	}
	if err := yaml.Unmarshal(data, fc); err != nil {
		return nil, err
	}
	if _, err := ParseLogLevel(fc.LogLevel); err != nil {
		return nil, err
	}
	return fc, nil
}

// ParseLogLevel maps debug, info, warn and error to slog levels. The empty
// string means info.
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, NewError(ErrorTypeConfig, fmt.Sprintf("unknown log level %q", level))
	}
}
