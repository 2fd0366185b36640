package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rshade/ecotrack/internal/logging"
)

// LoggingConfig is the logging section of the config file.
type LoggingConfig struct {
	Level  string `yaml:"level"            json:"level"`
	Format string `yaml:"format"           json:"format"`
	File   string `yaml:"file,omitempty"   json:"file,omitempty"`
	Caller bool   `yaml:"caller,omitempty" json:"caller,omitempty"`
}

// Validate checks the level and format names.
func (l LoggingConfig) Validate() error {
	if l.Level != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(l.Level)); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidLogLevel, l.Level)
		}
	}
	if l.Format != "" && l.Format != logging.FormatConsole && l.Format != logging.FormatJSON {
		return fmt.Errorf("%w: got %q", ErrInvalidLogFormat, l.Format)
	}
	return nil
}

// ToLoggingConfig converts the section into a logger configuration.
// Logs go to the file when one is configured and to stderr otherwise.
func (l LoggingConfig) ToLoggingConfig() logging.Config {
	out := logging.Config{
		Level:  l.Level,
		Format: l.Format,
		Output: logging.OutputStderr,
		Caller: l.Caller,
	}
	if l.File != "" {
		out.Output = logging.OutputFile
		out.File = l.File
	}
	return out
}
