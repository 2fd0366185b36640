package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

//nolint:gochecknoglobals // Process-wide configuration singleton.
var (
	globalConfig     *Config
	globalConfigErr  error
	globalConfigMu   sync.Mutex
	globalConfigInit bool
)

// GetGlobalConfig loads the config file once per process and applies the
// environment overrides. A malformed file falls back to the defaults; the
// error is available from GlobalConfigError.
func GetGlobalConfig() *Config {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	if !globalConfigInit {
		cfg, err := Load("")
		if err != nil {
			globalConfigErr = err
			cfg = New()
		}
		cfg.ApplyEnv()
		globalConfig = cfg
		globalConfigInit = true
	}
	return globalConfig
}

// GlobalConfigError returns the error encountered while loading the global config.
func GlobalConfigError() error {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	return globalConfigErr
}

// ResetGlobalConfigForTest forgets the loaded global config.
func ResetGlobalConfigForTest() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()

	globalConfig = nil
	globalConfigErr = nil
	globalConfigInit = false
}

// GetConfigDir returns $ECOTRACK_HOME, or ~/.ecotrack when it is unset.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".ecotrack"), nil
}

// EnsureConfigDir creates the config directory if needed.
func EnsureConfigDir() error {
	dir, err := GetConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o700)
}

// EnsureLogDir creates the parent directory of the configured log file.
// It does nothing when logs go to stderr.
func EnsureLogDir() error {
	cfg := GetGlobalConfig()
	if cfg.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(cfg.Logging.File)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}
