// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"ham-cli/internal/issue"
	"ham-cli/pkg/cueutil"
	"ham-cli/pkg/platform"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "ham"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides (HAM_LOCK_WAIT for lock.wait).
	EnvPrefix = "HAM"
)

//go:embed config_schema.cue
var configSchema []byte

// configDirOverride replaces the platform config directory in tests.
var configDirOverride string

// ConfigDir returns the ham configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case platform.Windows:
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case platform.Darwin:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the path of the file that was read, or ""
// when only defaults and environment overrides apply.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	path, err := settingsPath(opts)
	if err != nil {
		return nil, "", err
	}

	resolvedPath := ""
	switch {
	case fileExists(path):
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load settings").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the values match the expected schema (see 'ham settings dump')").
				Wrap(err).
				BuildError()
		}
		resolvedPath = path
	case opts.ConfigFilePath != "":
		// An explicit file must exist; the default location is optional.
		return nil, "", issue.NewErrorContext().
			WithOperation("load settings").
			WithResource(path).
			WithSuggestion("Verify the file path is correct").
			WithSuggestion("Run 'ham settings init' to create the default settings file").
			Wrap(fmt.Errorf("settings file not found: %s", path)).
			BuildError()
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse settings: %w", err)
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate settings").
			WithResource(path).
			WithSuggestion("Durations must not be negative").
			WithSuggestion("Command lines must name a program and use balanced quotes").
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// newViper returns a Viper instance carrying the defaults and HAM_* overrides.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("installer.command", defaults.Installer.Command.String())
	v.SetDefault("rebuild.node", defaults.Rebuild.Node.String())
	v.SetDefault("rebuild.entry", defaults.Rebuild.Entry)
	v.SetDefault("patch.interpreter", defaults.Patch.Interpreter.String())
	v.SetDefault("build.stage_timeout", defaults.Build.StageTimeout)
	v.SetDefault("build.temp_dir", defaults.Build.TempDir)
	v.SetDefault("lock.wait", defaults.Lock.Wait)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.log_level", defaults.UI.LogLevel.String())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// settingsPath returns the explicit file when set, else the file in the
// (possibly overridden) config directory.
func settingsPath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		return string(opts.ConfigFilePath), nil
	}
	cfgDir, err := configDirWithOverride(string(opts.ConfigDirPath))
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. Settings decode to a map and validate
// with Concrete(false) because every field is optional.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	result, err := cueutil.ParseAndDecode[map[string]any](configSchema, data, "#Config",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(*result.Value); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default settings to path unless a file
// already exists there. It reports whether a file was written.
func CreateDefaultConfig(path string) (bool, error) {
	if fileExists(path) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return false, fmt.Errorf("failed to write config file: %w", err)
	}

	return true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// ham settings\n")
	sb.WriteString("// Environment variables override these values, e.g. HAM_LOCK_WAIT=\"1m\".\n\n")

	sb.WriteString("installer: {\n")
	fmt.Fprintf(&sb, "\tcommand: %q\n", cfg.Installer.Command)
	sb.WriteString("}\n")

	sb.WriteString("\nrebuild: {\n")
	fmt.Fprintf(&sb, "\tnode: %q\n", cfg.Rebuild.Node)
	if cfg.Rebuild.Entry != "" {
		fmt.Fprintf(&sb, "\tentry: %q\n", cfg.Rebuild.Entry)
	}
	sb.WriteString("}\n")

	sb.WriteString("\npatch: {\n")
	fmt.Fprintf(&sb, "\tinterpreter: %q\n", cfg.Patch.Interpreter)
	sb.WriteString("}\n")

	sb.WriteString("\nbuild: {\n")
	fmt.Fprintf(&sb, "\tstage_timeout: %q\n", cfg.Build.StageTimeout.String())
	if cfg.Build.TempDir != "" {
		fmt.Fprintf(&sb, "\ttemp_dir: %q\n", cfg.Build.TempDir)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nlock: {\n")
	fmt.Fprintf(&sb, "\twait: %q\n", cfg.Lock.Wait.String())
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\tlog_level: %q\n", cfg.UI.LogLevel)
	sb.WriteString("}\n")

	return sb.String()
}
