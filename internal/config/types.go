// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"mvdan.cc/sh/v3/shell"
)

const (
	// LogLevelDebug enables debug logging.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default log level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn shows warnings and errors only.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError shows errors only.
	LogLevelError LogLevel = "error"

	// DefaultInstallerCommand installs the manifest dependencies without hoisting.
	DefaultInstallerCommand CommandLine = "npm install --global-style"
	// DefaultNodeCommand launches the rebuild tool.
	DefaultNodeCommand CommandLine = "node"
	// DefaultPatchInterpreter runs patch scripts.
	DefaultPatchInterpreter CommandLine = "node"
	// DefaultLockWait is how long a contended lock is retried.
	DefaultLockWait = 30 * time.Second
)

var (
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidCommandLine is the sentinel error wrapped by InvalidCommandLineError.
	ErrInvalidCommandLine = errors.New("invalid command line")
	// ErrInvalidDuration is the sentinel error wrapped by InvalidDurationError.
	ErrInvalidDuration = errors.New("invalid duration")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// LogLevel selects the minimum level of log output.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// CommandLine is a shell-style command line such as "npm install --global-style".
	// It is split into argv with POSIX shell quoting rules, never run through a shell.
	CommandLine string

	// InvalidCommandLineError is returned when a CommandLine is empty or cannot be split.
	InvalidCommandLineError struct {
		Field string
		Value CommandLine
		Err   error
	}

	// InvalidDurationError is returned when a duration setting is negative.
	InvalidDurationError struct {
		Field string
		Value time.Duration
	}

	// InvalidConfigError collects field-level validation errors of a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds ham's settings.
	Config struct {
		Installer InstallerConfig `json:"installer" mapstructure:"installer"`
		Rebuild   RebuildConfig   `json:"rebuild" mapstructure:"rebuild"`
		Patch     PatchConfig     `json:"patch" mapstructure:"patch"`
		Build     BuildConfig     `json:"build" mapstructure:"build"`
		Lock      LockConfig      `json:"lock" mapstructure:"lock"`
		UI        UIConfig        `json:"ui" mapstructure:"ui"`
	}

	// InstallerConfig configures the dependency installer.
	InstallerConfig struct {
		// Command is run in the scratch directory; ham appends --registry and
		// --ignore-scripts as required.
		Command CommandLine `json:"command" mapstructure:"command"`
	}

	// RebuildConfig configures the native rebuild tool used for electron addons.
	RebuildConfig struct {
		Node CommandLine `json:"node" mapstructure:"node"`
		// Entry is the rebuild tool script. Empty means resolve
		// node_modules/@electron/rebuild/lib/cli.js upwards from the ham document.
		Entry string `json:"entry" mapstructure:"entry"`
	}

	// PatchConfig configures patch script execution.
	PatchConfig struct {
		Interpreter CommandLine `json:"interpreter" mapstructure:"interpreter"`
	}

	// BuildConfig configures the build pipeline.
	BuildConfig struct {
		// StageTimeout bounds each subprocess stage; zero disables the limit.
		StageTimeout time.Duration `json:"stage_timeout" mapstructure:"stage_timeout"`
		// TempDir holds scratch directories and lock directories; empty means os.TempDir().
		TempDir string `json:"temp_dir" mapstructure:"temp_dir"`
	}

	// LockConfig configures the config lock.
	LockConfig struct {
		Wait time.Duration `json:"wait" mapstructure:"wait"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		Verbose  bool     `json:"verbose" mapstructure:"verbose"`
		LogLevel LogLevel `json:"log_level" mapstructure:"log_level"`
	}
)

// String returns the string representation of the LogLevel.
func (l LogLevel) String() string { return string(l) }

// IsValid returns whether the LogLevel is one of the defined levels.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

// SlogLevel maps the level to log/slog. Unknown levels map to info.
func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// String returns the string representation of the CommandLine.
func (c CommandLine) String() string { return string(c) }

// Argv splits the command line into program and arguments. Environment
// references such as $HOME are expanded from the process environment.
func (c CommandLine) Argv() ([]string, error) {
	fields, err := shell.Fields(string(c), nil)
	if err != nil {
		return nil, &InvalidCommandLineError{Value: c, Err: err}
	}
	if len(fields) == 0 {
		return nil, &InvalidCommandLineError{Value: c}
	}
	return fields, nil
}

func (c CommandLine) validate(field string) []error {
	if strings.TrimSpace(string(c)) == "" {
		return []error{&InvalidCommandLineError{Field: field, Value: c}}
	}
	if _, err := c.Argv(); err != nil {
		var cmdErr *InvalidCommandLineError
		if errors.As(err, &cmdErr) {
			cmdErr.Field = field
		}
		return []error{err}
	}
	return nil
}

// Error implements the error interface for InvalidCommandLineError.
func (e *InvalidCommandLineError) Error() string {
	prefix := "invalid command line"
	if e.Field != "" {
		prefix = e.Field + ": " + prefix
	}
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", prefix, e.Value, e.Err)
	}
	return fmt.Sprintf("%s %q: must name a program", prefix, e.Value)
}

// Unwrap returns ErrInvalidCommandLine for errors.Is() compatibility.
func (e *InvalidCommandLineError) Unwrap() error { return ErrInvalidCommandLine }

// Error implements the error interface for InvalidDurationError.
func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("%s: invalid duration %s: must not be negative", e.Field, e.Value)
}

// Unwrap returns ErrInvalidDuration for errors.Is() compatibility.
func (e *InvalidDurationError) Unwrap() error { return ErrInvalidDuration }

// IsValid returns whether every field of the Config is valid.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	errs = append(errs, c.Installer.Command.validate("installer.command")...)
	errs = append(errs, c.Rebuild.Node.validate("rebuild.node")...)
	errs = append(errs, c.Patch.Interpreter.validate("patch.interpreter")...)
	if c.Build.StageTimeout < 0 {
		errs = append(errs, &InvalidDurationError{Field: "build.stage_timeout", Value: c.Build.StageTimeout})
	}
	if c.Lock.Wait < 0 {
		errs = append(errs, &InvalidDurationError{Field: "lock.wait", Value: c.Lock.Wait})
	}
	if valid, fieldErrs := c.UI.LogLevel.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %v", errors.Join(e.FieldErrors...))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Installer: InstallerConfig{Command: DefaultInstallerCommand},
		Rebuild:   RebuildConfig{Node: DefaultNodeCommand},
		Patch:     PatchConfig{Interpreter: DefaultPatchInterpreter},
		Build:     BuildConfig{},
		Lock:      LockConfig{Wait: DefaultLockWait},
		UI:        UIConfig{LogLevel: LogLevelInfo},
	}
}
