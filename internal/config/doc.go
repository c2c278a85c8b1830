// SPDX-License-Identifier: MPL-2.0

// Package config handles ham's own settings using Viper with CUE as the file format.
//
// Settings are loaded from ~/.config/ham/config.cue (XDG_CONFIG_HOME on Linux,
// ~/Library/Application Support/ham/config.cue on macOS, %APPDATA%\ham\config.cue
// on Windows), or from an explicit file. HAM_* environment variables override
// file values (HAM_LOCK_WAIT overrides lock.wait). The settings cover the
// external tools ham drives (installer, rebuild tool, patch interpreter),
// build hardening (stage timeout, temp dir), the lock wait and UI options.
//
// These settings are distinct from the ham document (.hamrc.🐹), which
// declares addons and is owned by the registry package.
package config
