// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"testing"
)

// MustSetenv sets key to value and returns a function restoring the previous
// state. Tests using it must not run in parallel.
func MustSetenv(t testing.TB, key, value string) func() {
	t.Helper()
	restore := snapshotEnv(t, key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set env %s: %v", key, err)
	}
	return restore
}

// MustUnsetenv unsets key and returns a function restoring the previous state.
func MustUnsetenv(t testing.TB, key string) func() {
	t.Helper()
	restore := snapshotEnv(t, key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("failed to unset env %s: %v", key, err)
	}
	return restore
}

// SetHomeDir points the user home directory at dir: USERPROFILE on Windows,
// HOME elsewhere. The returned function restores the previous value.
func SetHomeDir(t testing.TB, dir string) func() {
	t.Helper()
	if runtime.GOOS == "windows" {
		return MustSetenv(t, "USERPROFILE", dir)
	}
	return MustSetenv(t, "HOME", dir)
}

func snapshotEnv(t testing.TB, key string) func() {
	value, had := os.LookupEnv(key)
	return func() {
		t.Helper()
		var err error
		if had {
			err = os.Setenv(key, value)
		} else {
			err = os.Unsetenv(key)
		}
		if err != nil {
			t.Errorf("failed to restore env %s: %v", key, err)
		}
	}
}
