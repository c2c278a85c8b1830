// SPDX-License-Identifier: MPL-2.0

package platform

import (
	"os"
	"sync"
)

const (
	// SandboxNone indicates no sandbox environment detected.
	SandboxNone SandboxType = ""
	// SandboxFlatpak indicates a Flatpak sandbox environment.
	SandboxFlatpak SandboxType = "flatpak"
	// SandboxSnap indicates a Snap sandbox environment.
	SandboxSnap SandboxType = "snap"

	flatpakSpawn = "flatpak-spawn"
)

// detectOnce caches the sandbox detection result for the lifetime of the process.
//
// INVARIANT: detectSandboxFrom MUST NOT panic. sync.OnceValue propagates a
// panic on every call.
var detectOnce = sync.OnceValue(func() SandboxType {
	return detectSandboxFrom(os.Getenv, statFile)
})

// SandboxType identifies the type of application sandbox, if any.
type SandboxType string

// DetectSandbox returns the sandbox the current process runs in. The result
// is cached after the first call.
//
// Detection methods:
//   - Flatpak: Checks for existence of /.flatpak-info
//   - Snap: Checks for SNAP_NAME environment variable
func DetectSandbox() SandboxType {
	return detectOnce()
}

// HostCommand returns the argv that runs argv on the host system from inside
// sandbox st, in directory dir with the extra environment env.
//
// Only Flatpak can leave its sandbox (flatpak-spawn --host), and the spawned
// process does not inherit the working directory or environment, so both are
// passed as flags. Snap confinement has no host escape; argv is returned
// unchanged there and for SandboxNone.
func HostCommand(st SandboxType, argv []string, dir string, env []string) []string {
	if st != SandboxFlatpak {
		return argv
	}
	out := make([]string, 0, len(argv)+len(env)+3)
	out = append(out, flatpakSpawn, "--host")
	if dir != "" {
		out = append(out, "--directory="+dir)
	}
	for _, kv := range env {
		out = append(out, "--env="+kv)
	}
	return append(out, argv...)
}

// detectSandboxFrom performs sandbox detection using the provided lookup functions
// so tests can inject behavior without mutating process-wide state.
func detectSandboxFrom(lookupEnv func(string) string, statFile func(string) error) SandboxType {
	// Flatpak takes precedence; /.flatpak-info is always present inside Flatpak sandboxes.
	if err := statFile("/.flatpak-info"); err == nil {
		return SandboxFlatpak
	}

	if lookupEnv("SNAP_NAME") != "" {
		return SandboxSnap
	}

	return SandboxNone
}

func statFile(path string) error {
	_, err := os.Stat(path)
	return err
}
