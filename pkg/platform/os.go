// SPDX-License-Identifier: MPL-2.0

package platform

// OS and architecture name constants for runtime.GOOS/GOARCH comparisons.
// Centralizes the string literals to avoid scattered magic strings.
const (
	Windows = "windows"
	Darwin  = "darwin"
	Linux   = "linux"
	Android = "android"
	IOS     = "ios"

	AMD64 = "amd64"
	ARM64 = "arm64"
	I386  = "386"
)
