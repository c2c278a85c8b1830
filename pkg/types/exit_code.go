// SPDX-License-Identifier: MPL-2.0

package types

import "strconv"

// ExitCodeSignaled is reported for a process that did not exit on its own,
// for example one killed when a stage timeout cancels it. It matches
// os.ProcessState.ExitCode.
const ExitCodeSignaled ExitCode = -1

// ExitCode is a subprocess exit status. The zero value means success.
type ExitCode int

// IsSuccess reports whether the process exited with status 0.
func (c ExitCode) IsSuccess() bool { return c == 0 }

// IsSignaled reports whether the process was terminated by a signal.
func (c ExitCode) IsSignaled() bool { return c == ExitCodeSignaled }

// String returns the decimal exit status.
func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
