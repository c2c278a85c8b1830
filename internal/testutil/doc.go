// SPDX-License-Identifier: MPL-2.0

// Package testutil holds test helpers that fail the test on setup errors:
// environment overrides that hand back a restore function, and helpers that
// write and list small file trees for addon and archive fixtures.
package testutil
