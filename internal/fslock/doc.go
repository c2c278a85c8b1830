// SPDX-License-Identifier: MPL-2.0

// Package fslock provides a cross-process mutex backed by exclusive directory
// creation. The lock for an identity lives at <tempRoot>/ham.lock.<md5(identity)>;
// holding the lock means having created that directory. Only one process on a
// host can create it at a time, so mutations of the same ham document are
// serialized while different documents never contend.
package fslock
