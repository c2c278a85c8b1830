// SPDX-License-Identifier: MPL-2.0

// Package build materializes addon artifacts.
//
// The Orchestrator answers "make addon X for target T available in
// directory D": it reuses the cached artifact when present, runs the install
// pipeline for runtime addons when it is not, and extracts the artifact.
// Binary addons are never built; they enter the cache through ImportBinary.
//
// The install pipeline is a short list of fallible stages run in a scratch
// directory: write the synthetic package.json, run the dependency installer,
// run the optional patch script, rebuild native modules (electron only) and
// pack node_modules into the cache. The first failing stage aborts the run.
// Subprocesses go through a Runner so the pipeline can be exercised without
// npm or node installed.
package build
