// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for ham.
//
// This package implements the Cobra command hierarchy of the ham binary:
// importing prebuilt binary addons, installing and materializing runtime
// addons, inspecting the artifact cache and managing ham's own settings.
// Command handlers delegate to the build Orchestrator through the App
// composition root.
package cmd
