// SPDX-License-Identifier: MPL-2.0

// Package cueutil provides shared CUE schema handling for ham's two
// configuration inputs: the JSON ham document and the CUE settings file.
//
// Both follow the same 3-step flow:
//
//  1. Compile the embedded schema
//  2. Compile user data and unify with schema
//  3. Validate (and optionally decode to a Go value)
//
// # Usage
//
//	//go:embed hamconfig_schema.cue
//	var schemaBytes []byte
//
//	if err := cueutil.Validate(schemaBytes, documentBytes, "#HamConfig",
//	    cueutil.WithFilename(".hamrc.🐹")); err != nil {
//	    return err // error includes the JSON path of the offending field
//	}
package cueutil
