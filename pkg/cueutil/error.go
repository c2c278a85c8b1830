// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	cueerrors "cuelang.org/go/cue/errors"
)

var (
	// ErrFileTooLarge is the sentinel error wrapped by FileTooLargeError.
	ErrFileTooLarge = errors.New("file too large")
	// ErrSchemaViolation is the sentinel error wrapped by SchemaError.
	ErrSchemaViolation = errors.New("schema violation")
)

type (
	// FileTooLargeError is returned before parsing input above the size limit.
	FileTooLargeError struct {
		Filename string
		Size     int64
		Max      int64
	}

	// SchemaError lists the problems CUE reported for one input file.
	SchemaError struct {
		Filename string
		Problems []Problem
	}

	// Problem is one CUE error located by a JSON-style path such as
	// "addons[0].nodeVersion". Path is empty for file-level errors.
	Problem struct {
		Path    string
		Message string
	}
)

// Error implements the error interface.
func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("%s: file size %d bytes exceeds maximum %d bytes", e.Filename, e.Size, e.Max)
}

// Unwrap returns ErrFileTooLarge for errors.Is() compatibility.
func (e *FileTooLargeError) Unwrap() error { return ErrFileTooLarge }

// Error renders a single problem inline and several as an indented list.
func (e *SchemaError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	if len(lines) == 1 {
		return e.Filename + ": " + lines[0]
	}
	return fmt.Sprintf("%s: validation failed:\n  %s", e.Filename, strings.Join(lines, "\n  "))
}

// Unwrap returns ErrSchemaViolation for errors.Is() compatibility.
func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

// String returns "<path>: <message>", or the message alone.
func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return p.Path + ": " + p.Message
}

// FormatError converts a CUE error into a SchemaError for filename. Errors
// that carry no CUE detail are wrapped with the filename instead.
func FormatError(err error, filename string) error {
	if err == nil {
		return nil
	}

	list := cueerrors.Errors(err)
	if len(list) == 0 {
		return fmt.Errorf("%s: %w", filename, err)
	}

	schemaErr := &SchemaError{Filename: filename}
	for _, e := range list {
		path := jsonPath(cueerrors.Path(e))
		msg := e.Error()
		// CUE often repeats the path at the start of the message.
		if path != "" {
			if rest, ok := strings.CutPrefix(msg, path); ok {
				msg = strings.TrimSpace(strings.TrimPrefix(rest, ":"))
			}
		}
		schemaErr.Problems = append(schemaErr.Problems, Problem{Path: path, Message: msg})
	}
	return schemaErr
}

// jsonPath renders ["addons", "0", "targets"] as "addons[0].targets".
func jsonPath(selectors []string) string {
	var b strings.Builder
	for i, sel := range selectors {
		if _, err := strconv.Atoi(sel); err == nil && i > 0 {
			b.WriteString("[" + sel + "]")
			continue
		}
		if i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(sel)
	}
	return b.String()
}

func checkFileSize(data []byte, maxSize int64, filename string) error {
	if size := int64(len(data)); size > maxSize {
		return &FileTooLargeError{Filename: filename, Size: size, Max: maxSize}
	}
	return nil
}
