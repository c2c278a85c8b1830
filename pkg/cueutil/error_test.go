// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"

	"cuelang.org/go/cue/cuecontext"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "config.cue"); err != nil {
			t.Errorf("FormatError(nil) = %v, want nil", err)
		}
	})

	t.Run("plain error keeps its chain", func(t *testing.T) {
		t.Parallel()

		cause := errors.New("read failed")
		err := FormatError(cause, "config.cue")
		if !errors.Is(err, cause) {
			t.Error("errors.Is should reach the original error")
		}
		if err.Error() != "config.cue: read failed" {
			t.Errorf("Error() = %q", err.Error())
		}
	})

	t.Run("cue errors become problems", func(t *testing.T) {
		t.Parallel()

		v := cuecontext.New().CompileString(`lock: wait: 12 & string`)
		err := FormatError(v.Validate(), "config.cue")

		var schemaErr *SchemaError
		if !errors.As(err, &schemaErr) {
			t.Fatalf("FormatError() = %T, want *SchemaError", err)
		}
		if !errors.Is(err, ErrSchemaViolation) {
			t.Error("SchemaError should wrap ErrSchemaViolation")
		}
		if schemaErr.Filename != "config.cue" || len(schemaErr.Problems) == 0 {
			t.Fatalf("SchemaError = %+v", schemaErr)
		}
		if got := schemaErr.Problems[0].Path; got != "lock.wait" {
			t.Errorf("Problems[0].Path = %q, want %q", got, "lock.wait")
		}
		if !strings.HasPrefix(err.Error(), "config.cue: lock.wait: ") {
			t.Errorf("Error() = %q", err.Error())
		}
	})
}

func TestSchemaError_Error(t *testing.T) {
	t.Parallel()

	one := &SchemaError{Filename: ".hamrc.🐹", Problems: []Problem{{Path: "base", Message: "incomplete value"}}}
	if got, want := one.Error(), ".hamrc.🐹: base: incomplete value"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	many := &SchemaError{Filename: ".hamrc.🐹", Problems: []Problem{
		{Path: "addons[0].nodeVersion", Message: "conflicting values"},
		{Message: "expected '}', found 'EOF'"},
	}}
	want := ".hamrc.🐹: validation failed:\n  addons[0].nodeVersion: conflicting values\n  expected '}', found 'EOF'"
	if got := many.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestJSONPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"base"}, "base"},
		{[]string{"npm", "registry"}, "npm.registry"},
		{[]string{"addons", "0", "targets", "1", "arch"}, "addons[0].targets[1].arch"},
		{[]string{"0"}, "0"},
		{[]string{"build", "stage_timeout"}, "build.stage_timeout"},
	}

	for _, tt := range tests {
		if got := jsonPath(tt.in); got != tt.want {
			t.Errorf("jsonPath(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	data := make([]byte, 100)
	if err := checkFileSize(data, 100, "a.cue"); err != nil {
		t.Errorf("checkFileSize() at the limit = %v, want nil", err)
	}

	err := checkFileSize(data, 99, "a.cue")
	var sizeErr *FileTooLargeError
	if !errors.As(err, &sizeErr) || !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("checkFileSize() = %v, want *FileTooLargeError", err)
	}
	if sizeErr.Size != 100 || sizeErr.Max != 99 || sizeErr.Filename != "a.cue" {
		t.Errorf("FileTooLargeError = %+v", sizeErr)
	}
}
