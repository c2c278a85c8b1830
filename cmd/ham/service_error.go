// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"ham-cli/internal/build"
	"ham-cli/internal/cache"
	"ham-cli/internal/fslock"
	"ham-cli/internal/issue"
	"ham-cli/internal/registry"
	"ham-cli/pkg/addon"
	"ham-cli/pkg/archive"
	"ham-cli/pkg/platform"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. Always create via newServiceError.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyError maps a failure to an issue catalog ID and a styled message.
// More specific causes are tested first: a document that fails to decode
// because of an unknown addon type is reported as such, not as unreadable.
func classifyError(err error, verbose bool) *ServiceError {
	var issueID issue.Id

	switch {
	case errors.Is(err, addon.ErrUnknownAddonType):
		issueID = issue.UnknownAddonTypeId
	case errors.Is(err, addon.ErrInvalidTarget):
		issueID = issue.InvalidTargetId
	case errors.Is(err, registry.ErrConfigUnreadable):
		issueID = issue.ConfigUnreadableId
	case errors.Is(err, registry.ErrAddonNotFound):
		issueID = issue.AddonNotFoundId
	case errors.Is(err, build.ErrArtifactNotFound):
		issueID = issue.ArtifactNotFoundId
	case errors.Is(err, build.ErrTargetMismatch), errors.Is(err, platform.ErrUnsupportedHost):
		issueID = issue.TargetMismatchId
	case errors.Is(err, build.ErrTargetGuessFailed):
		issueID = issue.TargetGuessFailedId
	case errors.Is(err, fslock.ErrLocked):
		issueID = issue.LockHeldId
	case errors.Is(err, archive.ErrUnsafeTarget), errors.Is(err, archive.ErrUnsafeEntry):
		issueID = issue.UnsafeExtractionTargetId
	case errors.Is(err, archive.ErrNotADirectory), errors.Is(err, archive.ErrBadExtension),
		errors.Is(err, archive.ErrInvalidPattern), errors.Is(err, cache.ErrInvalidAddonName):
		issueID = issue.PackagingFailedId
	case errors.Is(err, build.ErrSubprocessFailed), errors.Is(err, build.ErrRebuildToolNotFound):
		issueID = issue.SubprocessFailedId
	case errors.Is(err, os.ErrPermission):
		issueID = issue.PermissionDeniedId
	default:
		var ae *issue.ActionableError
		if errors.As(err, &ae) && (ae.Operation == "load settings" || ae.Operation == "validate settings") {
			issueID = issue.SettingsLoadFailedId
		}
	}

	return newServiceError(err, issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose)))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderServiceError prints the styled message, then the issue help section
// when stderr is a terminal or verbose output was requested.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, verbose bool) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 || (!verbose && !isTerminal(stderr)) {
		return
	}

	style := "notty"
	if isTerminal(stderr) {
		style = "dark"
	}
	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	return err == nil && info.Mode()&os.ModeCharDevice != 0
}
