// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep the output readable on light and dark
// terminals; lipgloss drops them entirely when output is not a terminal.
var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#10B981"}
	colorError   = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#EF4444"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#C2410C", Dark: "#FB923C"}
	colorTarget  = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
)

var (
	// TitleStyle renders section headers.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	// SubtitleStyle renders paths, digests and other secondary text.
	SubtitleStyle = lipgloss.NewStyle().Foreground(colorMuted)
	// SuccessStyle renders success marks and setting values.
	SuccessStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	// ErrorStyle renders the "Error:" prefix.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorError)
	// WarningStyle renders warnings and empty cache slots.
	WarningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	// CmdStyle renders addon identities, targets and setting keys.
	CmdStyle = lipgloss.NewStyle().Foreground(colorTarget)
)
