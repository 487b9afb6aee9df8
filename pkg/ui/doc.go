// Package ui renders bcforge output for people and for scripts.
//
// Styled output (lipgloss, pterm) is used only when stdout is a colour
// terminal. Pipes, NO_COLOR and ascii-only terminals get plain text, and
// json or yaml can always be requested explicitly.
package ui
