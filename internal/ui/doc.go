// Package ui holds the colour themes shared by the CLI output and the
// lipgloss summary box printed after a reconstruction. Colours are disabled
// by --no-color, by NO_COLOR, or when the output is not a terminal.
package ui
