package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Theme is a set of ANSI escape codes.
type Theme struct {
	Name      string
	Primary   string
	Secondary string
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme suits light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;54m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme emits no escape codes.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// BoxTheme is the lipgloss palette of the summary box.
type BoxTheme struct {
	Border lipgloss.TerminalColor
	Title  lipgloss.TerminalColor
	Label  lipgloss.TerminalColor
	Value  lipgloss.TerminalColor
	Error  lipgloss.TerminalColor
}

var (
	DarkBoxTheme = BoxTheme{
		Border: lipgloss.Color("#4488FF"),
		Title:  lipgloss.Color("#9ECE6A"),
		Label:  lipgloss.Color("#888888"),
		Value:  lipgloss.Color("#E0E0E0"),
		Error:  lipgloss.Color("#FF4444"),
	}

	NoColorBoxTheme = BoxTheme{
		Border: lipgloss.NoColor{},
		Title:  lipgloss.NoColor{},
		Label:  lipgloss.NoColor{},
		Value:  lipgloss.NoColor{},
		Error:  lipgloss.NoColor{},
	}
)

// CurrentBoxTheme follows the active ANSI theme.
func CurrentBoxTheme() BoxTheme {
	if GetCurrentTheme().Name == NoColorTheme.Name {
		return NoColorBoxTheme
	}
	return DarkBoxTheme
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme replaces the active theme. Tests use it to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme selects "dark", "light" or "none". Unknown names select dark.
func SetTheme(name string) {
	switch name {
	case "light":
		SetCurrentTheme(LightTheme)
	case "none":
		SetCurrentTheme(NoColorTheme)
	default:
		SetCurrentTheme(DarkTheme)
	}
}

// InitTheme disables colours when noColor is set or NO_COLOR is present in
// the environment (https://no-color.org/).
func InitTheme(noColor bool) {
	if _, set := os.LookupEnv("NO_COLOR"); noColor || set {
		SetCurrentTheme(NoColorTheme)
		return
	}
	SetCurrentTheme(DarkTheme)
}
