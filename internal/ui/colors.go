package ui

func ColorReset() string     { return GetCurrentTheme().Reset }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorUnderline() string { return GetCurrentTheme().Underline }
func ColorRed() string       { return GetCurrentTheme().Error }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorBlue() string      { return GetCurrentTheme().Primary }
func ColorMagenta() string   { return GetCurrentTheme().Info }
func ColorCyan() string      { return GetCurrentTheme().Secondary }

// Colorize wraps s in code and a reset, or returns s unchanged when the
// active theme has no colours.
func Colorize(code, s string) string {
	if code == "" {
		return s
	}
	return code + s + ColorReset()
}
