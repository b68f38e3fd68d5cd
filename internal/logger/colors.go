package logger

import (
	"github.com/fatih/color"
)

// Color printers for consistent output across the application
var (
	SuccessColor = color.New(color.FgGreen, color.Bold)
	ErrorColor   = color.New(color.FgRed, color.Bold)
	WarnColor    = color.New(color.FgYellow, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	DebugColor   = color.New(color.FgWhite)

	HighlightColor = color.New(color.FgMagenta, color.Bold)
	DimColor       = color.New(color.FgHiBlack)
)

// Green returns green text
func Green(text string) string {
	return SuccessColor.Sprint(text)
}

// Red returns red text
func Red(text string) string {
	return ErrorColor.Sprint(text)
}

// Yellow returns yellow text
func Yellow(text string) string {
	return WarnColor.Sprint(text)
}

// Bold returns bold text
func Bold(text string) string {
	return color.New(color.Bold).Sprint(text)
}

// DisableColors disables all color output (for non-TTY or --no-color)
func DisableColors() {
	color.NoColor = true
}

// IsColorEnabled returns whether colors are enabled
func IsColorEnabled() bool {
	return !color.NoColor
}
