package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// PrintBanner displays the startup banner.
func PrintBanner(version string) {
	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	yellow := color.New(color.FgYellow)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintln(Output)
	cyan.Fprintln(Output, "╔══════════════════════════════════════════╗")
	cyan.Fprint(Output, "║  ")
	magenta.Fprint(Output, "HPN CHAT RELAY")
	dim.Fprint(Output, "  │  ")
	yellow.Fprint(Output, "gemini")
	dim.Fprint(Output, "  │  ")
	fmt.Fprintf(Output, "%-9s", version)
	cyan.Fprintln(Output, " ║")
	cyan.Fprintln(Output, "╚══════════════════════════════════════════╝")
	fmt.Fprintln(Output)
}
