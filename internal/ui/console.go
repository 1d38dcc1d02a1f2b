// Package ui provides colored console output for the chat relay.
// Structured logs stay on slog; this is the human-facing side of serve and ask.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

// ══════════════════════════════════════════════════════════════════════════════
// COLOR DEFINITIONS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)
	debugBadge   = color.New(color.FgMagenta)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	infoText    = color.New(color.FgCyan)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)

	// Method colors
	methodPOST = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET  = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
)

// Output is where console lines go. Tests point it at a buffer.
var Output io.Writer = os.Stdout

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST LOGGING
// ══════════════════════════════════════════════════════════════════════════════

// PrintRequest logs a finished request with styled output.
// Format: 15:04:05  POST  /api/chat   200    42ms id:1a2b3c4d
func PrintRequest(method, path string, status int, latency time.Duration, requestID string) {
	mutedText.Fprintf(Output, "%s ", time.Now().Format("15:04:05"))

	printMethodBadge(method)
	fmt.Fprint(Output, " ")

	fmt.Fprintf(Output, "%-34s ", truncatePath(path, 34))

	printStatusBadge(status)
	fmt.Fprint(Output, " ")

	printLatency(latency)

	if requestID != "" {
		mutedText.Fprintf(Output, " id:%s", shortID(requestID))
	}

	fmt.Fprintln(Output)
}

// printMethodBadge prints the HTTP method with appropriate color.
func printMethodBadge(method string) {
	switch method {
	case "POST":
		methodPOST.Fprintf(Output, " %-4s ", method)
	case "GET":
		methodGET.Fprintf(Output, " %-4s ", method)
	default:
		debugBadge.Fprintf(Output, " %-4s ", method)
	}
}

// printStatusBadge prints the status code with appropriate color.
func printStatusBadge(status int) {
	switch {
	case status >= 200 && status < 300:
		successBadge.Fprintf(Output, " %d ", status)
	case status >= 300 && status < 400:
		infoBadge.Fprintf(Output, " %d ", status)
	case status >= 400 && status < 500:
		warningBadge.Fprintf(Output, " %d ", status)
	default:
		errorBadge.Fprintf(Output, " %d ", status)
	}
}

// printLatency prints latency with color gradient.
// Upstream calls dominate, so the thresholds are in seconds rather than milliseconds.
func printLatency(latency time.Duration) {
	ms := latency.Milliseconds()
	latencyStr := fmt.Sprintf("%6dms", ms)

	switch {
	case latency < time.Second:
		successText.Fprint(Output, latencyStr)
	case latency < 5*time.Second:
		warningText.Fprint(Output, latencyStr)
	default:
		errorText.Fprint(Output, latencyStr)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// UTILITY FUNCTIONS
// ══════════════════════════════════════════════════════════════════════════════

// shortID returns the first 8 characters of a request id.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// truncatePath truncates a path to maxLen characters.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return path[:maxLen-3] + "..."
}

// ══════════════════════════════════════════════════════════════════════════════
// STARTUP MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// PrintStartupInfo prints styled server startup information.
func PrintStartupInfo(addr, model, client string, keyConfigured bool) {
	fmt.Fprintln(Output)
	infoBadge.Fprint(Output, "[RELAY]")
	fmt.Fprint(Output, " Server starting on ")
	neonBlue.Fprintf(Output, "http://%s\n", addr)

	infoBadge.Fprint(Output, "[RELAY]")
	fmt.Fprint(Output, " Model: ")
	accentText.Fprint(Output, model)
	fmt.Fprint(Output, " | Client: ")
	accentText.Fprint(Output, client)
	fmt.Fprint(Output, " | API key: ")
	if keyConfigured {
		successText.Fprintln(Output, "configured")
	} else {
		errorText.Fprintln(Output, "MISSING")
		PrintWarning("every chat request will answer 500 until GEMINI_API_KEY is set")
	}

	fmt.Fprintln(Output)
	printEndpoints()
}

// printEndpoints prints the available API endpoints.
func printEndpoints() {
	mutedText.Fprintln(Output, "  ┌──────────────────────────────────────────────────────────────┐")
	printEndpoint(methodPOST, "POST", "/api/chat                      ", "Chat relay         ")
	printEndpoint(methodPOST, "POST", "/.netlify/functions/gemini-chat", "Chat relay (compat)")
	printEndpoint(methodGET, "GET ", "/health                        ", "Health check       ")
	printEndpoint(methodGET, "GET ", "/metrics                       ", "Prometheus metrics ")
	mutedText.Fprintln(Output, "  └──────────────────────────────────────────────────────────────┘")
	fmt.Fprintln(Output)
}

func printEndpoint(badge *color.Color, method, path, desc string) {
	mutedText.Fprint(Output, "  │ ")
	badge.Fprintf(Output, " %s ", method)
	fmt.Fprintf(Output, " %s ", path)
	mutedText.Fprint(Output, desc)
	mutedText.Fprintln(Output, " │")
}

// PrintWarning prints a yellow warning line.
func PrintWarning(msg string) {
	warningBadge.Fprint(Output, "[WARN]")
	fmt.Fprint(Output, " ")
	warningText.Fprintln(Output, msg)
}

// PrintInfo prints a cyan informational line.
func PrintInfo(msg string) {
	infoBadge.Fprint(Output, "[RELAY]")
	fmt.Fprint(Output, " ")
	infoText.Fprintln(Output, msg)
}

// PrintReply prints the outcome of a single relay invocation (ask command).
func PrintReply(status int, body string) {
	printStatusBadge(status)
	fmt.Fprint(Output, " ")
	if status >= 200 && status < 300 {
		successText.Fprintln(Output, body)
		return
	}
	errorText.Fprintln(Output, body)
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown() {
	fmt.Fprintln(Output)
	warningBadge.Fprint(Output, "[SHUTDOWN]")
	warningText.Fprintln(Output, " Graceful shutdown initiated...")
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye() {
	successBadge.Fprint(Output, " OK ")
	fmt.Fprint(Output, " ")
	successText.Fprintln(Output, "Server stopped. Goodbye!")
}
