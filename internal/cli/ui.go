package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

// The palette leans on the 256-color cube so output degrades gracefully on
// terminals without truecolor.
var (
	colorAccent = lipgloss.Color("36")  // teal, primary accent
	colorGood   = lipgloss.Color("35")  // green, completed layouts
	colorWarn   = lipgloss.Color("220") // amber, degraded modes
	colorBad    = lipgloss.Color("167") // soft red, failures
	colorLink   = lipgloss.Color("75")  // light blue, commands
	colorBright = lipgloss.Color("255") // bright white, values
	colorFaint  = lipgloss.Color("245") // gray, labels
	colorMuted  = lipgloss.Color("240") // dim gray, secondary text
)

// =============================================================================
// Public Styles
// =============================================================================

// Styles shared with the watch TUI, which renders its own frames but keeps
// the same visual language as the one-shot output.
var (
	// StyleTitle for headers.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	// StyleHighlight for the progress bar and emphasized values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorAccent)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorMuted)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorBright)

	// StyleNumber for tick and node counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorAccent)

	// StyleWarning for warning text.
	StyleWarning = lipgloss.NewStyle().Foreground(colorWarn)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconGood = lipgloss.NewStyle().Foreground(colorGood)
	styleIconBad  = lipgloss.NewStyle().Foreground(colorBad)
	styleIconWarn = lipgloss.NewStyle().Foreground(colorWarn)
	styleIconInfo = lipgloss.NewStyle().Foreground(colorFaint)
	styleSpinner  = lipgloss.NewStyle().Foreground(colorAccent)

	styleCached   = lipgloss.NewStyle().Foreground(colorGood)
	styleComputed = lipgloss.NewStyle().Foreground(colorFaint)

	styleCommand = lipgloss.NewStyle().Foreground(colorLink)

	styleKey = lipgloss.NewStyle().Foreground(colorFaint).Width(12)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"

	// Layout provenance markers used by printStats.
	iconCached   = "cached"
	iconComputed = "computed"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconGood.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconBad.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarn.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line under a status message.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// =============================================================================
// Result Output
// =============================================================================

// printFile prints the path a layout was written to.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// printKeyValue prints a labeled value in a fixed-width key column.
func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints graph size and layout provenance on one dim line, e.g.
// "7 nodes · 9 edges · computed".
func printStats(nodeCount, edgeCount int, cached bool) {
	var parts []string
	if nodeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d nodes", nodeCount)))
	}
	if edgeCount > 0 {
		parts = append(parts, StyleDim.Render(fmt.Sprintf("%d edges", edgeCount)))
	}
	if cached {
		parts = append(parts, styleCached.Render(iconCached))
	} else {
		parts = append(parts, styleComputed.Render(iconComputed))
	}
	fmt.Println("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
