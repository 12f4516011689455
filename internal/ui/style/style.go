// Package style holds the colors and icons shared by console output.
package style

import "github.com/charmbracelet/lipgloss"

// Colors.
var (
	Iris   = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Skip    = "~"
	Dot     = "●"
	Arrow   = "→"
)

// Heading renders section titles of the project help.
var Heading = lipgloss.NewStyle().Bold(true).Foreground(Iris)

// Muted renders secondary text such as descriptions.
var Muted = lipgloss.NewStyle().Foreground(Slate)
