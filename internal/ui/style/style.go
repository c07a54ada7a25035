// Package style holds the colors and glyphs shared by the terminal outputs.
package style

import "github.com/charmbracelet/lipgloss"

// Palette.
var (
	Accent = lipgloss.Color("#8B5CF6")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
	Blue   = lipgloss.Color("#3B82F6")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Skip    = "-"
	Dot     = "●"
	Circle  = "○"
	Arrow   = "→"
)

// Key renders a table header cell.
func Key(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
