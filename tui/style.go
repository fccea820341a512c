package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the dungeon browser.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")).
			Bold(true)

	styleSlot = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228")).
			Bold(true)

	styleLabel = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleEnemy = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	styleEnvironment = lipgloss.NewStyle().
				Foreground(lipgloss.Color("117"))

	styleLoot = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	styleNotes = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")).
			Italic(true)
)

// slotDisplayName derives a human-readable name from a slot ID.
// "entrance" -> "Entrance", "guardian_post" -> "Guardian Post".
func slotDisplayName(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
