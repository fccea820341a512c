// Package tui provides an interactive browser for generated five-room
// dungeons: one room per page, with enemies, environment and loot.
package tui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/delveforge/types"
)

// keyMap defines the browser key bindings.
type keyMap struct {
	Prev key.Binding
	Next key.Binding
	Quit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Prev: key.NewBinding(
			key.WithKeys("left", "h", "shift+tab"),
			key.WithHelp("←/h", "previous room"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l", "tab"),
			key.WithHelp("→/l", "next room"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// Model is the Bubble Tea model for the dungeon browser.
type Model struct {
	record *types.DungeonRecord

	viewport viewport.Model
	keys     keyMap

	room     int // index into record.Rooms
	width    int
	height   int
	ready    bool
	quitting bool
}

// New creates a browser model for the given dungeon record.
func New(record *types.DungeonRecord) Model {
	return Model{
		record: record,
		keys:   defaultKeyMap(),
	}
}

// Run starts the Bubble Tea program.
func Run(record *types.DungeonRecord) error {
	if len(record.Rooms) == 0 {
		return fmt.Errorf("dungeon record has no rooms")
	}
	p := tea.NewProgram(New(record), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses and window resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		vpHeight := m.height - 2 // 1 title line + 1 status bar
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			if m.room > 0 {
				m.room--
				m.refreshViewport()
			}
		case key.Matches(msg, m.keys.Next):
			if m.room < len(m.record.Rooms)-1 {
				m.room++
				m.refreshViewport()
			}
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) refreshViewport() {
	if !m.ready || len(m.record.Rooms) == 0 {
		return
	}
	m.viewport.SetContent(renderRoom(m.record.Rooms[m.room]))
	m.viewport.GotoTop()
}

// View renders the title line, the current room, and the status bar.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "loading..."
	}

	title := styleTitle.Render(fmt.Sprintf(" %s delve, level %d (seed %d)",
		slotDisplayName(m.record.Biome), m.record.BaseLevel, m.record.Seed))
	return title + "\n" + m.viewport.View() + "\n" + m.renderStatusBar()
}

// renderStatusBar produces a full-width inverted line with the room position
// and the key hints.
func (m Model) renderStatusBar() string {
	room := m.record.Rooms[m.room]
	left := fmt.Sprintf(" Room %d/%d | %s | %s",
		m.room+1, len(m.record.Rooms), slotDisplayName(room.Slot), room.Encounter.Type)
	right := "←/→ rooms  q quit "

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return styleStatusBar.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderRoom renders one room as a styled block of text.
func renderRoom(room types.Room) string {
	enc := room.Encounter
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", styleSlot.Render(fmt.Sprintf("Room %d: %s", room.RoomIndex, slotDisplayName(room.Slot))))
	fmt.Fprintf(&b, "%s %s, difficulty %d\n\n", styleLabel.Render("Encounter:"), enc.Type, enc.Difficulty)

	if len(enc.Enemies) > 0 {
		b.WriteString(styleLabel.Render("Enemies:") + "\n")
		for _, e := range enc.Enemies {
			fmt.Fprintf(&b, "  %s\n", styleEnemy.Render(fmt.Sprintf("%dx %s (%s)", e.Count, e.Name, formatCR(e.CR))))
		}
		b.WriteString("\n")
	}

	if enc.Environment.Description != "" || len(enc.Environment.Tags) > 0 {
		b.WriteString(styleLabel.Render("Environment:") + "\n")
		if enc.Environment.Description != "" {
			fmt.Fprintf(&b, "  %s\n", styleEnvironment.Render(enc.Environment.Description))
		}
		if len(enc.Environment.Tags) > 0 {
			fmt.Fprintf(&b, "  %s\n", styleLabel.Render("tags: "+strings.Join(enc.Environment.Tags, ", ")))
		}
		for _, line := range formatEffects(enc.Environment.Effects) {
			fmt.Fprintf(&b, "  %s\n", styleEnvironment.Render(line))
		}
		b.WriteString("\n")
	}

	if enc.Loot != nil && len(enc.Loot.Parcels) > 0 {
		b.WriteString(styleLabel.Render("Loot:") + "\n")
		for _, parcel := range enc.Loot.Parcels {
			fmt.Fprintf(&b, "  %s\n", styleLoot.Render(formatParcel(parcel)))
		}
		b.WriteString("\n")
	}

	if enc.Meta.Notes != "" {
		b.WriteString(styleNotes.Render(enc.Meta.Notes) + "\n")
	}
	return b.String()
}

// formatCR renders a challenge rating, using "?" for unresolved monsters.
func formatCR(cr *float64) string {
	if cr == nil {
		return "CR ?"
	}
	return "CR " + strconv.FormatFloat(*cr, 'f', -1, 64)
}

// formatEffects renders mechanical effects as sorted "key: value" lines.
func formatEffects(effects map[string]any) []string {
	keys := make([]string, 0, len(effects))
	for k := range effects {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, effects[k]))
	}
	return lines
}

// formatParcel summarizes one loot parcel on a single line.
func formatParcel(parcel types.Parcel) string {
	var parts []string

	denoms := make([]string, 0, len(parcel.Coins))
	for d := range parcel.Coins {
		denoms = append(denoms, d)
	}
	sort.Strings(denoms)
	for _, d := range denoms {
		if parcel.Coins[d] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", parcel.Coins[d], d))
		}
	}
	for _, it := range parcel.MagicItems {
		parts = append(parts, it.Name)
	}
	for _, it := range parcel.MundaneItems {
		parts = append(parts, it.Name)
	}

	if len(parts) == 0 {
		return "nothing of value"
	}
	return fmt.Sprintf("%s (%.2f gp)", strings.Join(parts, ", "), parcel.TotalValueGP)
}
