// internal/tui/app.go
//
// Status board for a running agent. It uses bubbletea, which follows The
// Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The board subscribes to the bridge feed and shows the agent's view of
// the game as it evolves: phase clock, the alive roster ranked by
// suspicion, and a rolling transcript of the channels.

package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/howl/internal/bridge"
	"github.com/kingrea/howl/internal/memory"
)

const transcriptLimit = 200

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	deadStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Strikethrough(true)
	alertStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))
	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

type feedUpdateMsg struct {
	update bridge.Update
}

type feedClosedMsg struct{}

// App is the status board model. In bubbletea, this holds ALL your state.
type App struct {
	agentName string
	sub       bridge.Subscription

	snapshot   *memory.Snapshot
	transcript []string
	viewport   viewport.Model
	feedOpen   bool

	width  int
	height int
}

// NewApp creates a status board fed by the given subscription.
func NewApp(agentName string, sub bridge.Subscription) *App {
	vp := viewport.New(60, 20)
	return &App{
		agentName:  agentName,
		sub:        sub,
		viewport:   vp,
		feedOpen:   true,
		transcript: make([]string, 0, transcriptLimit),
	}
}

// Init starts listening on the feed.
func (a *App) Init() tea.Cmd {
	return a.waitForUpdate()
}

// waitForUpdate blocks on the feed channel and wraps the next update as a
// bubbletea message. Re-issued after every delivery.
func (a *App) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		update, ok := <-a.sub.Updates
		if !ok {
			return feedClosedMsg{}
		}
		return feedUpdateMsg{update: update}
	}
}

// Update handles all incoming messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.viewport.Width = max(20, msg.Width/2)
		a.viewport.Height = max(5, msg.Height-8)
		a.viewport.SetContent(strings.Join(a.transcript, "\n"))
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.viewport, cmd = a.viewport.Update(msg)
		return a, cmd

	case feedUpdateMsg:
		a.apply(msg.update)
		return a, a.waitForUpdate()

	case feedClosedMsg:
		a.feedOpen = false
		return a, nil
	}
	return a, nil
}

func (a *App) apply(update bridge.Update) {
	if update.Line != "" {
		a.transcript = append(a.transcript, update.Line)
		if len(a.transcript) > transcriptLimit {
			a.transcript = a.transcript[len(a.transcript)-transcriptLimit:]
		}
		a.viewport.SetContent(strings.Join(a.transcript, "\n"))
		a.viewport.GotoBottom()
	}
	if update.Snapshot != nil {
		a.snapshot = update.Snapshot
	}
}

// View renders the board.
func (a *App) View() string {
	header := headerStyle.Render(fmt.Sprintf("⌾ HOWL · %s", a.agentName)) + "  " + a.phaseLine()
	roster := boxStyle.Render(a.rosterView())
	feed := boxStyle.Render(a.viewport.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, roster, feed)
	footer := footerStyle.Render("q: quit")
	if !a.feedOpen {
		footer = alertStyle.Render("feed closed") + "  " + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (a *App) phaseLine() string {
	if a.snapshot == nil {
		return footerStyle.Render("waiting for the game to begin")
	}
	phase := "Day"
	if a.snapshot.IsNight {
		phase = "Night"
	}
	line := fmt.Sprintf("%s · day %d · night %d", phase, a.snapshot.DayCount, a.snapshot.NightCount)
	if a.snapshot.Role != "" && a.snapshot.Role != memory.RoleUnknown {
		line += fmt.Sprintf(" · role: %s", a.snapshot.Role)
	}
	return line
}

// rosterView lists every known player, alive first, ranked by suspicion.
func (a *App) rosterView() string {
	if a.snapshot == nil || len(a.snapshot.Players) == 0 {
		return "No players observed yet"
	}
	players := make([]memory.Player, len(a.snapshot.Players))
	copy(players, a.snapshot.Players)
	sort.SliceStable(players, func(i, j int) bool {
		iAlive := players[i].Status == memory.StatusAlive
		jAlive := players[j].Status == memory.StatusAlive
		if iAlive != jAlive {
			return iAlive
		}
		return players[i].SuspicionScore > players[j].SuspicionScore
	})

	var lines []string
	lines = append(lines, headerStyle.Render("Players"))
	for _, p := range players {
		line := fmt.Sprintf("%-12s %.2f", p.Name, p.SuspicionScore)
		if p.SuspectedRole != "" && p.SuspectedRole != memory.RoleUnknown {
			line += " (" + string(p.SuspectedRole) + ")"
		}
		if p.Status != memory.StatusAlive {
			line = deadStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
