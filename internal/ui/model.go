// ABOUTME: Bubbletea model for the player TUI
// ABOUTME: Holds the last picture, playback status and key handling
package ui

import (
	"fmt"
	"image"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model represents the TUI state
type Model struct {
	// Source
	title   string
	session string

	// Playback
	state     string
	audioTime float64
	volume    int
	muted     bool

	// Stats
	videoFrames int64
	audioFrames int64
	skipped     int64
	errors      int64
	packetQueue int
	videoQueue  int
	audioQueue  int

	// Picture
	frame  *image.RGBA
	screen *Screen

	controls *Controls
	quitting bool

	// Dimensions
	width  int
	height int
}

// StatusMsg updates TUI state. Empty strings and nil pointers leave the
// current value alone.
type StatusMsg struct {
	Title   string
	Session string
	State   string
	Volume  *int
	Muted   *bool
}

// StatsMsg carries a full snapshot of pipeline counters
type StatsMsg struct {
	AudioTime   float64
	VideoFrames int64
	AudioFrames int64
	Skipped     int64
	Errors      int64
	PacketQueue int
	VideoQueue  int
	AudioQueue  int
}

// FrameMsg hands a scaled picture to the model
type FrameMsg struct {
	Image *image.RGBA
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250"))

	stateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("220"))

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case StatusMsg:
		m.applyStatus(msg)
	case StatsMsg:
		m.applyStats(msg)
	case FrameMsg:
		m.frame = msg.Image
		if m.screen != nil {
			m.screen.shown()
		}
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		return "Stopping playback...\n"
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("reel"))
	if m.title != "" {
		b.WriteString("  ")
		b.WriteString(valueStyle.Render(truncate(m.title, 60)))
	}
	b.WriteString("\n\n")

	if m.frame != nil {
		b.WriteString(renderFrame(m.frame))
	} else {
		b.WriteString(valueStyle.Render("  waiting for first frame..."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(m.renderStats())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("space:Pause  ↑/↓:Volume  m:Mute  q:Quit"))

	return b.String()
}

// renderStatus renders state, position and volume
func (m Model) renderStatus() string {
	muteIcon := ""
	if m.muted {
		muteIcon = " muted"
	}

	session := m.session
	if len(session) > 8 {
		session = session[:8]
	}

	return stateStyle.Render(fmt.Sprintf("%-8s", m.state)) + " " +
		valueStyle.Render(formatClock(m.audioTime)) + "  " +
		headerStyle.Render("Vol ") +
		valueStyle.Render(fmt.Sprintf("[%s] %d%%%s", renderBar(m.volume, 100, 10), m.volume, muteIcon)) + "  " +
		helpStyle.Render(session)
}

// renderStats renders queue depths and counters
func (m Model) renderStats() string {
	return headerStyle.Render("Queues ") +
		valueStyle.Render(fmt.Sprintf("pkt:%d video:%d audio:%d", m.packetQueue, m.videoQueue, m.audioQueue)) + "  " +
		headerStyle.Render("Frames ") +
		valueStyle.Render(fmt.Sprintf("video:%d audio:%d skipped:%d errors:%d",
			m.videoFrames, m.audioFrames, m.skipped, m.errors))
}

// handleKey handles keyboard input
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.quitting = true
		m.controls.quit()
		return m, tea.Quit
	case " ", "space":
		m.controls.send(Command{Kind: CommandPause})
	case "up":
		m.volume = clamp(m.volume+5, 0, 100)
		m.controls.send(Command{Kind: CommandVolume, Volume: m.volume})
	case "down":
		m.volume = clamp(m.volume-5, 0, 100)
		m.controls.send(Command{Kind: CommandVolume, Volume: m.volume})
	case "m":
		m.muted = !m.muted
		m.controls.send(Command{Kind: CommandMute, Muted: m.muted})
	}

	return m, nil
}

// applyStatus updates model from status message
func (m *Model) applyStatus(msg StatusMsg) {
	if msg.Title != "" {
		m.title = msg.Title
	}
	if msg.Session != "" {
		m.session = msg.Session
	}
	if msg.State != "" {
		m.state = msg.State
	}
	if msg.Volume != nil {
		m.volume = *msg.Volume
	}
	if msg.Muted != nil {
		m.muted = *msg.Muted
	}
}

func (m *Model) applyStats(msg StatsMsg) {
	m.audioTime = msg.AudioTime
	m.videoFrames = msg.VideoFrames
	m.audioFrames = msg.AudioFrames
	m.skipped = msg.Skipped
	m.errors = msg.Errors
	m.packetQueue = msg.PacketQueue
	m.videoQueue = msg.VideoQueue
	m.audioQueue = msg.AudioQueue
}

// Utility functions
func renderBar(value, max, width int) string {
	filled := (value * width) / max
	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}

func truncate(s string, length int) string {
	if len(s) <= length {
		return s
	}
	return s[:length-3] + "..."
}

func formatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	if total >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", total/3600, total/60%60, total%60)
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
