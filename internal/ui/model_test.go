// ABOUTME: Tests for TUI model and state management
// ABOUTME: Tests status updates, key handling and frame messages
package ui

import (
	"image"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewModel(t *testing.T) {
	model := NewModel(nil, nil, 80)

	if model.volume != 80 {
		t.Errorf("expected volume 80, got %d", model.volume)
	}

	if model.muted {
		t.Error("expected muted to be false initially")
	}

	if model.state != "loading" {
		t.Errorf("expected state 'loading', got '%s'", model.state)
	}

	if model.frame != nil {
		t.Error("expected no frame initially")
	}
}

func TestStatusMsg(t *testing.T) {
	model := NewModel(nil, nil, 100)

	volume := 40
	muted := true
	model.applyStatus(StatusMsg{
		Title:   "clip.mp4",
		Session: "0123456789abcdef",
		State:   "Playing",
		Volume:  &volume,
		Muted:   &muted,
	})

	if model.title != "clip.mp4" {
		t.Errorf("expected title 'clip.mp4', got '%s'", model.title)
	}
	if model.state != "Playing" {
		t.Errorf("expected state 'Playing', got '%s'", model.state)
	}
	if model.volume != 40 || !model.muted {
		t.Errorf("expected volume 40 muted, got %d muted=%v", model.volume, model.muted)
	}

	// Partial update keeps previous values
	model.applyStatus(StatusMsg{State: "Paused"})

	if model.title != "clip.mp4" || model.volume != 40 || !model.muted {
		t.Error("partial status update cleared previous values")
	}
	if model.state != "Paused" {
		t.Errorf("expected state 'Paused', got '%s'", model.state)
	}
}

func TestStatsMsg(t *testing.T) {
	model := NewModel(nil, nil, 100)

	model.applyStats(StatsMsg{AudioTime: 1.5, VideoFrames: 10, Errors: 2, VideoQueue: 3})
	model.applyStats(StatsMsg{AudioTime: 2.0, VideoFrames: 12})

	// Stats replace the whole snapshot, zeros included
	if model.audioTime != 2.0 || model.videoFrames != 12 {
		t.Errorf("unexpected stats %v/%d", model.audioTime, model.videoFrames)
	}
	if model.errors != 0 || model.videoQueue != 0 {
		t.Errorf("expected zeroed counters, got errors=%d videoQueue=%d", model.errors, model.videoQueue)
	}
}

func TestKeyCommands(t *testing.T) {
	tests := []struct {
		name   string
		key    tea.KeyMsg
		start  int
		want   Command
		volume int
	}{
		{"space pauses", tea.KeyMsg{Type: tea.KeySpace}, 50, Command{Kind: CommandPause}, 50},
		{"up raises", tea.KeyMsg{Type: tea.KeyUp}, 50, Command{Kind: CommandVolume, Volume: 55}, 55},
		{"up clamps", tea.KeyMsg{Type: tea.KeyUp}, 98, Command{Kind: CommandVolume, Volume: 100}, 100},
		{"down lowers", tea.KeyMsg{Type: tea.KeyDown}, 50, Command{Kind: CommandVolume, Volume: 45}, 45},
		{"down clamps", tea.KeyMsg{Type: tea.KeyDown}, 3, Command{Kind: CommandVolume, Volume: 0}, 0},
		{"m mutes", runeKey('m'), 50, Command{Kind: CommandMute, Muted: true}, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controls := NewControls()
			model := NewModel(controls, nil, tt.start)

			next, cmd := model.Update(tt.key)
			if cmd != nil {
				t.Error("expected no tea command")
			}

			select {
			case got := <-controls.Commands:
				if got != tt.want {
					t.Errorf("expected command %+v, got %+v", tt.want, got)
				}
			default:
				t.Fatal("no command sent")
			}

			if v := next.(Model).volume; v != tt.volume {
				t.Errorf("expected volume %d, got %d", tt.volume, v)
			}
		})
	}
}

func TestQuitKey(t *testing.T) {
	controls := NewControls()
	model := NewModel(controls, nil, 100)

	next, cmd := model.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !next.(Model).quitting {
		t.Error("expected quitting to be set")
	}

	select {
	case <-controls.Quit:
	default:
		t.Error("expected quit signal")
	}

	// A second quit must not block on the full channel
	next.(Model).Update(runeKey('q'))
}

func TestKeysWithoutControls(t *testing.T) {
	model := NewModel(nil, nil, 100)

	// Must not panic with nil controls
	model.Update(tea.KeyMsg{Type: tea.KeySpace})
	model.Update(runeKey('m'))
	model.Update(runeKey('q'))
}

func TestFrameMsgAcknowledgesScreen(t *testing.T) {
	screen := NewScreen()
	screen.attach(&fakeProgram{})
	model := NewModel(nil, screen, 100)

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	if err := screen.Submit(img); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if screen.Ready() {
		t.Fatal("screen should not be ready while a picture is in flight")
	}

	next, _ := model.Update(FrameMsg{Image: img})

	if next.(Model).frame != img {
		t.Error("expected model to keep the picture")
	}
	if !screen.Ready() {
		t.Error("screen should be ready once the model took the picture")
	}
}

func TestView(t *testing.T) {
	model := NewModel(nil, nil, 100)
	model.applyStatus(StatusMsg{Title: "clip.mp4", State: "Playing"})

	view := model.View()
	if !strings.Contains(view, "waiting for first frame") {
		t.Error("expected placeholder before first frame")
	}
	if !strings.Contains(view, "clip.mp4") {
		t.Error("expected title in view")
	}

	model.frame = image.NewRGBA(image.Rect(0, 0, 2, 2))
	view = model.View()
	if !strings.Contains(view, upperHalf) {
		t.Error("expected rendered picture in view")
	}
}

func TestTruncateFunction(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"this is longer than allowed", 10, "this is..."},
		{"", 10, ""},
		{"abcd", 4, "abcd"},
		{"abcde", 4, "a..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, expected %q",
				tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds  float64
		expected string
	}{
		{0, "00:00"},
		{-1, "00:00"},
		{5.9, "00:05"},
		{65, "01:05"},
		{3725, "1:02:05"},
	}

	for _, tt := range tests {
		if got := formatClock(tt.seconds); got != tt.expected {
			t.Errorf("formatClock(%v) = %q, expected %q", tt.seconds, got, tt.expected)
		}
	}
}

func TestRenderBar(t *testing.T) {
	if got := renderBar(50, 100, 4); got != "██░░" {
		t.Errorf("renderBar(50) = %q", got)
	}
	if got := renderBar(0, 100, 3); got != "░░░" {
		t.Errorf("renderBar(0) = %q", got)
	}
}
