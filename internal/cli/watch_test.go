package cli

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/forcegraph/pkg/layout"
)

func TestWatchModelTracksTicks(t *testing.T) {
	m := newWatchModel(10)

	next, _ := m.Update(watchTickMsg(layout.TickMessage{CurrentTick: 3, TotalTicks: 100}))
	m = next.(watchModel)

	if m.current != 3 || m.total != 100 {
		t.Errorf("model = %d/%d, want 3/100", m.current, m.total)
	}

	view := m.View()
	if !strings.Contains(view, "3") || !strings.Contains(view, "100") {
		t.Errorf("view %q missing tick counts", view)
	}
	if !strings.Contains(view, "force layout") {
		t.Errorf("view %q missing header", view)
	}
}

func TestWatchModelQuitsOnDone(t *testing.T) {
	m := newWatchModel(10)

	next, cmd := m.Update(watchDoneMsg{err: errors.New("boom")})
	m = next.(watchModel)

	if !m.done {
		t.Error("model not done after done message")
	}
	if m.err == nil {
		t.Error("model did not record error")
	}
	if cmd == nil {
		t.Fatal("done message did not produce a command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("done command = %v, want quit", msg)
	}
}

func TestWatchModelQuitsOnKeypress(t *testing.T) {
	m := newWatchModel(10)

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = next.(watchModel)

	if m.done {
		t.Error("keypress should not mark the run done")
	}
	if cmd == nil {
		t.Fatal("ctrl+c did not produce a command")
	}
	if msg := cmd(); msg != tea.Quit() {
		t.Errorf("ctrl+c command = %v, want quit", msg)
	}
}

func TestWatchModelBarNeverOverflows(t *testing.T) {
	m := newWatchModel(10)

	next, _ := m.Update(watchTickMsg(layout.TickMessage{CurrentTick: 200, TotalTicks: 100}))
	m = next.(watchModel)

	if got := strings.Count(m.View(), "█"); got > watchBarWidth {
		t.Errorf("bar has %d filled cells, want at most %d", got, watchBarWidth)
	}
}
