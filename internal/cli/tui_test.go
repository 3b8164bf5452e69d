package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pgatlas/pgatlas/pkg/gate"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m GateModel, keys ...string) GateModel {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(GateModel)
	}
	return m
}

func testResults() []gate.Result {
	return []gate.Result{
		{ID: "a", SignalsPassed: 1, Explanation: "PG Atlas Metric Gate: a"},
		{ID: "b", Passed: true, Borderline: true, SignalsPassed: 2, Explanation: "PG Atlas Metric Gate: b"},
		{ID: "c", Passed: true, SignalsPassed: 3, Explanation: "PG Atlas Metric Gate: c"},
	}
}

func TestGateModelNavigation(t *testing.T) {
	tests := []struct {
		keys []string
		want int
	}{
		{nil, 0},
		{[]string{"down"}, 1},
		{[]string{"j", "j", "j", "j"}, 2},
		{[]string{"down", "up", "up"}, 0},
		{[]string{"down", "k"}, 0},
	}
	for _, tt := range tests {
		m := press(NewGateModel(testResults()), tt.keys...)
		if m.Cursor != tt.want {
			t.Errorf("keys %v: cursor = %d, want %d", tt.keys, m.Cursor, tt.want)
		}
	}
}

func TestGateModelScrolls(t *testing.T) {
	m := NewGateModel(testResults())
	m.Height = 2
	m = press(m, "down", "down")
	if m.Offset != 1 {
		t.Errorf("offset = %d, want 1", m.Offset)
	}
	m = press(m, "up", "up")
	if m.Offset != 0 {
		t.Errorf("offset after scrolling back = %d, want 0", m.Offset)
	}
}

func TestGateModelDetail(t *testing.T) {
	m := press(NewGateModel(testResults()), "down", "enter")
	if !m.Detail {
		t.Fatal("enter did not open the detail view")
	}
	if view := m.View(); !strings.Contains(view, "PG Atlas Metric Gate: b") {
		t.Errorf("detail view missing explanation:\n%s", view)
	}
	m = press(m, "esc")
	if m.Detail {
		t.Error("esc did not close the detail view")
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q did not quit")
	}
}

func TestGateModelEmpty(t *testing.T) {
	m := press(NewGateModel(nil), "down", "enter")
	if m.Detail || m.Cursor != 0 {
		t.Errorf("empty model moved: cursor = %d, detail = %v", m.Cursor, m.Detail)
	}
	if !strings.Contains(m.View(), "No results") {
		t.Errorf("empty view = %q", m.View())
	}
}

func TestGateVerdict(t *testing.T) {
	want := []string{"fail", "borderline", "pass"}
	for i, r := range testResults() {
		if got := gateVerdict(r); got != want[i] {
			t.Errorf("gateVerdict(%s) = %s, want %s", r.ID, got, want[i])
		}
	}
}
