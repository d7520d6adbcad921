package play

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/gigurra/patviz/cmd/common/player"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func newTestModel(t *testing.T, id string) (model, *player.Store) {
	t.Helper()
	ds, err := pattern.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	store := player.NewStore()
	if err := store.Load(ds); err != nil {
		t.Fatal(err)
	}
	ids := []string{"singleton", "builder", "adapter", "strategy"}
	m, cancel := newModel(store, ids, "", true)
	t.Cleanup(cancel)
	return m, store
}

func press(m model, keys ...string) model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(model)
	}
	return m
}

func TestKeysDriveTheStore(t *testing.T) {
	m, store := newTestModel(t, "singleton")

	m = press(m, "right", "l", "n")
	if got := store.Player().CurrentStep; got != 3 {
		t.Fatalf("step after three forward keys = %d, want 3", got)
	}
	if m.frame.Player.CurrentStep != 3 {
		t.Errorf("model frame is stale: step %d", m.frame.Player.CurrentStep)
	}

	m = press(m, "left")
	if got := store.Player().CurrentStep; got != 2 {
		t.Errorf("step after back = %d, want 2", got)
	}

	m = press(m, "G")
	if got := store.Player().CurrentStep; got != 10 {
		t.Errorf("step after G = %d, want 10", got)
	}
	m = press(m, "g")
	if got := store.Player().CurrentStep; got != 0 {
		t.Errorf("step after g = %d, want 0", got)
	}

	m = press(m, " ")
	if !store.Player().IsPlaying {
		t.Error("space should start playback")
	}
	m = press(m, " ")
	if store.Player().IsPlaying {
		t.Error("second space should pause")
	}

	press(m, "right", "right", "r")
	if p := store.Player(); p.CurrentStep != 0 || p.IsPlaying {
		t.Errorf("after reset: %+v", p)
	}
}

func TestSpeedKeys(t *testing.T) {
	m, store := newTestModel(t, "strategy")

	m = press(m, "4")
	if got := store.Player().Speed; got != 500*time.Millisecond {
		t.Errorf("speed after 4 = %v", got)
	}
	m = press(m, "[")
	if got := store.Player().Speed; got != time.Second {
		t.Errorf("speed after [ = %v", got)
	}
	press(m, "1", "]")
	if got := store.Player().Speed; got != 2*time.Second {
		t.Errorf("speed after 1 then ] = %v", got)
	}
}

func TestTabCyclesPatterns(t *testing.T) {
	m, store := newTestModel(t, "singleton")

	m = press(m, "right", "tab")
	if p := store.Player(); p.SelectedPatternID != "builder" || p.CurrentStep != 0 {
		t.Errorf("after tab: %+v", p)
	}
	m = press(m, "shift+tab", "shift+tab")
	if got := store.Player().SelectedPatternID; got != "strategy" {
		t.Errorf("after two shift+tab: %q, want strategy", got)
	}
	m = press(m, "tab")
	if got := store.Player().SelectedPatternID; got != "singleton" {
		t.Errorf("tab should wrap around, got %q", got)
	}
	if m.frame.Player.SelectedPatternID != "singleton" {
		t.Error("model frame not refreshed after switching pattern")
	}
}

func TestCopyContext(t *testing.T) {
	m, _ := newTestModel(t, "singleton")
	var copied string
	m.copyText = func(s string) error { copied = s; return nil }

	m = press(m, "c")
	if copied != m.frame.Context || copied == "" {
		t.Errorf("copied %q, want %q", copied, m.frame.Context)
	}
	if !strings.HasPrefix(m.view.status, "copied") {
		t.Errorf("status = %q", m.view.status)
	}

	m.copyText = func(string) error { return errors.New("no clipboard") }
	m = press(m, "c")
	if !strings.Contains(m.view.status, "no clipboard") {
		t.Errorf("status = %q", m.view.status)
	}
}

func TestInfoView(t *testing.T) {
	m, store := newTestModel(t, "adapter")

	m = press(m, "i")
	if !m.view.showInfo {
		t.Fatal("i should open the info view")
	}
	out := m.View()
	for _, want := range []string{"Description", "When to use", "Pros", "Cons"} {
		if !strings.Contains(out, want) {
			t.Errorf("info view missing %q", want)
		}
	}

	m = press(m, "right")
	if store.Player().CurrentStep != 0 {
		t.Error("navigation keys should be inert in the info view")
	}
	m = press(m, "i")
	if m.view.showInfo {
		t.Error("i should close the info view")
	}
}

func TestQuitKeys(t *testing.T) {
	m, _ := newTestModel(t, "singleton")
	for _, k := range []string{"q", "esc"} {
		var msg tea.KeyMsg
		if k == "esc" {
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		} else {
			msg = key(k)
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Errorf("%s returned no command", k)
			continue
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", k)
		}
	}
}

func TestFrameChangedRefreshesFromStore(t *testing.T) {
	m, store := newTestModel(t, "builder")
	store.Seek(4)

	if m.frame.Player.CurrentStep != 0 {
		t.Fatal("frame should only change on a message")
	}
	next, cmd := m.Update(frameChangedMsg{})
	m = next.(model)
	if m.frame.Player.CurrentStep != 4 {
		t.Errorf("frame step = %d, want 4", m.frame.Player.CurrentStep)
	}
	if cmd == nil {
		t.Error("frameChangedMsg should re-arm the wait")
	}
}

func TestStoreChangesSignalTheModel(t *testing.T) {
	m, store := newTestModel(t, "strategy")

	store.Advance()
	store.Advance()
	select {
	case <-m.changes:
	case <-time.After(time.Second):
		t.Fatal("no change signal after store updates")
	}
	select {
	case <-m.changes:
		t.Error("signals should be coalesced")
	default:
	}
}

func TestReloadFromWatchedFile(t *testing.T) {
	m, store := newTestModel(t, "singleton")
	m.watchPath = "mine.yaml"

	fresh, err := pattern.Load("strategy")
	if err != nil {
		t.Fatal(err)
	}
	next, cmd := m.Update(datasetChangedMsg{path: "mine.yaml", dataset: fresh})
	m = next.(model)
	if store.Player().SelectedPatternID != "strategy" {
		t.Errorf("reload did not reach the store: %+v", store.Player())
	}
	if !strings.Contains(m.view.status, "reloaded") {
		t.Errorf("status = %q", m.view.status)
	}
	if cmd == nil {
		t.Error("reload should re-arm the watcher")
	}

	next, _ = m.Update(datasetChangedMsg{path: "mine.yaml", err: errors.New("yaml: line 3: oops")})
	m = next.(model)
	if !strings.Contains(m.view.status, "oops") || store.Player().SelectedPatternID != "strategy" {
		t.Errorf("parse failure handling: status %q, store %+v", m.view.status, store.Player())
	}

	broken := *fresh
	broken.CodeSteps = broken.CodeSteps[:3]
	next, _ = m.Update(datasetChangedMsg{path: "mine.yaml", dataset: &broken})
	m = next.(model)
	if !strings.Contains(m.view.status, "rejected") {
		t.Errorf("status = %q", m.view.status)
	}
	if store.Player().TotalSteps != fresh.StepCount() {
		t.Error("an invalid reload replaced the dataset")
	}
}

func TestViewShowsCodeDiagramAndControls(t *testing.T) {
	m, store := newTestModel(t, "singleton")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 140, Height: 50})
	m = next.(model)

	m = press(m, "right", "right", "right", "right")
	out := m.View()

	ds := store.Dataset()
	for _, want := range []string{
		"Singleton",
		"Creational Patterns",
		ds.AnimationSteps[4].State.Message(),
		ds.CodeSteps[4].Context,
		"Step 5/11",
		"new Singleton()",
		"speed 1x",
		"paused",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}

	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 140 {
			t.Errorf("line wider than the terminal (%d): %q", w, line)
		}
	}
}

func TestNarrowViewStacksPanels(t *testing.T) {
	m, _ := newTestModel(t, "builder")
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = next.(model)
	out := m.View()
	for _, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > 80 {
			t.Errorf("line wider than 80 cells (%d): %q", w, line)
		}
	}
	if !strings.Contains(out, "Director") {
		t.Error("builder diagram missing")
	}
}

func TestDiagrams(t *testing.T) {
	w, r := 5, 4
	fits := false
	tests := []struct {
		name  string
		state pattern.Snapshot
		want  []string
	}{
		{"empty singleton", pattern.SingletonState{}, []string{"instance = null", "(empty)"}},
		{"singleton call", pattern.SingletonState{
			InstanceExists: true,
			CallerID:       "Client-B",
			IsReturning:    true,
			CallHistory:    []pattern.Call{{CallerID: "Client-A", Action: pattern.ActionCreate, Timestamp: 1}},
		}, []string{"Client-B", "exists", "Client-A", "create"}},
		{"strategy", pattern.StrategyState{
			CurrentStrategy:     "PayPalPayment",
			AvailableStrategies: []string{"CreditCardPayment", "PayPalPayment"},
			IsExecuting:         true,
			ContextActive:       true,
		}, []string{"ShoppingCart", "PayPalPayment", "CreditCardPayment", "pay()"}},
		{"adapter", pattern.AdapterState{SquarePegWidth: &w, RoundPegRadius: &r, AdapterActive: true, Fits: &fits},
			[]string{"width 5", "radius 4", "does not fit"}},
		{"builder", pattern.BuilderState{
			CurrentBuilder:    "CarBuilder",
			ProductType:       "SportsCar",
			BuildSteps:        []pattern.BuildStep{{Step: "setSeats", Value: "2", Completed: true}},
			IsProductComplete: true,
			Product:           "SportsCar",
		}, []string{"CarBuilder", "setSeats", "(2)", "SportsCar"}},
		{"nothing", nil, []string{"no pattern loaded"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := renderDiagram(tt.state)
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("diagram missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestRenderCodeWindowsAroundHighlight(t *testing.T) {
	_, store := newTestModel(t, "builder")
	ds := store.Dataset()
	last := ds.StepCount() - 1
	store.Seek(last)
	f := store.Frame()

	out := renderCode(f, 80, 10)
	if got := strings.Count(out, "\n") + 1; got != 10 {
		t.Errorf("rendered %d lines, want 10", got)
	}
	first := minInt(f.Highlight)
	if !strings.Contains(out, strings.TrimSpace(ds.SourceLines[first-1])) {
		t.Errorf("window does not contain highlighted line %d", first)
	}
}

func TestRenderEmptyStore(t *testing.T) {
	out := render(player.NewStore().Frame(), view{width: 80})
	if !strings.Contains(out, "No pattern loaded") {
		t.Errorf("empty view = %q", out)
	}
	line := strings.TrimSuffix(out, "\n")
	if w := lipgloss.Width(line); w != 80 {
		t.Errorf("empty view is %d cells wide, want 80", w)
	}
	if !strings.HasPrefix(line, "  ") {
		t.Errorf("empty view message is not centered: %q", line)
	}
}
