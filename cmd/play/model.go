package play

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gigurra/patviz/cmd/common/pattern"
	"github.com/gigurra/patviz/cmd/common/player"
)

// frameChangedMsg tells the model the store has moved on.
type frameChangedMsg struct{}

type model struct {
	store   *player.Store
	frame   player.Frame
	changes <-chan struct{}

	patterns  []string
	watchPath string
	copyText  func(string) error

	view view
}

// newModel subscribes to store. Notifications are coalesced into a
// one-slot channel so the ticker goroutine never blocks on the UI. The
// returned cancel unsubscribes and closes the channel, which releases a
// pending waitForFrame.
func newModel(store *player.Store, patterns []string, watchPath string, showContext bool) (model, func()) {
	changes := make(chan struct{}, 1)

	// a notification already in flight may arrive after unsubscribe
	var mu sync.Mutex
	closed := false
	unsubscribe := store.Subscribe(func(player.Frame) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	cancel := func() {
		unsubscribe()
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			closed = true
			close(changes)
		}
	}

	m := model{
		store:     store,
		frame:     store.Frame(),
		changes:   changes,
		patterns:  patterns,
		watchPath: watchPath,
		copyText:  clipboard.WriteAll,
		view: view{
			tabs:        patterns,
			showContext: showContext,
		},
	}
	return m, cancel
}

func waitForFrame(changes <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return frameChangedMsg{}
	}
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForFrame(m.changes)}
	if m.watchPath != "" {
		cmds = append(cmds, watchDatasetCmd(m.watchPath))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.view.width = msg.Width
		m.view.height = msg.Height
		return m, nil

	case frameChangedMsg:
		m.frame = m.store.Frame()
		return m, waitForFrame(m.changes)

	case datasetChangedMsg:
		m = m.reload(msg)
		if msg.stopped {
			return m, nil
		}
		return m, watchDatasetCmd(m.watchPath)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view.showInfo {
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "i", "esc", "enter":
			m.view.showInfo = false
		}
		return m, nil
	}

	m.view.status = ""
	speed := m.frame.Player.Speed

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case " ", "p", "enter":
		m.store.TogglePlay()
	case "right", "l", "n":
		m.store.Advance()
	case "left", "h", "b":
		m.store.Retreat()
	case "g":
		m.store.Seek(0)
	case "G", "end":
		m.store.Seek(m.frame.Player.TotalSteps - 1)
	case "r", "home":
		m.store.Reset()
	case "1", "2", "3", "4":
		presets := player.Presets()
		m.store.SetSpeed(presets[int(msg.String()[0]-'1')].Speed)
	case "[", "-":
		m.store.SetSpeed(player.Slower(speed))
	case "]", "+", "=":
		m.store.SetSpeed(player.Faster(speed))
	case "tab":
		m = m.switchPattern(1)
	case "shift+tab":
		m = m.switchPattern(-1)
	case "i":
		m.view.showInfo = true
	case "x":
		m.view.showContext = !m.view.showContext
	case "c":
		m = m.copyContext()
	}

	m.frame = m.store.Frame()
	return m, nil
}

// switchPattern loads the next or previous embedded pattern.
func (m model) switchPattern(dir int) model {
	if len(m.patterns) == 0 {
		return m
	}
	i := slices.Index(m.patterns, m.frame.Player.SelectedPatternID)
	next := m.patterns[(i+dir+len(m.patterns))%len(m.patterns)]
	if i < 0 && dir < 0 {
		next = m.patterns[len(m.patterns)-1]
	}

	ds, err := pattern.Load(next)
	if err == nil {
		err = m.store.Load(ds)
	}
	if err != nil {
		m.view.status = err.Error()
		slog.Error("switch pattern", "pattern", next, "error", err)
	}
	return m
}

func (m model) copyContext() model {
	text := m.frame.Context
	if text == "" {
		m.view.status = "nothing to copy at this step"
		return m
	}
	if err := m.copyText(text); err != nil {
		m.view.status = fmt.Sprintf("copy failed: %v", err)
		return m
	}
	m.view.status = "copied: " + text
	return m
}

func (m model) reload(msg datasetChangedMsg) model {
	if msg.err != nil {
		m.view.status = fmt.Sprintf("reload %s: %v", msg.path, msg.err)
		slog.Warn("dataset reload failed", "path", msg.path, "error", msg.err)
		return m
	}
	if err := m.store.Load(msg.dataset); err != nil {
		var verr *pattern.ValidationError
		if errors.As(err, &verr) {
			m.view.status = fmt.Sprintf("reload rejected: %d problem(s): %s", len(verr.Problems), verr.Problems[0])
		} else {
			m.view.status = "reload rejected: " + err.Error()
		}
		return m
	}
	m.view.status = "reloaded " + msg.path
	slog.Info("dataset reloaded", "path", msg.path, "pattern", msg.dataset.ID())
	m.frame = m.store.Frame()
	return m
}

func (m model) View() string {
	return render(m.frame, m.view)
}
