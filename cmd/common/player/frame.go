package player

import (
	"math"
	"time"

	"github.com/gigurra/patviz/cmd/common/pattern"
)

// PlayerState is the cursor and transport state of a Store.
type PlayerState struct {
	CurrentStep       int
	TotalSteps        int
	IsPlaying         bool
	Speed             time.Duration
	SelectedPatternID string
}

// Frame is an immutable view of the store at one version. Everything a
// renderer needs is here, so a frame can be drawn without touching the store.
type Frame struct {
	Player    PlayerState
	Dataset   *pattern.Dataset
	Snapshot  pattern.Snapshot
	Highlight []int
	Context   string
	Version   uint64

	epoch uint64
	run   uint64
}

// Loaded reports whether a dataset is active.
func (f Frame) Loaded() bool {
	return f.Dataset != nil
}

// Progress is the position in percent, 0 when there is at most one step.
func (f Frame) Progress() int {
	if f.Player.TotalSteps <= 1 {
		return 0
	}
	return int(math.Round(float64(f.Player.CurrentStep) / float64(f.Player.TotalSteps-1) * 100))
}

func (f Frame) CanGoPrev() bool {
	return f.Player.CurrentStep > 0
}

func (f Frame) CanGoNext() bool {
	return f.Player.CurrentStep < f.Player.TotalSteps-1
}

// AtEnd reports whether the cursor is on the last step.
func (f Frame) AtEnd() bool {
	return f.Player.TotalSteps > 0 && f.Player.CurrentStep == f.Player.TotalSteps-1
}

// Highlighted reports whether 1-based source line n is highlighted.
func (f Frame) Highlighted(n int) bool {
	for _, l := range f.Highlight {
		if l == n {
			return true
		}
	}
	return false
}
