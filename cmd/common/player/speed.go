package player

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
)

// DefaultSpeed is the interval between autoplay steps.
const DefaultSpeed = 2 * time.Second

var ErrUnknownSpeed = errors.New("unknown speed")

// Preset is a named autoplay interval.
type Preset struct {
	Label string
	Speed time.Duration
}

// slowest first
var presets = []Preset{
	{Label: "0.5x", Speed: 3 * time.Second},
	{Label: "1x", Speed: 2 * time.Second},
	{Label: "2x", Speed: 1 * time.Second},
	{Label: "3x", Speed: 500 * time.Millisecond},
}

// Presets returns the speed presets, slowest first.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// ParseSpeed accepts a preset label ("2x"), a Go duration ("750ms") or a
// bare number of milliseconds ("1500").
func ParseSpeed(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if p, ok := lo.Find(presets, func(p Preset) bool { return strings.EqualFold(p.Label, s) }); ok {
		return p.Speed, nil
	}
	if ms, err := strconv.Atoi(s); err == nil && ms > 0 {
		return time.Duration(ms) * time.Millisecond, nil
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, nil
	}
	return 0, fmt.Errorf("%w: %q (use one of %s, a duration like 750ms, or milliseconds)",
		ErrUnknownSpeed, s, strings.Join(lo.Map(presets, func(p Preset, _ int) string { return p.Label }), ", "))
}

// SpeedLabel names d by its preset, or falls back to the duration itself.
func SpeedLabel(d time.Duration) string {
	if p, ok := lo.Find(presets, func(p Preset) bool { return p.Speed == d }); ok {
		return p.Label
	}
	return d.String()
}

// Faster returns the next preset quicker than d, or the quickest preset.
func Faster(d time.Duration) time.Duration {
	for _, p := range presets {
		if p.Speed < d {
			return p.Speed
		}
	}
	return presets[len(presets)-1].Speed
}

// Slower returns the next preset slower than d, or the slowest preset.
func Slower(d time.Duration) time.Duration {
	for i := len(presets) - 1; i >= 0; i-- {
		if presets[i].Speed > d {
			return presets[i].Speed
		}
	}
	return presets[0].Speed
}
