package run

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gigurra/patviz/cmd/common/pattern"
)

func TestAutoplayPrintsEveryStep(t *testing.T) {
	ds, err := pattern.Load("singleton")
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Autoplay(ctx, ds, Options{Speed: time.Millisecond, Context: true}, &out); err != nil {
		t.Fatalf("Autoplay error: %v", err)
	}

	got := out.String()
	for i := 1; i <= 11; i++ {
		if want := fmt.Sprintf("[%2d/11]", i); !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "[ 6/11]") != 1 {
		t.Errorf("step 6 printed %d times", strings.Count(got, "[ 6/11]"))
	}
	for _, want := range []string{
		"Singleton · 11 steps",
		ds.InitialState.Message(),
		ds.AnimationSteps[10].State.Message(),
		"▶ " + ds.CodeSteps[4].Context,
		"✔ done",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if strings.Contains(got, ds.AnimationSteps[0].State.Message()) && ds.AnimationSteps[0].State.Message() != ds.InitialState.Message() {
		t.Error("autoplay should start from the initial state, not step 0's snapshot")
	}
}

func TestAutoplayQuietOmitsContext(t *testing.T) {
	ds, err := pattern.Load("strategy")
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if err := Autoplay(context.Background(), ds, Options{Speed: time.Millisecond}, &out); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "▶") {
		t.Errorf("quiet output has context lines:\n%s", out.String())
	}
}

func TestAutoplayLoopsUntilCancelled(t *testing.T) {
	ds, err := pattern.Load("adapter")
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := Autoplay(ctx, ds, Options{Speed: time.Millisecond, Loop: true}, &out); err != nil {
		t.Fatalf("Autoplay error: %v", err)
	}
	if !strings.Contains(out.String(), "↻ again") {
		t.Errorf("loop never restarted:\n%s", out.String())
	}
	if strings.Contains(out.String(), "✔ done") {
		t.Error("looping playback should not finish")
	}
}

func TestAutoplayStopsOnCancel(t *testing.T) {
	ds, err := pattern.Load("builder")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() { done <- Autoplay(ctx, ds, Options{Speed: time.Hour}, &out) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Autoplay error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Autoplay ignored cancellation")
	}
}

func TestAutoplayZeroSteps(t *testing.T) {
	ds := &pattern.Dataset{
		Kind:         pattern.KindStrategy,
		Metadata:     pattern.Metadata{ID: "empty", Name: "Empty"},
		InitialState: pattern.StrategyState{ResultMessage: "nothing to see"},
	}
	var out bytes.Buffer
	if err := Autoplay(context.Background(), ds, Options{Speed: time.Millisecond}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "nothing to see") {
		t.Errorf("output = %q", out.String())
	}
}

func TestAutoplayRejectsInvalidDataset(t *testing.T) {
	ds := &pattern.Dataset{Kind: pattern.KindStrategy}
	err := Autoplay(context.Background(), ds, Options{}, &bytes.Buffer{})
	if !errors.Is(err, pattern.ErrInvalidDataset) {
		t.Errorf("error = %v, want ErrInvalidDataset", err)
	}
}

func TestResolve(t *testing.T) {
	ds, err := Resolve("", "", "strategy")
	if err != nil || ds.ID() != "strategy" {
		t.Errorf("fallback resolve = %v, %v", ds.ID(), err)
	}

	ds, err = Resolve("adapter", "", "strategy")
	if err != nil || ds.ID() != "adapter" {
		t.Errorf("id resolve = %v, %v", ds.ID(), err)
	}

	if _, err := Resolve("decorator", "", ""); !errors.Is(err, pattern.ErrNotImplemented) {
		t.Errorf("decorator error = %v", err)
	}

	raw, err := pattern.Raw("builder")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "mine.yaml")
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}
	ds, err = Resolve("singleton", path, "")
	if err != nil || ds.ID() != "builder" {
		t.Errorf("file resolve = %v, %v", ds.ID(), err)
	}
}
