package pattern

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// ErrInvalidDataset is wrapped by every *ValidationError.
var ErrInvalidDataset = errors.New("invalid dataset")

// ValidationError lists every problem found in one dataset.
type ValidationError struct {
	PatternID string
	Problems  []string
}

func (e *ValidationError) Error() string {
	id := e.PatternID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("dataset %s: %s", id, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDataset
}

// Validate checks the invariants the player relies on: aligned, dense,
// zero-based step indices, highlight lines inside the source listing and
// snapshots of the dataset's own kind. A dataset with zero steps is valid.
func Validate(ds *Dataset) error {
	if ds == nil {
		return &ValidationError{Problems: []string{"dataset is nil"}}
	}

	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if ds.Metadata.ID == "" {
		addf("metadata.id is empty")
	}
	if ds.Metadata.Category != "" && !ds.Metadata.Category.Valid() {
		addf("unknown category %q", ds.Metadata.Category)
	}
	if _, ok := snapshotDecoders[ds.Kind]; !ok {
		addf("unknown kind %q", ds.Kind)
	}

	switch {
	case ds.InitialState == nil:
		addf("initial state is missing")
	case ds.InitialState.Kind() != ds.Kind:
		addf("initial state has kind %q, want %q", ds.InitialState.Kind(), ds.Kind)
	}

	if len(ds.CodeSteps) != len(ds.AnimationSteps) {
		addf("%d code steps but %d animation steps", len(ds.CodeSteps), len(ds.AnimationSteps))
	}

	lineCount := len(ds.SourceLines)
	for i, cs := range ds.CodeSteps {
		if cs.StepIndex != i {
			addf("code step %d has index %d", i, cs.StepIndex)
		}
		outOfRange := lo.Filter(cs.HighlightLines, func(line int, _ int) bool {
			return line < 1 || line > lineCount
		})
		if len(outOfRange) > 0 {
			addf("code step %d highlights lines %v outside 1..%d", i, outOfRange, lineCount)
		}
	}

	for i, as := range ds.AnimationSteps {
		if as.StepIndex != i {
			addf("animation step %d has index %d", i, as.StepIndex)
		}
		switch {
		case as.State == nil:
			addf("animation step %d has no state", i)
		case as.State.Kind() != ds.Kind:
			addf("animation step %d has kind %q, want %q", i, as.State.Kind(), ds.Kind)
		}
	}

	if len(problems) > 0 {
		return &ValidationError{PatternID: ds.Metadata.ID, Problems: problems}
	}
	return nil
}
