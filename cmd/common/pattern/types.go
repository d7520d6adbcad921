// Package pattern holds the static design pattern datasets: metadata, source
// listings, code steps and animation steps, plus the catalog of known patterns.
//
// Datasets are authored once as YAML files, embedded into the binary and never
// mutated after parsing. Consumers must treat every value reachable from a
// *Dataset as read-only.
package pattern

// Category groups patterns the way the GoF book does.
type Category string

const (
	Creational Category = "creational"
	Structural Category = "structural"
	Behavioral Category = "behavioral"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{Creational, Structural, Behavioral}
}

// Label returns the human readable heading for the category.
func (c Category) Label() string {
	switch c {
	case Creational:
		return "Creational Patterns"
	case Structural:
		return "Structural Patterns"
	case Behavioral:
		return "Behavioral Patterns"
	default:
		return string(c)
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case Creational, Structural, Behavioral:
		return true
	}
	return false
}

// Kind identifies the shape of a dataset's animation snapshots.
type Kind string

const (
	KindSingleton Kind = "singleton"
	KindStrategy  Kind = "strategy"
	KindAdapter   Kind = "adapter"
	KindBuilder   Kind = "builder"
)

// Metadata is the descriptive text shown next to a pattern.
type Metadata struct {
	ID          string   `yaml:"id" json:"id"`
	Name        string   `yaml:"name" json:"name"`
	Category    Category `yaml:"category" json:"category"`
	Icon        string   `yaml:"icon" json:"icon"`
	Description string   `yaml:"description" json:"description"`
	WhenToUse   string   `yaml:"when_to_use" json:"when_to_use"`
	UseCases    []string `yaml:"use_cases" json:"use_cases"`
	Pros        []string `yaml:"pros" json:"pros"`
	Cons        []string `yaml:"cons" json:"cons"`
}

// CodeStep describes which source lines are highlighted at a step.
// HighlightLines are 1-based line numbers into Dataset.SourceLines.
type CodeStep struct {
	StepIndex      int    `yaml:"step"`
	HighlightLines []int  `yaml:"highlight"`
	Context        string `yaml:"context"`
}

// AnimationStep is the full diagram state at a step.
type AnimationStep struct {
	StepIndex int
	State     Snapshot
}

// Dataset is everything needed to play one pattern.
type Dataset struct {
	Kind           Kind
	Metadata       Metadata
	SourceLines    []string
	CodeSteps      []CodeStep
	AnimationSteps []AnimationStep
	InitialState   Snapshot
}

// StepCount is the number of playable steps.
func (d *Dataset) StepCount() int {
	if d == nil {
		return 0
	}
	return len(d.AnimationSteps)
}

// ID is a nil-safe shortcut for Metadata.ID.
func (d *Dataset) ID() string {
	if d == nil {
		return ""
	}
	return d.Metadata.ID
}
