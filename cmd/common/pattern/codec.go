package pattern

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// datasetFile is the on-disk YAML layout of a dataset.
type datasetFile struct {
	Kind           Kind                `yaml:"kind"`
	Metadata       Metadata            `yaml:"metadata"`
	Source         string              `yaml:"source"`
	Initial        yaml.Node           `yaml:"initial"`
	CodeSteps      []CodeStep          `yaml:"code_steps"`
	AnimationSteps []animationStepFile `yaml:"animation_steps"`
}

type animationStepFile struct {
	Step  int       `yaml:"step"`
	State yaml.Node `yaml:"state"`
}

type snapshotDecoder func(*yaml.Node) (Snapshot, error)

var snapshotDecoders = map[Kind]snapshotDecoder{
	KindSingleton: decodeSnapshot[SingletonState],
	KindStrategy:  decodeSnapshot[StrategyState],
	KindAdapter:   decodeSnapshot[AdapterState],
	KindBuilder:   decodeSnapshot[BuilderState],
}

// decodeSnapshot decodes n strictly. Node.Decode ignores unknown keys, so the
// node is re-encoded and read back through a KnownFields decoder.
func decodeSnapshot[T Snapshot](n *yaml.Node) (Snapshot, error) {
	raw, err := yaml.Marshal(n)
	if err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)

	var v T
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// Parse decodes a YAML dataset. It does not validate step alignment; use
// Validate (or ParseAndValidate) for that.
func Parse(data []byte) (*Dataset, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f datasetFile
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}

	decode, ok := snapshotDecoders[f.Kind]
	if !ok {
		return nil, fmt.Errorf("parse dataset %q: unknown kind %q", f.Metadata.ID, f.Kind)
	}

	ds := &Dataset{
		Kind:        f.Kind,
		Metadata:    f.Metadata,
		SourceLines: splitSource(f.Source),
		CodeSteps:   f.CodeSteps,
	}

	if !f.Initial.IsZero() {
		initial, err := decode(&f.Initial)
		if err != nil {
			return nil, fmt.Errorf("parse dataset %q: initial state: %w", f.Metadata.ID, err)
		}
		ds.InitialState = initial
	}

	ds.AnimationSteps = make([]AnimationStep, 0, len(f.AnimationSteps))
	for i, step := range f.AnimationSteps {
		var state Snapshot
		if !step.State.IsZero() {
			s, err := decode(&step.State)
			if err != nil {
				return nil, fmt.Errorf("parse dataset %q: animation step %d: %w", f.Metadata.ID, i, err)
			}
			state = s
		}
		ds.AnimationSteps = append(ds.AnimationSteps, AnimationStep{StepIndex: step.Step, State: state})
	}

	return ds, nil
}

// ParseAndValidate is Parse followed by Validate.
func ParseAndValidate(data []byte) (*Dataset, error) {
	ds, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := Validate(ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// ParseFile reads and validates an authored dataset file.
func ParseFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return ParseAndValidate(data)
}

func splitSource(src string) []string {
	if src == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(src, "\n"), "\n")
}
