package pattern

// Snapshot is an immutable, self-describing animation state. The set of
// implementations is closed: SingletonState, StrategyState, AdapterState and
// BuilderState. Renderers narrow it with a type switch.
type Snapshot interface {
	Kind() Kind
	Message() string
	snapshot()
}

// CallAction is one entry type in the singleton call history.
type CallAction string

const (
	ActionCheck  CallAction = "check"
	ActionCreate CallAction = "create"
	ActionReturn CallAction = "return"
)

// Call is a recorded getInstance() interaction.
type Call struct {
	CallerID  string     `yaml:"caller"`
	Action    CallAction `yaml:"action"`
	Timestamp int        `yaml:"at"`
}

// SingletonState tracks the lazily created instance and who asked for it.
type SingletonState struct {
	InstanceExists bool   `yaml:"instance_exists"`
	CallerID       string `yaml:"caller,omitempty"`
	IsCreating     bool   `yaml:"creating"`
	IsReturning    bool   `yaml:"returning"`
	CallHistory    []Call `yaml:"history,omitempty"`
	ResultMessage  string `yaml:"message"`
}

func (SingletonState) Kind() Kind { return KindSingleton }
func (s SingletonState) Message() string { return s.ResultMessage }
func (SingletonState) snapshot() {}

// StrategyState tracks the context object and the strategy plugged into it.
type StrategyState struct {
	CurrentStrategy     string   `yaml:"current,omitempty"`
	AvailableStrategies []string `yaml:"available"`
	IsExecuting         bool     `yaml:"executing"`
	ContextActive       bool     `yaml:"context_active"`
	ResultMessage       string   `yaml:"message"`
}

func (StrategyState) Kind() Kind { return KindStrategy }
func (s StrategyState) Message() string { return s.ResultMessage }
func (StrategyState) snapshot() {}

// AdapterState tracks the pegs and the adapter converting between them.
// Nil pointers mean the object has not been created yet.
type AdapterState struct {
	SquarePegWidth *int   `yaml:"square_peg_width,omitempty"`
	RoundPegRadius *int   `yaml:"round_peg_radius,omitempty"`
	AdapterActive  bool   `yaml:"adapter_active"`
	IsConverting   bool   `yaml:"converting"`
	Fits           *bool  `yaml:"fits,omitempty"`
	ResultMessage  string `yaml:"message"`
}

func (AdapterState) Kind() Kind { return KindAdapter }
func (s AdapterState) Message() string { return s.ResultMessage }
func (AdapterState) snapshot() {}

// BuildStep is one completed call on a builder.
type BuildStep struct {
	Step      string `yaml:"step"`
	Value     string `yaml:"value,omitempty"`
	Completed bool   `yaml:"completed"`
}

// BuilderState tracks the director, the active builder and the product so far.
type BuilderState struct {
	CurrentBuilder    string      `yaml:"builder,omitempty"`
	DirectorActive    bool        `yaml:"director_active"`
	ProductType       string      `yaml:"product_type,omitempty"`
	BuildSteps        []BuildStep `yaml:"build_steps,omitempty"`
	IsProductComplete bool        `yaml:"complete"`
	Product           string      `yaml:"product,omitempty"`
	ResultMessage     string      `yaml:"message"`
}

func (BuilderState) Kind() Kind { return KindBuilder }
func (s BuilderState) Message() string { return s.ResultMessage }
func (BuilderState) snapshot() {}
