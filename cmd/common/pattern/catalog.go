package pattern

import (
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/samber/lo"
)

//go:embed data/*.yaml
var dataFS embed.FS

var (
	ErrUnknownPattern = errors.New("unknown pattern")
	ErrNotImplemented = errors.New("pattern has no animation yet")
)

// Entry is one row of the pattern catalog.
type Entry struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Icon        string   `json:"icon"`
	Implemented bool     `json:"implemented"`
}

var catalog = []Entry{
	{ID: "singleton", Name: "Singleton", Category: Creational, Icon: "🔮", Implemented: true},
	{ID: "factory-method", Name: "Factory Method", Category: Creational, Icon: "🏭"},
	{ID: "abstract-factory", Name: "Abstract Factory", Category: Creational, Icon: "🧰"},
	{ID: "builder", Name: "Builder", Category: Creational, Icon: "🔨", Implemented: true},
	{ID: "prototype", Name: "Prototype", Category: Creational, Icon: "🧬"},

	{ID: "adapter", Name: "Adapter", Category: Structural, Icon: "🔌", Implemented: true},
	{ID: "bridge", Name: "Bridge", Category: Structural, Icon: "🌉"},
	{ID: "composite", Name: "Composite", Category: Structural, Icon: "🧩"},
	{ID: "decorator", Name: "Decorator", Category: Structural, Icon: "🎀"},
	{ID: "facade", Name: "Facade", Category: Structural, Icon: "🏛"},
	{ID: "flyweight", Name: "Flyweight", Category: Structural, Icon: "🪶"},
	{ID: "proxy", Name: "Proxy", Category: Structural, Icon: "🪞"},

	{ID: "strategy", Name: "Strategy", Category: Behavioral, Icon: "♟️", Implemented: true},
	{ID: "observer", Name: "Observer", Category: Behavioral, Icon: "👀"},
	{ID: "command", Name: "Command", Category: Behavioral, Icon: "⌨"},
	{ID: "state", Name: "State", Category: Behavioral, Icon: "🔄"},
	{ID: "template-method", Name: "Template Method", Category: Behavioral, Icon: "📐"},
	{ID: "chain-of-responsibility", Name: "Chain of Responsibility", Category: Behavioral, Icon: "⛓"},
	{ID: "mediator", Name: "Mediator", Category: Behavioral, Icon: "🤝"},
	{ID: "memento", Name: "Memento", Category: Behavioral, Icon: "💾"},
	{ID: "interpreter", Name: "Interpreter", Category: Behavioral, Icon: "🗣"},
	{ID: "iterator", Name: "Iterator", Category: Behavioral, Icon: "🔁"},
	{ID: "visitor", Name: "Visitor", Category: Behavioral, Icon: "🧳"},
}

var defaultByCategory = map[Category]string{
	Creational: "singleton",
	Structural: "adapter",
	Behavioral: "strategy",
}

// Catalog returns every known pattern, implemented or not, in display order.
func Catalog() []Entry {
	return append([]Entry(nil), catalog...)
}

// ByCategory returns the catalog entries of one category.
func ByCategory(c Category) []Entry {
	return lo.Filter(catalog, func(e Entry, _ int) bool {
		return e.Category == c
	})
}

// Implemented returns the entries that have a playable dataset.
func Implemented() []Entry {
	return lo.Filter(catalog, func(e Entry, _ int) bool {
		return e.Implemented
	})
}

// Lookup finds a catalog entry by id.
func Lookup(id string) (Entry, bool) {
	return lo.Find(catalog, func(e Entry) bool {
		return e.ID == id
	})
}

// DefaultFor returns the pattern opened when a category is selected.
func DefaultFor(c Category) string {
	return defaultByCategory[c]
}

var (
	loadMu sync.Mutex
	loaded = map[string]*Dataset{}
)

// Load returns the parsed, validated embedded dataset for id. Datasets are
// parsed once and shared; callers must not mutate them.
func Load(id string) (*Dataset, error) {
	entry, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, id)
	}
	if !entry.Implemented {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, entry.Name)
	}

	loadMu.Lock()
	defer loadMu.Unlock()

	if ds, ok := loaded[id]; ok {
		return ds, nil
	}

	data, err := Raw(id)
	if err != nil {
		return nil, err
	}
	ds, err := ParseAndValidate(data)
	if err != nil {
		return nil, err
	}
	loaded[id] = ds
	return ds, nil
}

// LoadAll loads every implemented dataset in catalog order.
func LoadAll() ([]*Dataset, error) {
	var out []*Dataset
	for _, e := range Implemented() {
		ds, err := Load(e.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ds)
	}
	return out, nil
}

// Raw returns the embedded YAML source of a dataset.
func Raw(id string) ([]byte, error) {
	entry, ok := Lookup(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPattern, id)
	}
	if !entry.Implemented {
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, entry.Name)
	}
	data, err := dataFS.ReadFile("data/" + id + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded dataset %s: %w", id, err)
	}
	return data, nil
}
