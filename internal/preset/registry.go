package preset

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnknown is returned when a preset name is not registered.
var ErrUnknown = errors.New("unknown preset")

// Default preset names.
const (
	Pomodoro   = "pomodoro"
	ShortBreak = "short_break"
	LongBreak  = "long_break"
)

// Preset is a named countdown duration.
type Preset struct {
	Name     string        `yaml:"name"`
	Label    string        `yaml:"label"`
	Duration time.Duration `yaml:"duration"`
}

// Info is the API representation of a preset.
type Info struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	DurationS int    `json:"duration_s"`
}

type file struct {
	Presets []Preset `yaml:"presets"`
}

// Registry holds presets by name.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]Preset
}

// NewRegistry creates an empty preset registry.
func NewRegistry() *Registry {
	return &Registry{
		presets: make(map[string]Preset),
	}
}

// Defaults returns a registry holding the built-in presets.
func Defaults() *Registry {
	r := NewRegistry()
	for _, p := range []Preset{
		{Name: Pomodoro, Label: "Pomodoro", Duration: 25 * time.Minute},
		{Name: ShortBreak, Label: "Short Break", Duration: 5 * time.Minute},
		{Name: LongBreak, Label: "Long Break", Duration: 15 * time.Minute},
	} {
		r.presets[p.Name] = p
	}
	return r
}

// Load reads presets from a YAML file of the form
//
//	presets:
//	  - name: pomodoro
//	    label: Pomodoro
//	    duration: 25m
//
// An empty path returns Defaults.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Defaults(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML presets data.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse presets: %w", err)
	}
	if len(f.Presets) == 0 {
		return nil, errors.New("parse presets: no presets defined")
	}

	r := NewRegistry()
	for _, p := range f.Presets {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds p, replacing any preset of the same name. The label
// defaults to the name.
func (r *Registry) Register(p Preset) error {
	if p.Name == "" {
		return errors.New("preset name is required")
	}
	if p.Duration < time.Second {
		return fmt.Errorf("preset %q: duration must be at least 1s, got %v", p.Name, p.Duration)
	}
	if p.Label == "" {
		p.Label = p.Name
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.presets[p.Name] = p
	return nil
}

// Resolve returns the preset registered under name.
func (r *Registry) Resolve(name string) (Preset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return p, nil
}

// List returns all presets sorted by duration, then name, for a stable API
// response.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	presets := make([]Preset, 0, len(r.presets))
	for _, p := range r.presets {
		presets = append(presets, p)
	}
	sort.Slice(presets, func(i, j int) bool {
		if presets[i].Duration != presets[j].Duration {
			return presets[i].Duration < presets[j].Duration
		}
		return presets[i].Name < presets[j].Name
	})

	infos := make([]Info, len(presets))
	for i, p := range presets {
		infos[i] = Info{Name: p.Name, Label: p.Label, DurationS: int(p.Duration / time.Second)}
	}
	return infos
}
