package dispatch

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Handler runs one command invocation. It must reply through ix.Response.
type Handler func(ctx context.Context, ix *Interaction) error

type ParamType int

const (
	ParamString ParamType = iota + 1
	ParamInteger
	ParamBoolean
	ParamUser
)

func (t ParamType) String() string {
	switch t {
	case ParamString:
		return "string"
	case ParamInteger:
		return "integer"
	case ParamBoolean:
		return "boolean"
	case ParamUser:
		return "user"
	}
	return fmt.Sprintf("ParamType(%d)", int(t))
}

// Param is one typed command option. Default applies only when Required is
// false. MinValue/MaxValue bound integers; MaxLength bounds strings (0 = none).
type Param struct {
	Name        string
	Description string
	Type        ParamType
	Required    bool
	Default     any
	MinValue    *int64
	MaxValue    *int64
	MaxLength   int
}

// Descriptor is the immutable declaration of a command.
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
	Requires    Capability
	Handler     Handler
}

// Registry holds descriptors by name. Writes happen at startup only; after
// Freeze it is read-only and safe for concurrent lookups.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Descriptor
	frozen   bool
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Descriptor)}
}

func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" || d.Handler == nil {
		return fmt.Errorf("%w: name and handler are required", ErrInvalidDescriptor)
	}
	seen := make(map[string]struct{}, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("%w: /%s has an unnamed parameter", ErrInvalidDescriptor, d.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: /%s declares %q twice", ErrInvalidDescriptor, d.Name, p.Name)
		}
		seen[p.Name] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrRegistryFrozen
	}
	if _, ok := r.commands[d.Name]; ok {
		return fmt.Errorf("%w: /%s", ErrDuplicateCommand, d.Name)
	}
	d.Params = append([]Param(nil), d.Params...)
	r.commands[d.Name] = &d
	return nil
}

// MustRegister panics on error; for wiring code at startup.
func (r *Registry) MustRegister(ds ...Descriptor) {
	for _, d := range ds {
		if err := r.Register(d); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Resolve(name string) (*Descriptor, error) {
	r.mu.RLock()
	d, ok := r.commands[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: /%s", ErrCommandNotFound, name)
	}
	return d, nil
}

// All returns every descriptor sorted by name.
func (r *Registry) All() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*Descriptor, 0, len(r.commands))
	for _, d := range r.commands {
		list = append(list, d)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}
