package introspect

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry resolves class names to types. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	classes   map[string]*registration
	short     map[string][]string
	overrides map[string]DiscriminatorMap
}

type registration struct {
	typ  reflect.Type
	ctor *Constructor
}

// Option configures a registration
type Option func(t reflect.Type, r *registration) error

// WithConstructor registers the function used to create default instances.
// It must return T or *T, optionally followed by an error.
func WithConstructor(fn any) Option {
	return func(t reflect.Type, r *registration) error {
		ctor, err := newConstructor(t, fn)
		if err != nil {
			return err
		}
		r.ctor = ctor
		return nil
	}
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		classes:   make(map[string]*registration),
		short:     make(map[string][]string),
		overrides: make(map[string]DiscriminatorMap),
	}
}

// Register registers an entity type. The entity may be a value, a pointer
// or a reflect.Type.
func (r *Registry) Register(entity any, opts ...Option) error {
	t, err := structType(entity)
	if err != nil {
		return err
	}

	reg := &registration{typ: t}
	for _, opt := range opts {
		if err := opt(t, reg); err != nil {
			return fmt.Errorf("registering %s: %w", QualifiedName(t), err)
		}
	}

	name := QualifiedName(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, name)
	}
	r.classes[name] = reg
	r.short[t.Name()] = append(r.short[t.Name()], name)

	return nil
}

// MustRegister is like Register but panics on error
func (r *Registry) MustRegister(entity any, opts ...Option) {
	if err := r.Register(entity, opts...); err != nil {
		panic(err)
	}
}

// SetDiscriminator overrides the discriminator declared by a registered class
func (r *Registry) SetDiscriminator(name string, d DiscriminatorMap) error {
	qualified, err := r.lookupName(name)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides[qualified] = d
	return nil
}

// Resolve returns the class registered under a qualified name
func (r *Registry) Resolve(name string) (*Class, bool) {
	r.mu.RLock()
	reg, ok := r.classes[name]
	var override *DiscriminatorMap
	if d, has := r.overrides[name]; has {
		override = &d
	}
	r.mu.RUnlock()

	if !ok {
		return nil, false
	}
	return describe(reg.typ, reg.ctor, override), true
}

// Find resolves a qualified name or an unambiguous short type name
func (r *Registry) Find(name string) (*Class, error) {
	qualified, err := r.lookupName(name)
	if err != nil {
		return nil, err
	}
	class, _ := r.Resolve(qualified)
	return class, nil
}

// Describe returns the class for a reference: a qualified or short class
// name, a reflect.Type, or a value or pointer of the type. Types that were
// never registered are described without a constructor.
func (r *Registry) Describe(ref any) (*Class, error) {
	if name, ok := ref.(string); ok {
		return r.Find(name)
	}

	t, err := structType(ref)
	if err != nil {
		return nil, err
	}
	if class, ok := r.Resolve(QualifiedName(t)); ok && class.Type == t {
		return class, nil
	}
	return describe(t, nil, nil), nil
}

// Exists reports whether a qualified class name is registered
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.classes[name]
	return ok
}

// Names returns all registered qualified names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.classes))
	for name := range r.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered classes
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.classes)
}

func (r *Registry) lookupName(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.classes[name]; ok {
		return name, nil
	}

	switch candidates := r.short[name]; len(candidates) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrUnknownClass, name)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("%w: %s matches %v", ErrAmbiguousName, name, candidates)
	}
}
