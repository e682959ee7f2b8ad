// Package metadata builds field metadata for entity types from their
// accessor methods.
//
// A property is discovered from an exported GetX, SetX or AddX method. A
// property needs both a getter and a setter to be emitted. Properties whose
// value type is another entity are relationships and are left out. The
// storage type of the remaining properties comes from the setter signature
// when it is a collection, and otherwise from probing: sample values are
// written through the setter of a fresh instance and read back through the
// getter.
package metadata

import (
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
	"github.com/conduit-lang/entitymeta/internal/util/strings"
)

// Factory creates entity metadata
type Factory interface {
	// CreateMetadata builds the metadata of an entity. ref is a qualified
	// class name, a reflect.Type, or a value or pointer of the entity type.
	CreateMetadata(ref any) (*EntityMetadata, error)
	// CreateEmptyMetadata returns a container with no entity and no fields
	CreateEmptyMetadata() *EntityMetadata
}

// ClassProvider describes entity types and resolves class names
type ClassProvider interface {
	Describe(ref any) (*introspect.Class, error)
	Resolve(name string) (*introspect.Class, bool)
}

// NameConverter converts identifier casing
type NameConverter interface {
	ToSnakeCase(s string) string
	ToStudlyCase(s string) string
}

// AccessorFactory is the Factory built on accessor introspection. It keeps
// no state between calls and is safe for concurrent use.
type AccessorFactory struct {
	classes ClassProvider
	names   NameConverter
	logger  *zap.Logger
	now     func() time.Time
}

// FactoryOption configures an AccessorFactory
type FactoryOption func(*AccessorFactory)

// WithLogger sets the logger used for debug output
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *AccessorFactory) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithNameConverter replaces the default case converter
func WithNameConverter(names NameConverter) FactoryOption {
	return func(f *AccessorFactory) {
		f.names = names
	}
}

// WithClock sets the clock that produces the datetime probe value
func WithClock(now func() time.Time) FactoryOption {
	return func(f *AccessorFactory) {
		f.now = now
	}
}

// NewFactory creates an AccessorFactory over a class provider
func NewFactory(classes ClassProvider, opts ...FactoryOption) *AccessorFactory {
	f := &AccessorFactory{
		classes: classes,
		names:   strings.Converter{},
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Classes returns the class provider the factory describes entities with
func (f *AccessorFactory) Classes() ClassProvider {
	return f.classes
}

// CreateEmptyMetadata implements Factory
func (f *AccessorFactory) CreateEmptyMetadata() *EntityMetadata {
	return NewEntityMetadata("")
}

// CreateMetadata implements Factory
func (f *AccessorFactory) CreateMetadata(ref any) (*EntityMetadata, error) {
	class, err := f.classes.Describe(ref)
	if err != nil {
		return nil, err
	}

	log := f.logger.With(zap.String("entity", class.Name))
	log.Debug("scanning entity", zap.Int("methods", len(class.Methods)))

	reg := newRegistries()
	if err := f.scanMethods(reg, class, false, log); err != nil {
		return nil, err
	}

	meta := NewEntityMetadata(class.Name)
	if err := f.resolveProperties(reg, meta, log); err != nil {
		return nil, err
	}

	log.Debug("metadata created", zap.Int("fields", meta.Count()))
	return meta, nil
}

// registries is the call-local state of one CreateMetadata call
type registries struct {
	getters map[string]introspect.Method
	setters map[string]introspect.Method
	adders  map[string]introspect.Method
	owners  map[string]*introspect.Class
}

func newRegistries() *registries {
	return &registries{
		getters: make(map[string]introspect.Method),
		setters: make(map[string]introspect.Method),
		adders:  make(map[string]introspect.Method),
		owners:  make(map[string]*introspect.Class),
	}
}
