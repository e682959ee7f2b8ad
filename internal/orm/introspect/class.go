// Package introspect describes entity types through reflection.
//
// It is the reflection provider for the metadata factory: it lists the
// exported methods of a type with their parameter shapes, exposes the
// discriminator declared on polymorphic roots, resolves qualified type
// names and creates default instances used for type probing.
//
// Go has no runtime lookup of types by name, so every type that must be
// resolvable by name (discriminator subclasses, CLI and API lookups) is
// registered in a Registry.
package introspect

import (
	"fmt"
	"reflect"
)

// TypeAsClassName is the discriminator map value meaning "use the type tag as
// the class name".
const TypeAsClassName = "true"

// DiscriminatorMap declares the subclasses of a polymorphic entity family
type DiscriminatorMap struct {
	// Map maps a type tag to a class name or TypeAsClassName
	Map map[string]string `json:"map,omitempty" yaml:"map,omitempty"`
	// SubclassNamespace is the package path tried for unqualified class names.
	// Defaults to the root type's package.
	SubclassNamespace string `json:"subclass_namespace,omitempty" yaml:"subclass_namespace,omitempty"`
	// SubclassSuffix is appended to unqualified class names as a last resort
	SubclassSuffix string `json:"subclass_suffix,omitempty" yaml:"subclass_suffix,omitempty"`
}

// Discriminated is implemented by polymorphic root entities. It is called on
// a zero value of the type.
type Discriminated interface {
	ModelDiscriminatorMap() DiscriminatorMap
}

// Class describes a named struct type
type Class struct {
	// Name is the qualified name: "<import path>.<TypeName>"
	Name string
	// Namespace is the import path of the type's package
	Namespace string
	// Type is the struct type (never a pointer)
	Type reflect.Type
	// Methods holds the exported methods of the pointer method set, sorted by name
	Methods []Method
	// Discriminator is set for polymorphic roots
	Discriminator *DiscriminatorMap
	// Constructor is set when a constructor was registered with the type
	Constructor *Constructor
}

// ShortName returns the unqualified type name
func (c *Class) ShortName() string {
	return c.Type.Name()
}

// Method finds an exported method by name
func (c *Class) Method(name string) (Method, bool) {
	for _, m := range c.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return Method{}, false
}

// RequiredConstructorParams returns the number of arguments the registered
// constructor requires. Types without a constructor need none.
func (c *Class) RequiredConstructorParams() int {
	if c.Constructor == nil {
		return 0
	}
	return c.Constructor.Required
}

// NewInstance creates a default instance of the class. The registered
// constructor is used when present.
func (c *Class) NewInstance() (*Instance, error) {
	if c.Constructor == nil {
		return &Instance{value: reflect.New(c.Type)}, nil
	}
	if c.Constructor.Required > 0 {
		return nil, fmt.Errorf("%w: %s needs %d argument(s)", ErrConstructorArguments, c.Name, c.Constructor.Required)
	}

	out := c.Constructor.fn.Call(nil)
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("constructing %s: %w", c.Name, out[1].Interface().(error))
	}

	v := out[0]
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, fmt.Errorf("constructing %s: constructor returned nil", c.Name)
		}
		return &Instance{value: v}, nil
	}

	ptr := reflect.New(c.Type)
	ptr.Elem().Set(v)
	return &Instance{value: ptr}, nil
}

// Method describes an exported method
type Method struct {
	Name string
	// Class is the qualified name of the declaring type: the embedded type
	// for promoted methods, else the described class
	Class    string
	Params   []Param
	Results  []reflect.Type
	Variadic bool
}

// LastParam returns the last declared parameter
func (m Method) LastParam() (Param, bool) {
	if len(m.Params) == 0 {
		return Param{}, false
	}
	return m.Params[len(m.Params)-1], true
}

// ReturnsError reports whether the last result is the error interface
func (m Method) ReturnsError() bool {
	if len(m.Results) == 0 {
		return false
	}
	return m.Results[len(m.Results)-1] == errorType
}

// Param describes a method parameter
type Param struct {
	Type reflect.Type
	// Container is true for slice and map types
	Container bool
	// ClassName is the qualified name of the struct or interface type the
	// parameter refers to, possibly through pointers
	ClassName string
	// Namespace is the package of ClassName. It is empty for standard
	// library and predeclared types.
	Namespace string
}

// NamesClass reports whether the parameter type refers to a named struct or interface
func (p Param) NamesClass() bool {
	return p.ClassName != ""
}

// Constructor is a registered constructor function
type Constructor struct {
	fn reflect.Value
	// Required is the number of non-variadic parameters
	Required int
}

// Instance is an addressable instance of a class
type Instance struct {
	value reflect.Value
}

// Value returns the pointer to the instance
func (i *Instance) Value() reflect.Value {
	return i.value
}

// Interface returns the pointer to the instance as an interface value
func (i *Instance) Interface() any {
	return i.value.Interface()
}

// Method returns the bound method with the given name
func (i *Instance) Method(name string) (reflect.Value, bool) {
	m := i.value.MethodByName(name)
	return m, m.IsValid()
}
