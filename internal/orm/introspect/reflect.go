package introspect

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

var (
	errorType         = reflect.TypeOf((*error)(nil)).Elem()
	discriminatedType = reflect.TypeOf((*Discriminated)(nil)).Elem()
)

// QualifiedName returns "<import path>.<TypeName>" for named types and the
// bare name for predeclared ones
func QualifiedName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

// SplitQualifiedName splits a qualified name into package path and type name
func SplitQualifiedName(name string) (pkg, typeName string) {
	slash := strings.LastIndex(name, "/")
	dot := strings.LastIndex(name, ".")
	if dot <= slash {
		return "", name
	}
	return name[:dot], name[dot+1:]
}

// NameOf returns the qualified class name of a reference. Strings are
// returned as-is.
func NameOf(ref any) (string, error) {
	if name, ok := ref.(string); ok {
		return name, nil
	}
	t, err := structType(ref)
	if err != nil {
		return "", err
	}
	return QualifiedName(t), nil
}

// structType normalizes a value, pointer or reflect.Type to a named struct type
func structType(ref any) (reflect.Type, error) {
	if ref == nil {
		return nil, fmt.Errorf("%w: nil reference", ErrNotAStruct)
	}

	t, ok := ref.(reflect.Type)
	if !ok {
		t = reflect.TypeOf(ref)
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t.Kind() != reflect.Struct || t.Name() == "" {
		return nil, fmt.Errorf("%w: got %s", ErrNotAStruct, t)
	}
	return t, nil
}

// describe builds a Class from a struct type
func describe(t reflect.Type, ctor *Constructor, override *DiscriminatorMap) *Class {
	class := &Class{
		Name:        QualifiedName(t),
		Namespace:   t.PkgPath(),
		Type:        t,
		Constructor: ctor,
	}

	pt := reflect.PointerTo(t)
	class.Methods = make([]Method, 0, pt.NumMethod())
	for i := 0; i < pt.NumMethod(); i++ {
		m := pt.Method(i)
		class.Methods = append(class.Methods, describeMethod(QualifiedName(declaringType(t, m.Name)), m))
	}

	switch {
	case override != nil:
		d := *override
		class.Discriminator = &d
	case pt.Implements(discriminatedType):
		d := reflect.New(t).Interface().(Discriminated).ModelDiscriminatorMap()
		class.Discriminator = &d
	}

	return class
}

// declaringType returns the type that declares a method of t, following
// embedded fields for promoted methods. Methods declared on t shadow the
// embedded ones, and are told apart by their compiler-generated wrappers.
func declaringType(t reflect.Type, name string) reflect.Type {
	if declares(t, name) {
		return t
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.Anonymous {
			continue
		}
		ft := field.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		switch ft.Kind() {
		case reflect.Interface:
			if _, ok := ft.MethodByName(name); ok {
				return ft
			}
		case reflect.Struct:
			if _, ok := reflect.PointerTo(ft).MethodByName(name); ok {
				return declaringType(ft, name)
			}
		}
	}

	return t
}

// declares reports whether t itself declares the method, with a value or a
// pointer receiver
func declares(t reflect.Type, name string) bool {
	for _, candidate := range []reflect.Type{t, reflect.PointerTo(t)} {
		m, ok := candidate.MethodByName(name)
		if !ok {
			continue
		}
		pc := m.Func.Pointer()
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			return true
		}
		if file, _ := fn.FileLine(pc); file != "<autogenerated>" {
			return true
		}
	}
	return false
}

func describeMethod(className string, m reflect.Method) Method {
	mt := m.Type
	method := Method{
		Name:     m.Name,
		Class:    className,
		Variadic: mt.IsVariadic(),
	}

	// In(0) is the receiver
	for i := 1; i < mt.NumIn(); i++ {
		method.Params = append(method.Params, describeParam(mt.In(i)))
	}
	for i := 0; i < mt.NumOut(); i++ {
		method.Results = append(method.Results, mt.Out(i))
	}

	return method
}

func describeParam(t reflect.Type) Param {
	p := Param{Type: t}

	switch t.Kind() {
	case reflect.Slice, reflect.Map:
		p.Container = true
	}

	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}

	if base.Name() != "" && (base.Kind() == reflect.Struct || base.Kind() == reflect.Interface) {
		p.ClassName = QualifiedName(base)
		if !IsStandardLibrary(base.PkgPath()) {
			p.Namespace = base.PkgPath()
		}
	}

	return p
}

func newConstructor(t reflect.Type, fn any) (*Constructor, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return nil, fmt.Errorf("%w: %T is not a function", ErrInvalidConstructor, fn)
	}

	ft := v.Type()
	if ft.NumOut() == 0 || ft.NumOut() > 2 {
		return nil, fmt.Errorf("%w: must return %s or *%s, optionally with an error", ErrInvalidConstructor, t.Name(), t.Name())
	}
	if ft.NumOut() == 2 && ft.Out(1) != errorType {
		return nil, fmt.Errorf("%w: second result must be error", ErrInvalidConstructor)
	}

	out := ft.Out(0)
	if out != t && out != reflect.PointerTo(t) {
		return nil, fmt.Errorf("%w: returns %s, want %s", ErrInvalidConstructor, out, t)
	}

	required := ft.NumIn()
	if ft.IsVariadic() {
		required--
	}

	return &Constructor{fn: v, Required: required}, nil
}
