package metadata

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
)

type sample struct {
	fieldType FieldType
	value     any
}

// outcome of writing a sample through a setter
type outcome int

const (
	rejected outcome = iota
	applied
)

func scalarBattery() []sample {
	return []sample{
		{TypeBoolean, true},
		{TypeInteger, 46},
		{TypeFloat, 23.653},
		{TypeString, "test"},
	}
}

func (f *AccessorFactory) complexBattery() []sample {
	return []sample{
		{TypeDatetime, f.now()},
		{TypeArray, []int{1, 2, 3}},
	}
}

// detectPropertyType probes the storage type of a property by writing each
// sample to a fresh instance of the owner and reading it back
func (f *AccessorFactory) detectPropertyType(owner *introspect.Class, setter, getter introspect.Method, log *zap.Logger) (FieldType, error) {
	if n := owner.RequiredConstructorParams(); n > 0 {
		return "", newError(owner.Name, ErrConstructorArguments, "constructor requires %d argument(s)", n)
	}

	instance, err := owner.NewInstance()
	if err != nil {
		return "", newError(owner.Name, ErrConstructorArguments, "%v", err)
	}

	matches := f.probe(instance, setter.Name, getter.Name, scalarBattery())
	if len(matches) == 0 {
		matches = f.probe(instance, setter.Name, getter.Name, f.complexBattery())
	}

	detected := disambiguate(matches)
	log.Debug("probed property",
		zap.String("setter", setter.Name),
		zap.Any("matches", matches),
		zap.String("type", string(detected)))

	return detected, nil
}

func (f *AccessorFactory) probe(instance *introspect.Instance, setterName, getterName string, battery []sample) []FieldType {
	var matches []FieldType
	for _, s := range battery {
		result, stored := tryApply(instance, setterName, s.value)
		if result != applied {
			continue
		}
		if roundTrips(instance, getterName, stored) {
			matches = append(matches, s.fieldType)
		}
	}
	return matches
}

func disambiguate(matches []FieldType) FieldType {
	switch {
	case len(matches) == 1:
		return matches[0]
	case len(matches) == 2 && matches[0] == TypeInteger && matches[1] == TypeFloat:
		return TypeFloat
	default:
		return TypeString
	}
}

// tryApply calls a one-argument setter with value and returns the value as
// passed, after conversion and without pointer indirection. The setter
// rejects the value when it cannot be passed, when the call panics, or when
// it returns a non-nil error.
func tryApply(instance *introspect.Instance, setterName string, value any) (result outcome, stored any) {
	method, ok := instance.Method(setterName)
	if !ok {
		return rejected, nil
	}

	mt := method.Type()
	if mt.NumIn() != 1 || mt.IsVariadic() {
		return rejected, nil
	}

	arg, ok := argumentFor(mt.In(0), value)
	if !ok {
		return rejected, nil
	}

	stored = value
	if base := indirect(arg); base.Kind() != reflect.Interface {
		stored = base.Interface()
	}

	defer func() {
		if recover() != nil {
			result, stored = rejected, nil
		}
	}()

	out := method.Call([]reflect.Value{arg})
	if err := trailingError(out); err != nil {
		return rejected, nil
	}
	return applied, stored
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

// argumentFor adapts a sample value to a parameter type. Values convert
// within their scalar family only, so 46 reaches an int64 parameter but
// never a float64 or string one.
func argumentFor(param reflect.Type, value any) (reflect.Value, bool) {
	v := reflect.ValueOf(value)

	if v.Type().AssignableTo(param) {
		arg := reflect.New(param).Elem()
		arg.Set(v)
		return arg, true
	}

	if param.Kind() == reflect.Pointer {
		elem, ok := argumentFor(param.Elem(), value)
		if !ok {
			return reflect.Value{}, false
		}
		ptr := reflect.New(param.Elem())
		ptr.Elem().Set(elem)
		return ptr, true
	}

	if family(v.Kind()) != "" && family(v.Kind()) == family(param.Kind()) {
		return v.Convert(param), true
	}

	return reflect.Value{}, false
}

func family(k reflect.Kind) string {
	switch k {
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "int"
	case reflect.Float32, reflect.Float64:
		return "float"
	case reflect.String:
		return "string"
	}
	return ""
}

// roundTrips reads the property back and compares it strictly with the
// written value: same dynamic type and deeply equal. Interfaces and
// pointers in the result are followed.
func roundTrips(instance *introspect.Instance, getterName string, want any) (ok bool) {
	method, found := instance.Method(getterName)
	if !found {
		return false
	}

	mt := method.Type()
	if mt.NumIn() != 0 || mt.NumOut() == 0 {
		return false
	}

	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	out := method.Call(nil)
	if err := trailingError(out); err != nil {
		return false
	}

	got := out[0]
	for got.Kind() == reflect.Interface || got.Kind() == reflect.Pointer {
		if got.IsNil() {
			return false
		}
		got = got.Elem()
	}

	if got.Type() != reflect.TypeOf(want) {
		return false
	}
	return reflect.DeepEqual(got.Interface(), want)
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

func trailingError(out []reflect.Value) error {
	if len(out) == 0 {
		return nil
	}
	last := out[len(out)-1]
	if last.Type() != errorType || last.IsNil() {
		return nil
	}
	return fmt.Errorf("call failed: %w", last.Interface().(error))
}
