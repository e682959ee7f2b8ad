package introspect

import (
	"errors"
	"reflect"
	"runtime/debug"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type account struct{}

type Account struct {
	name    string
	owner   *Account
	created time.Time
}

func (a *Account) GetName() string            { return a.name }
func (a *Account) SetName(name string)        { a.name = name }
func (a *Account) SetOwner(owner *Account)    { a.owner = owner }
func (a *Account) SetCreated(t time.Time)     { a.created = t }
func (a *Account) SetTags(tags []string)      {}
func (a *Account) SetLabels(map[string]int)   {}
func (a *Account) SetFailure(err error)       {}
func (a *Account) AddEntry(key string, v int) {}
func (a *Account) Validate() error            { return nil }
func (a *Account) unexported()                {}

type Ledger struct {
	Account
	balance float64
}

func (l *Ledger) ModelDiscriminatorMap() DiscriminatorMap {
	return DiscriminatorMap{Map: map[string]string{"savings": TypeAsClassName}}
}

type Stamp struct{ at time.Time }

func (s *Stamp) GetAt() time.Time  { return s.at }
func (s Stamp) GetZone() string   { return "UTC" }
func (s *Stamp) GetLabel() string { return "stamp" }

type Named interface{ GetTitle() string }

type Entry struct {
	*Stamp
	Named
}

func (e Entry) GetLabel() string { return "entry" }

type Counter struct {
	start int
}

func NewCounter() *Counter { return &Counter{start: 7} }

func NewCounterFrom(start int) Counter { return Counter{start: start} }

func NewCounterVariadic(starts ...int) (*Counter, error) { return &Counter{}, nil }

func NewFailingCounter() (*Counter, error) { return nil, errors.New("boom") }

func TestRegistry_RegisterAndResolve(t *testing.T) {
	t.Run("register value pointer and type", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(Account{}))
		require.NoError(t, r.Register(&Ledger{}))
		require.NoError(t, r.Register(reflect.TypeOf(Counter{})))

		assert.Equal(t, 3, r.Count())
		assert.True(t, r.Exists(QualifiedName(reflect.TypeOf(Account{}))))
	})

	t.Run("duplicate registration", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(Account{}))

		err := r.Register(&Account{})
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("rejects non struct types", func(t *testing.T) {
		r := NewRegistry()

		assert.ErrorIs(t, r.Register(42), ErrNotAStruct)
		assert.ErrorIs(t, r.Register(struct{ A int }{}), ErrNotAStruct)
		assert.ErrorIs(t, r.Register(nil), ErrNotAStruct)
	})

	t.Run("resolve by qualified name only", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(Account{})

		name := QualifiedName(reflect.TypeOf(Account{}))
		class, ok := r.Resolve(name)
		require.True(t, ok)
		assert.Equal(t, name, class.Name)
		assert.Equal(t, "Account", class.ShortName())
		assert.Equal(t, reflect.TypeOf(Account{}).PkgPath(), class.Namespace)

		_, ok = r.Resolve("Account")
		assert.False(t, ok)
	})

	t.Run("find by short name", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(Account{})

		class, err := r.Find("Account")
		require.NoError(t, err)
		assert.Equal(t, reflect.TypeOf(Account{}), class.Type)

		_, err = r.Find("Missing")
		assert.ErrorIs(t, err, ErrUnknownClass)
	})

	t.Run("names are sorted", func(t *testing.T) {
		r := NewRegistry()
		r.MustRegister(Ledger{})
		r.MustRegister(Account{})

		names := r.Names()
		require.Len(t, names, 2)
		assert.Less(t, names[0], names[1])
	})
}

func TestRegistry_Describe(t *testing.T) {
	r := NewRegistry()

	class, err := r.Describe(&Account{})
	require.NoError(t, err)

	t.Run("lists exported methods only", func(t *testing.T) {
		names := make([]string, 0, len(class.Methods))
		for _, m := range class.Methods {
			names = append(names, m.Name)
		}
		assert.Contains(t, names, "GetName")
		assert.Contains(t, names, "Validate")
		assert.NotContains(t, names, "unexported")
	})

	t.Run("parameter shapes", func(t *testing.T) {
		setOwner, ok := class.Method("SetOwner")
		require.True(t, ok)
		require.Len(t, setOwner.Params, 1)
		assert.True(t, setOwner.Params[0].NamesClass())
		assert.Equal(t, class.Name, setOwner.Params[0].ClassName)
		assert.Equal(t, class.Namespace, setOwner.Params[0].Namespace)
		assert.False(t, setOwner.Params[0].Container)

		setCreated, _ := class.Method("SetCreated")
		assert.Equal(t, "time.Time", setCreated.Params[0].ClassName)
		assert.Empty(t, setCreated.Params[0].Namespace)

		setTags, _ := class.Method("SetTags")
		assert.True(t, setTags.Params[0].Container)
		assert.False(t, setTags.Params[0].NamesClass())

		setLabels, _ := class.Method("SetLabels")
		assert.True(t, setLabels.Params[0].Container)

		setFailure, _ := class.Method("SetFailure")
		assert.Equal(t, "error", setFailure.Params[0].ClassName)
		assert.Empty(t, setFailure.Params[0].Namespace)

		addEntry, _ := class.Method("AddEntry")
		last, ok := addEntry.LastParam()
		require.True(t, ok)
		assert.Equal(t, reflect.TypeOf(0), last.Type)

		validate, _ := class.Method("Validate")
		assert.True(t, validate.ReturnsError())
		_, ok = validate.LastParam()
		assert.False(t, ok)
	})

	t.Run("promoted methods keep their declaring type", func(t *testing.T) {
		ledger, err := r.Describe(Ledger{})
		require.NoError(t, err)

		m, ok := ledger.Method("GetName")
		require.True(t, ok)
		assert.Equal(t, class.Name, m.Class)

		m, ok = ledger.Method("ModelDiscriminatorMap")
		require.True(t, ok)
		assert.Equal(t, ledger.Name, m.Class)
	})

	t.Run("discriminator from the type", func(t *testing.T) {
		ledger, err := r.Describe(Ledger{})
		require.NoError(t, err)
		require.NotNil(t, ledger.Discriminator)
		assert.Equal(t, TypeAsClassName, ledger.Discriminator.Map["savings"])
		assert.Nil(t, class.Discriminator)
	})

	t.Run("unknown string reference", func(t *testing.T) {
		_, err := r.Describe("example.com/nope.Thing")
		assert.ErrorIs(t, err, ErrUnknownClass)
	})
}

func TestDescribe_DeclaringType(t *testing.T) {
	class, err := NewRegistry().Describe(Entry{})
	require.NoError(t, err)

	stamp := QualifiedName(reflect.TypeOf(Stamp{}))
	tests := []struct {
		method string
		want   string
	}{
		{"GetAt", stamp},         // promoted through an embedded pointer
		{"GetZone", stamp},       // promoted value receiver
		{"GetLabel", class.Name}, // declared on both, the outer one wins
		{"GetTitle", QualifiedName(reflect.TypeOf((*Named)(nil)).Elem())},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			m, ok := class.Method(tt.method)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.Class)
		})
	}
}

func TestRegistry_SetDiscriminator(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Ledger{})

	require.NoError(t, r.SetDiscriminator("Ledger", DiscriminatorMap{SubclassSuffix: "Ledger"}))

	class, err := r.Find("Ledger")
	require.NoError(t, err)
	require.NotNil(t, class.Discriminator)
	assert.Nil(t, class.Discriminator.Map)
	assert.Equal(t, "Ledger", class.Discriminator.SubclassSuffix)

	assert.ErrorIs(t, r.SetDiscriminator("Nope", DiscriminatorMap{}), ErrUnknownClass)
}

func TestClass_NewInstance(t *testing.T) {
	tests := []struct {
		name      string
		ctor      any
		required  int
		wantStart int
		wantErr   error
	}{
		{name: "pointer constructor", ctor: NewCounter, wantStart: 7},
		{name: "value constructor with argument", ctor: NewCounterFrom, required: 1, wantErr: ErrConstructorArguments},
		{name: "variadic constructor", ctor: NewCounterVariadic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry()
			require.NoError(t, r.Register(Counter{}, WithConstructor(tt.ctor)))

			class, err := r.Find("Counter")
			require.NoError(t, err)
			assert.Equal(t, tt.required, class.RequiredConstructorParams())

			inst, err := class.NewInstance()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStart, inst.Interface().(*Counter).start)
		})
	}

	t.Run("constructor error", func(t *testing.T) {
		r := NewRegistry()
		require.NoError(t, r.Register(Counter{}, WithConstructor(NewFailingCounter)))

		class, _ := r.Find("Counter")
		_, err := class.NewInstance()
		assert.EqualError(t, err, "constructing "+class.Name+": boom")
	})

	t.Run("zero value without constructor", func(t *testing.T) {
		class, err := NewRegistry().Describe(Account{})
		require.NoError(t, err)
		assert.Zero(t, class.RequiredConstructorParams())

		inst, err := class.NewInstance()
		require.NoError(t, err)

		m, ok := inst.Method("SetName")
		require.True(t, ok)
		m.Call([]reflect.Value{reflect.ValueOf("x")})
		assert.Equal(t, "x", inst.Interface().(*Account).GetName())
	})
}

func TestWithConstructor_Invalid(t *testing.T) {
	r := NewRegistry()

	for _, ctor := range []any{42, func() {}, func() *Account { return nil }, func() (*Counter, int) { return nil, 0 }} {
		err := r.Register(Counter{}, WithConstructor(ctor))
		assert.ErrorIs(t, err, ErrInvalidConstructor)
	}
}

func TestNames(t *testing.T) {
	t.Run("standard library detection", func(t *testing.T) {
		assert.True(t, IsStandardLibrary("time"))
		assert.True(t, IsStandardLibrary("net/http"))
		assert.True(t, IsStandardLibrary(""))
		assert.False(t, IsStandardLibrary("github.com/google/uuid"))
	})

	t.Run("dotless user packages", func(t *testing.T) {
		assert.False(t, IsStandardLibrary("main"))
		assert.False(t, IsStandardLibrary("shop"))
		assert.False(t, IsStandardLibrary("shop/catalog"))
	})

	t.Run("path shape without a GOROOT", func(t *testing.T) {
		info := &debug.BuildInfo{
			Main: debug.Module{Path: "shop"},
			Deps: []*debug.Module{{Path: "tools"}},
		}

		assert.True(t, standardPathShape("time", info))
		assert.True(t, standardPathShape("encoding/json", info))
		assert.True(t, standardPathShape("shopping", info))
		assert.False(t, standardPathShape("shop", info))
		assert.False(t, standardPathShape("shop/catalog", info))
		assert.False(t, standardPathShape("tools/lint", info))
		assert.False(t, standardPathShape("main", info))
		assert.False(t, standardPathShape("github.com/google/uuid", nil))
		assert.True(t, standardPathShape("time", nil))
	})

	t.Run("split qualified name", func(t *testing.T) {
		pkg, name := SplitQualifiedName("github.com/acme/shop/catalog.Circle")
		assert.Equal(t, "github.com/acme/shop/catalog", pkg)
		assert.Equal(t, "Circle", name)

		pkg, name = SplitQualifiedName("Circle")
		assert.Empty(t, pkg)
		assert.Equal(t, "Circle", name)
	})

	t.Run("name of references", func(t *testing.T) {
		name, err := NameOf(&Account{})
		require.NoError(t, err)
		assert.Equal(t, QualifiedName(reflect.TypeOf(Account{})), name)

		name, err = NameOf("anything")
		require.NoError(t, err)
		assert.Equal(t, "anything", name)

		_, err = NameOf(account{})
		assert.NoError(t, err)

		_, err = NameOf([]int{})
		assert.ErrorIs(t, err, ErrNotAStruct)
	})
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(Account{})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Find("Account")
			assert.NoError(t, err)
			_ = r.Names()
		}()
	}
	wg.Wait()
}
