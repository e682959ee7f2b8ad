package metadata

import (
	"errors"
	"time"

	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
)

type Maker struct{ name string }

type Part struct{ sku string }

type Status string

type Product struct {
	active     bool
	stock      int
	price      float64
	name       string
	weight     int64
	level      uint8
	ratio      float32
	status     Status
	nick       *string
	created    time.Time
	measuredAt time.Time
	tags       []string
	scores     map[*Maker]int
	parts      []*Part
	maker      *Maker
}

func (p *Product) GetActive() bool { return p.active }
func (p *Product) SetActive(v bool) { p.active = v }
func (p *Product) GetStock() int { return p.stock }
func (p *Product) SetStock(v int) { p.stock = v }
func (p *Product) GetPrice() float64 { return p.price }
func (p *Product) SetPrice(v float64) { p.price = v }
func (p *Product) GetName() string { return p.name }
func (p *Product) SetName(v string) { p.name = v }
func (p *Product) GetWeight() int64 { return p.weight }
func (p *Product) SetWeight(v int64) { p.weight = v }
func (p *Product) GetLevel() uint8 { return p.level }
func (p *Product) SetLevel(v uint8) { p.level = v }
func (p *Product) GetRatio() float32 { return p.ratio }
func (p *Product) SetRatio(v float32) { p.ratio = v }
func (p *Product) GetStatus() Status { return p.status }
func (p *Product) SetStatus(v Status) { p.status = v }
func (p *Product) GetNick() *string { return p.nick }
func (p *Product) SetNick(v *string) { p.nick = v }
func (p *Product) GetCreated() time.Time { return p.created }
func (p *Product) SetCreated(t time.Time) {
	p.created = t
}
func (p *Product) GetMeasuredAt() time.Time { return p.measuredAt }
func (p *Product) SetMeasuredAt(t time.Time) {
	p.measuredAt = t.Truncate(time.Second)
}

func (p *Product) GetTags() []string { return p.tags }
func (p *Product) SetTags(tags []string) { p.tags = tags }
func (p *Product) AddTags(tag string) { p.tags = append(p.tags, tag) }

func (p *Product) GetScores() map[*Maker]int { return p.scores }
func (p *Product) SetScores(scores map[*Maker]int) { p.scores = scores }
func (p *Product) AddScores(who *Maker, score int) { p.scores[who] = score }
func (p *Product) GetParts() []*Part { return p.parts }
func (p *Product) SetParts(parts []*Part) { p.parts = parts }
func (p *Product) AddParts(part *Part) { p.parts = append(p.parts, part) }
func (p *Product) GetMaker() *Maker { return p.maker }
func (p *Product) SetMaker(m *Maker) { p.maker = m }
func (p *Product) SetHidden(string) {}
func (p *Product) GetReadonly() string { return "" }
func (p *Product) GetNothing() string { return "" }
func (p *Product) SetNothing() {}
func (p *Product) Address() string { return "" }
func (p *Product) Getaway() string { return "" }

// Reading has setters that reject most of what they are given
type Reading struct {
	value  any
	code   string
	mood   string
	raw    any
	count  int
	series any
	moment any
}

func (r *Reading) GetValue() any { return r.value }
func (r *Reading) SetValue(v any) error {
	switch v.(type) {
	case int, float64:
		r.value = v
		return nil
	}
	return errors.New("not a number")
}

func (r *Reading) GetCode() string { return r.code }
func (r *Reading) SetCode(string) error {
	return errors.New("codes are assigned by the server")
}

func (r *Reading) GetMood() string { return r.mood }
func (r *Reading) SetMood(string) { panic("immutable") }

func (r *Reading) GetRaw() any { return r.raw }
func (r *Reading) SetRaw(v any) { r.raw = v }

func (r *Reading) GetCount() (int, error) { return 0, errors.New("not loaded") }
func (r *Reading) SetCount(v int) { r.count = v }

func (r *Reading) GetSeries() any { return r.series }
func (r *Reading) SetSeries(v any) error {
	if _, ok := v.([]int); !ok {
		return errors.New("not a series")
	}
	r.series = v
	return nil
}

func (r *Reading) GetMoment() any { return r.moment }
func (r *Reading) SetMoment(v any) error {
	switch v.(type) {
	case time.Time, []int:
		r.moment = v
		return nil
	}
	return errors.New("not a moment")
}

// Shape is a polymorphic root
type Shape struct {
	name string
}

func (s *Shape) GetName() string { return s.name }
func (s *Shape) SetName(v string) { s.name = v }

func (s *Shape) ModelDiscriminatorMap() introspect.DiscriminatorMap {
	return introspect.DiscriminatorMap{
		Map: map[string]string{"circle": introspect.TypeAsClassName},
	}
}

type Circle struct {
	Shape
	radius float64
}

func (c *Circle) GetRadius() float64 { return c.radius }
func (c *Circle) SetRadius(v float64) { c.radius = v }

// Vehicle resolves subclasses through a suffix
type Vehicle struct {
	wheels int
}

func (v *Vehicle) GetWheels() int { return v.wheels }
func (v *Vehicle) SetWheels(n int) { v.wheels = n }

func (v *Vehicle) ModelDiscriminatorMap() introspect.DiscriminatorMap {
	return introspect.DiscriminatorMap{
		Map:            map[string]string{"car": "car"},
		SubclassSuffix: "Vehicle",
	}
}

type CarVehicle struct {
	doors int
}

func (c *CarVehicle) GetDoors() int { return c.doors }
func (c *CarVehicle) SetDoors(n int) { c.doors = n }

// Locked cannot be created without a key
type Locked struct {
	key  string
	code string
	tags []string
}

func NewLocked(key string) *Locked { return &Locked{key: key} }

func (l *Locked) GetCode() string { return l.code }
func (l *Locked) SetCode(v string) { l.code = v }
func (l *Locked) GetTags() []string { return l.tags }
func (l *Locked) SetTags(t []string) { l.tags = t }

// Plain is a class without discriminator
type Plain struct {
	title string
}

func (p *Plain) GetTitle() string { return p.title }
func (p *Plain) SetTitle(v string) { p.title = v }

var probeClock = time.Date(2024, 5, 1, 10, 30, 15, 123456789, time.UTC)

func newTestRegistry() *introspect.Registry {
	r := introspect.NewRegistry()
	r.MustRegister(Product{})
	r.MustRegister(Reading{})
	r.MustRegister(Shape{})
	r.MustRegister(Circle{})
	r.MustRegister(Vehicle{})
	r.MustRegister(CarVehicle{})
	r.MustRegister(Locked{}, introspect.WithConstructor(NewLocked))
	r.MustRegister(Plain{})
	return r
}

func newTestFactory(r *introspect.Registry) *AccessorFactory {
	return NewFactory(r, WithClock(func() time.Time { return probeClock }))
}
