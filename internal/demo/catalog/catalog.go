// Package catalog is a small shop domain used by the entitymeta binary and
// its tests. Between them the types cover every accessor shape the metadata
// factory understands.
package catalog

import (
	"errors"
	"time"

	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
)

// Register adds every catalog entity to a registry
func Register(r *introspect.Registry) error {
	entities := []struct {
		entity any
		opts   []introspect.Option
	}{
		{entity: Product{}, opts: []introspect.Option{introspect.WithConstructor(NewProduct)}},
		{entity: Manufacturer{}},
		{entity: Payment{}},
		{entity: Voucher{}},
		{entity: CardPayment{}},
		{entity: BankTransferPayment{}},
	}

	for _, e := range entities {
		if err := r.Register(e.entity, e.opts...); err != nil {
			return err
		}
	}
	return nil
}

// NewRegistry returns a registry holding the catalog
func NewRegistry() *introspect.Registry {
	r := introspect.NewRegistry()
	if err := Register(r); err != nil {
		panic(err)
	}
	return r
}

// Manufacturer makes products
type Manufacturer struct {
	name    string
	country string
}

func (m *Manufacturer) GetName() string { return m.name }
func (m *Manufacturer) SetName(name string) { m.name = name }
func (m *Manufacturer) GetCountry() string { return m.country }
func (m *Manufacturer) SetCountry(country string) { m.country = country }

// Product is something for sale
type Product struct {
	id           int64
	sku          string
	name         string
	price        float64
	inStock      bool
	discount     *float64
	releasedAt   time.Time
	weight       any
	note         any
	tags         []string
	attributes   map[string]string
	manufacturer *Manufacturer
	related      []*Product
}

// NewProduct returns a product ready to take attributes
func NewProduct() *Product {
	return &Product{attributes: make(map[string]string)}
}

func (p *Product) GetId() int64 { return p.id }
func (p *Product) SetId(id int64) { p.id = id }
func (p *Product) GetSku() string { return p.sku }
func (p *Product) SetSku(sku string) { p.sku = sku }
func (p *Product) GetName() string { return p.name }
func (p *Product) SetName(name string) { p.name = name }
func (p *Product) GetPrice() float64 { return p.price }
func (p *Product) SetPrice(price float64) { p.price = price }
func (p *Product) GetInStock() bool { return p.inStock }
func (p *Product) SetInStock(inStock bool) { p.inStock = inStock }

// GetDiscount returns nil when the product is sold at full price
func (p *Product) GetDiscount() *float64 { return p.discount }
func (p *Product) SetDiscount(discount *float64) { p.discount = discount }

func (p *Product) GetReleasedAt() time.Time { return p.releasedAt }
func (p *Product) SetReleasedAt(t time.Time) { p.releasedAt = t }

// GetWeight returns the weight in kilograms as it was set
func (p *Product) GetWeight() any { return p.weight }

// SetWeight accepts any number
func (p *Product) SetWeight(weight any) error {
	switch weight.(type) {
	case int, int64, float32, float64:
		p.weight = weight
		return nil
	}
	return errors.New("weight must be a number")
}

func (p *Product) GetNote() any { return p.note }
func (p *Product) SetNote(note any) { p.note = note }

func (p *Product) GetTags() []string { return p.tags }
func (p *Product) SetTags(tags []string) { p.tags = tags }
func (p *Product) AddTags(tag string) { p.tags = append(p.tags, tag) }

func (p *Product) GetAttributes() map[string]string { return p.attributes }
func (p *Product) SetAttributes(attributes map[string]string) { p.attributes = attributes }
func (p *Product) AddAttributes(key, value string) { p.attributes[key] = value }

func (p *Product) GetManufacturer() *Manufacturer { return p.manufacturer }
func (p *Product) SetManufacturer(m *Manufacturer) { p.manufacturer = m }

func (p *Product) GetRelated() []*Product { return p.related }
func (p *Product) SetRelated(related []*Product) { p.related = related }
func (p *Product) AddRelated(product *Product) { p.related = append(p.related, product) }

// Payment is the root of the payment family. The type column holds one of
// the discriminator tags.
type Payment struct {
	amount   float64
	currency string
	paidAt   time.Time
}

func (p *Payment) GetAmount() float64 { return p.amount }
func (p *Payment) SetAmount(amount float64) { p.amount = amount }
func (p *Payment) GetCurrency() string { return p.currency }
func (p *Payment) SetCurrency(currency string) { p.currency = currency }
func (p *Payment) GetPaidAt() time.Time { return p.paidAt }
func (p *Payment) SetPaidAt(t time.Time) { p.paidAt = t }

// ModelDiscriminatorMap declares the payment subclasses. "voucher" names
// Voucher directly, the other tags only resolve with the Payment suffix.
func (p *Payment) ModelDiscriminatorMap() introspect.DiscriminatorMap {
	return introspect.DiscriminatorMap{
		Map: map[string]string{
			"voucher":       introspect.TypeAsClassName,
			"card":          "card",
			"bank_transfer": introspect.TypeAsClassName,
		},
		SubclassSuffix: "Payment",
	}
}

// Voucher is paid with a gift code
type Voucher struct {
	code      string
	expiresAt time.Time
}

func (v *Voucher) GetCode() string { return v.code }
func (v *Voucher) SetCode(code string) { v.code = code }
func (v *Voucher) GetExpiresAt() time.Time { return v.expiresAt }
func (v *Voucher) SetExpiresAt(t time.Time) { v.expiresAt = t }

// CardPayment is paid by card
type CardPayment struct {
	brand  string
	holder string
}

func (c *CardPayment) GetBrand() string { return c.brand }
func (c *CardPayment) SetBrand(brand string) { c.brand = brand }
func (c *CardPayment) GetHolder() string { return c.holder }
func (c *CardPayment) SetHolder(holder string) { c.holder = holder }

// BankTransferPayment is paid by wire transfer
type BankTransferPayment struct {
	iban      string
	reference string
}

func (b *BankTransferPayment) GetIban() string { return b.iban }
func (b *BankTransferPayment) SetIban(iban string) { b.iban = iban }
func (b *BankTransferPayment) GetReference() string { return b.reference }
func (b *BankTransferPayment) SetReference(reference string) { b.reference = reference }
