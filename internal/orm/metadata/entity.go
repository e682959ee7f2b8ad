package metadata

import (
	"encoding/json"
	"sort"
)

// FieldType is the storage type detected for a field
type FieldType string

const (
	TypeBoolean  FieldType = "boolean"
	TypeInteger  FieldType = "integer"
	TypeFloat    FieldType = "float"
	TypeString   FieldType = "string"
	TypeDatetime FieldType = "datetime"
	TypeArray    FieldType = "array"
)

// FieldMetadata describes one persistable field
type FieldMetadata struct {
	Type   FieldType `json:"type" yaml:"type"`
	Getter string    `json:"getter" yaml:"getter"`
	Setter string    `json:"setter" yaml:"setter"`
	// Adder is set for collections that also expose an AddX method
	Adder string `json:"adder,omitempty" yaml:"adder,omitempty"`
}

// EntityMetadata holds the field metadata of one entity, keyed by
// snake_case field name
type EntityMetadata struct {
	entity string
	fields map[string]FieldMetadata
}

// NewEntityMetadata creates an empty container for the named entity
func NewEntityMetadata(entity string) *EntityMetadata {
	return &EntityMetadata{
		entity: entity,
		fields: make(map[string]FieldMetadata),
	}
}

// Entity returns the qualified class name, empty for the null container
func (m *EntityMetadata) Entity() string {
	return m.entity
}

// AddFieldMetadata stores a field. A later write to the same name wins.
func (m *EntityMetadata) AddFieldMetadata(name string, field FieldMetadata) {
	m.fields[name] = field
}

// Field returns the metadata of one field
func (m *EntityMetadata) Field(name string) (FieldMetadata, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// Fields returns a copy of all fields
func (m *EntityMetadata) Fields() map[string]FieldMetadata {
	out := make(map[string]FieldMetadata, len(m.fields))
	for k, v := range m.fields {
		out[k] = v
	}
	return out
}

// FieldNames returns the field names in sorted order
func (m *EntityMetadata) FieldNames() []string {
	names := make([]string, 0, len(m.fields))
	for name := range m.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of fields
func (m *EntityMetadata) Count() int {
	return len(m.fields)
}

// Document is the serialized form of EntityMetadata
type Document struct {
	Entity string                   `json:"entity" yaml:"entity"`
	Fields map[string]FieldMetadata `json:"fields" yaml:"fields"`
}

// Document returns a serializable snapshot
func (m *EntityMetadata) Document() Document {
	return Document{Entity: m.entity, Fields: m.Fields()}
}

// FromDocument rebuilds a container from its serialized form
func FromDocument(doc Document) *EntityMetadata {
	m := NewEntityMetadata(doc.Entity)
	for name, f := range doc.Fields {
		m.AddFieldMetadata(name, f)
	}
	return m
}

// MarshalJSON implements json.Marshaler
func (m *EntityMetadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Document())
}

// UnmarshalJSON implements json.Unmarshaler
func (m *EntityMetadata) UnmarshalJSON(data []byte) error {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	*m = *FromDocument(doc)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (m *EntityMetadata) MarshalYAML() (any, error) {
	return m.Document(), nil
}
