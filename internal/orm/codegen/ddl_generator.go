package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/conduit-lang/entitymeta/internal/orm/introspect"
	"github.com/conduit-lang/entitymeta/internal/orm/metadata"
	casing "github.com/conduit-lang/entitymeta/internal/util/strings"
)

// DDLGenerator generates CREATE and DROP TABLE statements from entity metadata
type DDLGenerator struct {
	typeMapper *TypeMapper
	names      casing.Converter
}

// NewDDLGenerator creates a new DDL generator
func NewDDLGenerator() *DDLGenerator {
	return &DDLGenerator{
		typeMapper: NewTypeMapper(),
	}
}

// TableName returns the snake_case short type name of the entity
func (g *DDLGenerator) TableName(meta *metadata.EntityMetadata) string {
	_, typeName := introspect.SplitQualifiedName(meta.Entity())
	return g.names.ToSnakeCase(typeName)
}

// Column is one generated column definition
type Column struct {
	Name string
	Type string
}

// Columns returns the ordered columns of an entity table. A field named id
// becomes the primary key and comes first.
func (g *DDLGenerator) Columns(meta *metadata.EntityMetadata, dialect Dialect) ([]Column, error) {
	fields := meta.Fields()
	names := meta.FieldNames()

	sort.SliceStable(names, func(i, j int) bool {
		return g.priority(names[i], fields[names[i]]) < g.priority(names[j], fields[names[j]])
	})

	columns := make([]Column, 0, len(names))
	for _, name := range names {
		columnType, err := g.typeMapper.MapType(fields[name].Type, dialect)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		columns = append(columns, Column{Name: name, Type: columnType})
	}
	return columns, nil
}

func (g *DDLGenerator) priority(name string, field metadata.FieldMetadata) int {
	if name == "id" {
		return 0
	}
	return columnPriority(field.Type)
}

// GenerateCreateTable generates a CREATE TABLE statement for an entity
func (g *DDLGenerator) GenerateCreateTable(meta *metadata.EntityMetadata, dialect Dialect) (string, error) {
	if meta == nil || meta.Entity() == "" {
		return "", fmt.Errorf("metadata has no entity")
	}
	if meta.Count() == 0 {
		return "", fmt.Errorf("%s has no persistable fields", meta.Entity())
	}

	columns, err := g.Columns(meta, dialect)
	if err != nil {
		return "", fmt.Errorf("%s: %w", meta.Entity(), err)
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n", pq.QuoteIdentifier(g.TableName(meta))))

	for i, col := range columns {
		b.WriteString("  ")
		b.WriteString(pq.QuoteIdentifier(col.Name))
		b.WriteString(" ")
		b.WriteString(col.Type)
		if col.Name == "id" {
			b.WriteString(" PRIMARY KEY")
		}
		if i < len(columns)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	b.WriteString(");")

	return b.String(), nil
}

// GenerateSchema generates CREATE TABLE statements for several entities,
// ordered by table name
func (g *DDLGenerator) GenerateSchema(metas []*metadata.EntityMetadata, dialect Dialect) (string, error) {
	sorted := make([]*metadata.EntityMetadata, len(metas))
	copy(sorted, metas)
	sort.Slice(sorted, func(i, j int) bool {
		return g.TableName(sorted[i]) < g.TableName(sorted[j])
	})

	statements := make([]string, 0, len(sorted))
	for _, meta := range sorted {
		stmt, err := g.GenerateCreateTable(meta, dialect)
		if err != nil {
			return "", err
		}
		statements = append(statements, stmt)
	}

	return strings.Join(statements, "\n\n"), nil
}

// GenerateDropTable generates a DROP TABLE statement
func (g *DDLGenerator) GenerateDropTable(meta *metadata.EntityMetadata, dialect Dialect) string {
	stmt := "DROP TABLE IF EXISTS " + pq.QuoteIdentifier(g.TableName(meta))
	if dialect == Postgres {
		stmt += " CASCADE"
	}
	return stmt + ";"
}
