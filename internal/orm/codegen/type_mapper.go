// Package codegen generates SQL DDL and Go source from entity metadata.
package codegen

import (
	"fmt"
	"strings"

	"github.com/conduit-lang/entitymeta/internal/orm/metadata"
)

// Dialect is a target SQL dialect
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// ParseDialect accepts a dialect name, case-insensitively. "postgresql" and
// "sqlite3" are accepted as aliases.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "", "postgres", "postgresql", "pg":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported dialect %q", name)
}

// TypeMapper maps metadata field types to column types
type TypeMapper struct{}

// NewTypeMapper creates a new TypeMapper
func NewTypeMapper() *TypeMapper {
	return &TypeMapper{}
}

var columnTypes = map[Dialect]map[metadata.FieldType]string{
	Postgres: {
		metadata.TypeBoolean:  "BOOLEAN",
		metadata.TypeInteger:  "BIGINT",
		metadata.TypeFloat:    "DOUBLE PRECISION",
		metadata.TypeString:   "TEXT",
		metadata.TypeDatetime: "TIMESTAMP WITH TIME ZONE",
		metadata.TypeArray:    "JSONB",
	},
	SQLite: {
		metadata.TypeBoolean:  "INTEGER",
		metadata.TypeInteger:  "INTEGER",
		metadata.TypeFloat:    "REAL",
		metadata.TypeString:   "TEXT",
		metadata.TypeDatetime: "TIMESTAMP",
		metadata.TypeArray:    "TEXT",
	},
}

// MapType converts a field type to a column type of the dialect
func (tm *TypeMapper) MapType(fieldType metadata.FieldType, dialect Dialect) (string, error) {
	types, ok := columnTypes[dialect]
	if !ok {
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
	columnType, ok := types[fieldType]
	if !ok {
		return "", fmt.Errorf("unsupported field type %q", fieldType)
	}
	return columnType, nil
}

// columnPriority orders columns: fixed width first, then variable width
func columnPriority(fieldType metadata.FieldType) int {
	switch fieldType {
	case metadata.TypeBoolean:
		return 1
	case metadata.TypeInteger:
		return 2
	case metadata.TypeFloat:
		return 3
	case metadata.TypeDatetime:
		return 4
	case metadata.TypeString:
		return 10
	case metadata.TypeArray:
		return 20
	}
	return 100
}
