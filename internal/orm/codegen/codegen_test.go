package codegen

import (
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conduit-lang/entitymeta/internal/orm/metadata"
)

func userMetadata() *metadata.EntityMetadata {
	meta := metadata.NewEntityMetadata("example.com/shop/catalog.UserAccount")
	meta.AddFieldMetadata("name", metadata.FieldMetadata{Type: metadata.TypeString, Getter: "GetName", Setter: "SetName"})
	meta.AddFieldMetadata("tags", metadata.FieldMetadata{Type: metadata.TypeArray, Getter: "GetTags", Setter: "SetTags", Adder: "AddTags"})
	meta.AddFieldMetadata("active", metadata.FieldMetadata{Type: metadata.TypeBoolean, Getter: "GetActive", Setter: "SetActive"})
	meta.AddFieldMetadata("id", metadata.FieldMetadata{Type: metadata.TypeInteger, Getter: "GetId", Setter: "SetId"})
	meta.AddFieldMetadata("created_at", metadata.FieldMetadata{Type: metadata.TypeDatetime, Getter: "GetCreatedAt", Setter: "SetCreatedAt"})
	meta.AddFieldMetadata("score", metadata.FieldMetadata{Type: metadata.TypeFloat, Getter: "GetScore", Setter: "SetScore"})
	return meta
}

func TestParseDialect(t *testing.T) {
	tests := map[string]Dialect{
		"":           Postgres,
		"postgres":   Postgres,
		"PostgreSQL": Postgres,
		"sqlite":     SQLite,
		"sqlite3":    SQLite,
	}
	for in, want := range tests {
		got, err := ParseDialect(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDialect("oracle")
	assert.EqualError(t, err, `unsupported dialect "oracle"`)
}

func TestTypeMapper_MapType(t *testing.T) {
	tm := NewTypeMapper()

	tests := []struct {
		fieldType metadata.FieldType
		postgres  string
		sqlite    string
	}{
		{metadata.TypeBoolean, "BOOLEAN", "INTEGER"},
		{metadata.TypeInteger, "BIGINT", "INTEGER"},
		{metadata.TypeFloat, "DOUBLE PRECISION", "REAL"},
		{metadata.TypeString, "TEXT", "TEXT"},
		{metadata.TypeDatetime, "TIMESTAMP WITH TIME ZONE", "TIMESTAMP"},
		{metadata.TypeArray, "JSONB", "TEXT"},
	}

	for _, tt := range tests {
		t.Run(string(tt.fieldType), func(t *testing.T) {
			got, err := tm.MapType(tt.fieldType, Postgres)
			require.NoError(t, err)
			assert.Equal(t, tt.postgres, got)

			got, err = tm.MapType(tt.fieldType, SQLite)
			require.NoError(t, err)
			assert.Equal(t, tt.sqlite, got)
		})
	}

	_, err := tm.MapType("decimal", Postgres)
	assert.Error(t, err)
	_, err = tm.MapType(metadata.TypeString, "oracle")
	assert.Error(t, err)
}

func TestDDLGenerator_GenerateCreateTable(t *testing.T) {
	gen := NewDDLGenerator()

	t.Run("postgres", func(t *testing.T) {
		got, err := gen.GenerateCreateTable(userMetadata(), Postgres)
		require.NoError(t, err)

		want := `CREATE TABLE IF NOT EXISTS "user_account" (
  "id" BIGINT PRIMARY KEY,
  "active" BOOLEAN,
  "score" DOUBLE PRECISION,
  "created_at" TIMESTAMP WITH TIME ZONE,
  "name" TEXT,
  "tags" JSONB
);`
		assert.Equal(t, want, got)
	})

	t.Run("sqlite", func(t *testing.T) {
		got, err := gen.GenerateCreateTable(userMetadata(), SQLite)
		require.NoError(t, err)
		assert.Contains(t, got, `"tags" TEXT`)
		assert.Contains(t, got, `"active" INTEGER`)
	})

	t.Run("quotes identifiers", func(t *testing.T) {
		meta := metadata.NewEntityMetadata("example.com/x.Odd")
		meta.AddFieldMetadata(`we"ird`, metadata.FieldMetadata{Type: metadata.TypeString})

		got, err := gen.GenerateCreateTable(meta, Postgres)
		require.NoError(t, err)
		assert.Contains(t, got, `"we""ird" TEXT`)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := gen.GenerateCreateTable(nil, Postgres)
		assert.Error(t, err)

		_, err = gen.GenerateCreateTable(metadata.NewEntityMetadata("example.com/x.Empty"), Postgres)
		assert.ErrorContains(t, err, "no persistable fields")

		bad := metadata.NewEntityMetadata("example.com/x.Bad")
		bad.AddFieldMetadata("blob", metadata.FieldMetadata{Type: "binary"})
		_, err = gen.GenerateCreateTable(bad, Postgres)
		assert.ErrorContains(t, err, "field blob")
	})
}

func TestDDLGenerator_GenerateSchemaAndDrop(t *testing.T) {
	gen := NewDDLGenerator()

	order := metadata.NewEntityMetadata("example.com/shop.Order")
	order.AddFieldMetadata("total", metadata.FieldMetadata{Type: metadata.TypeFloat})

	schema, err := gen.GenerateSchema([]*metadata.EntityMetadata{userMetadata(), order}, Postgres)
	require.NoError(t, err)

	orderAt := strings.Index(schema, `"order"`)
	userAt := strings.Index(schema, `"user_account"`)
	assert.True(t, orderAt >= 0 && orderAt < userAt, "tables are sorted by name")

	assert.Equal(t, `DROP TABLE IF EXISTS "order" CASCADE;`, gen.GenerateDropTable(order, Postgres))
	assert.Equal(t, `DROP TABLE IF EXISTS "order";`, gen.GenerateDropTable(order, SQLite))
}

func TestGenerateMetadataFile(t *testing.T) {
	order := metadata.NewEntityMetadata("example.com/shop.Order")
	order.AddFieldMetadata("total", metadata.FieldMetadata{Type: metadata.TypeFloat, Getter: "GetTotal", Setter: "SetTotal"})

	src, err := GenerateMetadataFile("catalogmeta", []*metadata.EntityMetadata{userMetadata(), order})
	require.NoError(t, err)

	code := string(src)
	assert.True(t, strings.HasPrefix(code, "// Code generated by entitymeta. DO NOT EDIT."))
	assert.Contains(t, code, "package catalogmeta")
	assert.Contains(t, code, "func Entities() map[string]*metadata.EntityMetadata")
	assert.Contains(t, code, `m0 := metadata.NewEntityMetadata("example.com/shop.Order")`)
	assert.Contains(t, code, `m1 := metadata.NewEntityMetadata("example.com/shop/catalog.UserAccount")`)
	assert.Regexp(t, `Adder:\s+"AddTags"`, code)
	assert.Contains(t, code, "metadata.TypeDatetime")

	fset := token.NewFileSet()
	_, err = parser.ParseFile(fset, "entities.go", src, parser.AllErrors)
	require.NoError(t, err)

	again, err := GenerateMetadataFile("catalogmeta", []*metadata.EntityMetadata{order, userMetadata()})
	require.NoError(t, err)
	assert.Equal(t, code, string(again), "output is deterministic")
}

func TestGenerateMetadataFile_UnsupportedType(t *testing.T) {
	bad := metadata.NewEntityMetadata("example.com/x.Bad")
	bad.AddFieldMetadata("blob", metadata.FieldMetadata{Type: "binary"})

	_, err := GenerateMetadataFile("x", []*metadata.EntityMetadata{bad})
	assert.ErrorContains(t, err, `unsupported field type "binary"`)
}

func TestWriteMetadataFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen", "entities.go")

	require.NoError(t, WriteMetadataFile(path, "gen", []*metadata.EntityMetadata{userMetadata()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "package gen")
}
