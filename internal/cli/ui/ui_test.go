package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTable(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true, "FIELD", "TYPE", "ADDER")
	table.AddRow("created_at", "datetime")
	table.AddRow("tags", "array", "AddTags")
	table.Render()

	want := "FIELD       TYPE      ADDER\n" +
		"──────────  ────────  ───────\n" +
		"created_at  datetime\n" +
		"tags        array     AddTags\n"
	assert.Equal(t, want, buf.String())
}

func TestTable_NoHeaders(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable(&buf, true)
	table.AddRow("x")
	table.Render()

	assert.Empty(t, buf.String())
}

func TestKeyValueTable(t *testing.T) {
	var buf bytes.Buffer
	kv := NewKeyValueTable(&buf, true)
	kv.AddRow("Entity", "shop.Order")
	kv.AddRow("Fields", "2")
	kv.Render()

	assert.Equal(t, "Entity: shop.Order\nFields: 2\n", buf.String())
}

func TestHeader(t *testing.T) {
	var buf bytes.Buffer
	Header(&buf, "Order", true)
	assert.Equal(t, "Order\n─────\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":      FormatTable,
		"table": FormatTable,
		"JSON":  FormatJSON,
		"yaml":  FormatYAML,
		"yml":   FormatYAML,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.EqualError(t, err, "unsupported format: xml (supported: table, json, yaml)")
}

func TestEncode(t *testing.T) {
	value := map[string]any{"name": "order", "fields": []string{"id"}}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, FormatJSON, value))
	assert.JSONEq(t, `{"name":"order","fields":["id"]}`, buf.String())

	buf.Reset()
	require.NoError(t, Encode(&buf, FormatYAML, value))
	assert.Equal(t, "fields:\n  - id\nname: order\n", buf.String())

	assert.Error(t, Encode(&buf, FormatTable, value))
}

func TestEntityNotFoundError(t *testing.T) {
	got := EntityNotFoundError("Prodct", []string{"Product"}, true)

	assert.Contains(t, got, "❌ ENTITY NOT FOUND: Cannot find entity 'Prodct'.")
	assert.Contains(t, got, "Did you mean: Product?")
	assert.Contains(t, got, "→ See all entities: entitymeta list")
}

func TestWriteSuccess(t *testing.T) {
	var buf bytes.Buffer
	WriteSuccess(&buf, "done", true)
	assert.Equal(t, "✓ done\n", buf.String())
}

func TestFindSimilar(t *testing.T) {
	candidates := []string{"Product", "Order", "Customer", "Produce"}

	assert.Equal(t, []string{"Product", "Produce"}, FindSimilar("prodct", candidates, 2))
	assert.Empty(t, FindSimilar("zzz", candidates, 1))
	assert.Len(t, FindSimilar("x", []string{"a", "b", "c", "d"}, 1), MaxSuggestions)
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 3, LevenshteinDistance("kitten", "sitting"))
	assert.Equal(t, 3, LevenshteinDistance("saturday", "sunday"))
	assert.Equal(t, 4, LevenshteinDistance("", "abcd"))
	assert.Equal(t, 1, LevenshteinDistance("café", "cafe"))
}
