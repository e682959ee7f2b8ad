package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"name", "name"},
		{"firstName", "first_name"},
		{"FirstName", "first_name"},
		{"userID", "user_id"},
		{"HTTPRequest", "http_request"},
		{"createdAt", "created_at"},
		{"address2Line", "address2_line"},
		{"already_snake", "already_snake"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToSnakeCase(tt.input))
		})
	}
}

func TestToStudlyCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"circle", "Circle"},
		{"user_profile", "UserProfile"},
		{"user-profile", "UserProfile"},
		{"user profile", "UserProfile"},
		{"userProfile", "UserProfile"},
		{"UserProfile", "UserProfile"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToStudlyCase(tt.input))
		})
	}
}

func TestRoundTrip(t *testing.T) {
	for _, name := range []string{"firstName", "createdAt", "score"} {
		assert.Equal(t, name, ToCamelCase(ToSnakeCase(name)))
	}
}

func TestFirstRune(t *testing.T) {
	assert.Equal(t, "name", LowerFirst("Name"))
	assert.Equal(t, "Name", UpperFirst("name"))
	assert.Equal(t, "", LowerFirst(""))
	assert.Equal(t, "ärger", LowerFirst("Ärger"))
}

func TestConverter(t *testing.T) {
	var c Converter
	assert.Equal(t, "first_name", c.ToSnakeCase("firstName"))
	assert.Equal(t, "Circle", c.ToStudlyCase("circle"))
}
