package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhone(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"5551234567", true},
		{"(555) 123-4567", true},
		{"555123", false},
		{"+15551234567890", true},
		{"123456789012345", true},
		{"1234567890123456", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Phone(tt.in), tt.in)
	}
}

func TestEmail(t *testing.T) {
	assert.True(t, Email("a@b.com"))
	assert.True(t, Email("first.last+tag@sub.example.co"))
	assert.False(t, Email("a@b"))
	assert.False(t, Email("a@@b.com"))
	assert.False(t, Email("@b.com"))
	assert.False(t, Email("a@-b.com"))
}

func TestName(t *testing.T) {
	assert.True(t, Name("Mary-Jo O'Neil"))
	assert.False(t, Name("J"))
	assert.False(t, Name("R2D2"))
}

func TestZipCode(t *testing.T) {
	assert.True(t, ZipCode("19901"))
	assert.True(t, ZipCode("19901-1234"))
	assert.False(t, ZipCode("1990"))
	assert.False(t, ZipCode("19901-12"))
}

func TestAddress(t *testing.T) {
	assert.True(t, Address("123 Main Street"))
	assert.False(t, Address("Main Street"))
	assert.False(t, Address("12345678901"))
	assert.False(t, Address(" 1 Elm "))
}

func TestPrice(t *testing.T) {
	assert.True(t, Price("$250,000"))
	assert.True(t, Price("99.5"))
	assert.False(t, Price("$0"))
	assert.False(t, Price("free"))
	assert.False(t, Price(""))
	assert.False(t, Price("Inf"))
	assert.False(t, Price("+Inf"))
	assert.False(t, Price("1e999"))
	assert.False(t, Price("NaN"))
}

func TestSanitizeAndLength(t *testing.T) {
	assert.Equal(t, "script", Sanitize("  <script>  "))
	assert.True(t, IsEmpty("   "))
	assert.False(t, IsEmpty(" x "))
	assert.True(t, Length(" abc ", 3, 3))
	assert.False(t, Length("abcd", 1, 3))
}

type selection struct {
	Street     string `validate:"required"`
	PostalCode string `validate:"required,zip"`
	Phone      string `validate:"omitempty,phone"`
}

func TestValidatorCustomTags(t *testing.T) {
	v := New()
	require.NoError(t, v.Struct(selection{Street: "Main St", PostalCode: "19901", Phone: "5551234567"}))

	err := v.Struct(selection{PostalCode: "abc", Phone: "123"})
	require.Error(t, err)
	details := v.Details(err)
	assert.Equal(t, "required", details["Street"])
	assert.Equal(t, "zip", details["PostalCode"])
	assert.Equal(t, "phone", details["Phone"])
	assert.Nil(t, v.Details(nil))
}
