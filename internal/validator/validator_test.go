package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckNotBlank(t *testing.T) {
	v := New()
	v.CheckNotBlank("hello", "title", "must be provided")
	assert.True(t, v.IsValid())

	v.CheckNotBlank("   ", "body", "must be provided")
	assert.False(t, v.IsValid())
	assert.Equal(t, "must be provided", v.Errors["body"])
}

func TestFirstErrorPerFieldWins(t *testing.T) {
	v := New()
	v.AddError("email", "first message")
	v.AddError("email", "second message")

	assert.Equal(t, "first message", v.Errors["email"])
}

func TestCheckEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"jacob@example.com", true},
		{"jacob+tag@sub.example.com", true},
		{"not-an-email", false},
		{"@example.com", false},
		{"jacob@", false},
		{"", false},
	}

	for _, tt := range tests {
		v := New()
		v.CheckEmail(tt.email, "must be a valid email address")
		assert.Equal(t, tt.valid, v.IsValid(), "email %q", tt.email)
	}
}

func TestIsUnique(t *testing.T) {
	assert.True(t, IsUnique([]string{"go", "postgres"}))
	assert.False(t, IsUnique([]string{"go", "go"}))
	assert.True(t, IsUnique(nil))
}
