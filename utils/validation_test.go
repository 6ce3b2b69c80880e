package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhone(t *testing.T) {
	valid := []string{"+15551234567", "(555) 123-4567", "555.123.4567", "+44 20 7946 0958"}
	invalid := []string{"", "abc", "0123", "+0 555 123 4567"}

	for _, p := range valid {
		assert.True(t, ValidatePhone(p), p)
	}
	for _, p := range invalid {
		assert.False(t, ValidatePhone(p), p)
	}
}

func TestToE164(t *testing.T) {
	assert.Equal(t, "+15551234567", ToE164("(555) 123-4567"))
	assert.Equal(t, "+15551234567", ToE164("1-555-123-4567"))
	assert.Equal(t, "+442079460958", ToE164("+44 20 7946 0958"))
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(6)
	assert.Len(t, s, 6)
	assert.Regexp(t, `^[A-HJ-NP-Z2-9]{6}$`, s)
}
