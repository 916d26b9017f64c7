package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomDigits_LengthAndAlphabet(t *testing.T) {
	s, err := RandomDigits(6)
	require.NoError(t, err)
	require.Len(t, s, 6)
	require.True(t, IsDigits(s))
}

func TestRandomDigits_Zero(t *testing.T) {
	s, err := RandomDigits(0)
	require.NoError(t, err)
	require.Empty(t, s)
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"555-1234", "5551234"},
		{"(555) 123 4567", "5551234567"},
		{"abc", ""},
		{"", ""},
		{"٣٤٥12", "12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DigitsOnly(tt.in), tt.in)
	}
}

func TestIsDigits(t *testing.T) {
	assert.True(t, IsDigits("000000"))
	assert.False(t, IsDigits(""))
	assert.False(t, IsDigits("12 34"))
	assert.False(t, IsDigits("12a4"))
}

func TestTruncate_CountsRunes(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "hi", Truncate("hi", 100))
	assert.Equal(t, "", Truncate("hi", 0))
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "chatrooms:u1", ChatroomsKey("u1"))
	assert.Equal(t, "messages:c1", MessagesKey("c1"))
}
