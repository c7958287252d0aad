package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"12.34", 1234},
		{"12,34", 1234},
		{"12", 1200},
		{"0.01", 1},
		{"12.345", 1234}, // rounds down
		{"12.346", 1235}, // rounds up
		{".50", 50},
		{" 7.00 ", 700},
	}
	for _, tt := range tests {
		got, err := ParseDecimalToCents(tt.in)
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestParseDecimalToCentsRejects(t *testing.T) {
	for _, in := range []string{"", "0", "0.00", "-5", "+5", "abc", "1.2.3", "12x"} {
		_, err := ParseDecimalToCents(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", in)
	}
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "45.50", Money{Cents: 4550}.String())
	assert.Equal(t, "0.05", Money{Cents: 5}.String())
	assert.Equal(t, "-3.00", Money{Cents: -300}.String())
	assert.InDelta(t, 45.5, Money{Cents: 4550}.Units(), 1e-9)
}
