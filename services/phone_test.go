package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"Plain ten digits", "9876543210", "9876543210", false},
		{"Dashes", "98765-43210", "9876543210", false},
		{"Parentheses and spaces", "(98765) 43210", "9876543210", false},
		{"Nine digits", "987654321", "", true},
		{"Eleven digits", "98765432101", "", true},
		{"Country code is counted", "+91 9876543210", "", true},
		{"Empty", "", "", true},
		{"Letters only", "phone", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePhone(tt.raw)
			if tt.wantErr {
				assert.True(t, IsKind(err, KindInvalidPhoneFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.National)
			assert.Equal(t, "+91"+tt.want, got.E164)
		})
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	for _, raw := range []string{"98765-43210", "(98765) 43210", "9876543210", " 98 76 54 32 10 "} {
		first, err := NormalizePhone(raw)
		require.NoError(t, err)
		second, err := NormalizePhone(first.National)
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.Equal(t, "+919876543210", second.E164)
	}
}

func TestValidOTPCode(t *testing.T) {
	assert.True(t, ValidOTPCode("123456"))
	assert.False(t, ValidOTPCode("12345"))
	assert.False(t, ValidOTPCode("1234567"))
	assert.False(t, ValidOTPCode("12a456"))
	assert.False(t, ValidOTPCode(""))
	assert.False(t, ValidOTPCode("١٢٣٤٥٦"))
}
