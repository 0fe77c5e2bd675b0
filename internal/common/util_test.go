package common

import (
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeRandHexString(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"zero", 0},
		{"session handle", 32},
		{"odd", 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := MakeRandHexString(tt.size)
			require.NoError(t, err)
			assert.Len(t, s, tt.size*2)

			_, err = hex.DecodeString(s)
			assert.NoError(t, err)
		})
	}
}

func TestMakeRandHexString_Distinct(t *testing.T) {
	a, err := MakeRandHexString(32)
	require.NoError(t, err)
	b, err := MakeRandHexString(32)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestWipeByteArray(t *testing.T) {
	buf := []byte("hunter2")
	WipeByteArray(buf)
	assert.Equal(t, make([]byte, 7), buf)

	assert.NotPanics(t, func() { WipeByteArray(nil) })
}

func TestSentinels_MatchWhenWrapped(t *testing.T) {
	sentinels := []error{
		ErrorNotFound,
		ErrorDuplicateEmail,
		ErrorInvalidCredentials,
		ErrorAuthenticationRequired,
		ErrorForbidden,
		ErrorInternal,
	}

	for _, s := range sentinels {
		wrapped := fmt.Errorf("db error: %w", s)
		assert.True(t, errors.Is(wrapped, s), s.Error())
	}
}
