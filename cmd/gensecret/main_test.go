package main

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_newSecret(t *testing.T) {
	first, err := newSecret()
	require.NoError(t, err)
	second, err := newSecret()
	require.NoError(t, err)

	raw, err := hex.DecodeString(first)
	require.NoError(t, err)
	require.Len(t, raw, SecretKeyBytesLen)
	require.NotEqual(t, first, second, "every call gives a new key")
}
