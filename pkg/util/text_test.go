package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTruncate(t *testing.T) {
	require.Equal(t, "hello", Truncate("hello", 10))
	require.Equal(t, "he...", Truncate("hello", 2))
	require.Equal(t, "晴天...", Truncate("晴天多云", 2))
	require.Equal(t, "", Truncate("hello", 0))
}

func TestMaskSecret(t *testing.T) {
	require.Equal(t, "", MaskSecret(""))
	require.Equal(t, "****", MaskSecret("short"))
	require.Equal(t, "sk-a****wxyz", MaskSecret("sk-abcdefghijklmnopqrstuvwxyz"))
}
