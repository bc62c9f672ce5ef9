package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	h, err := HashPassword("s3cret-password")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-password", h)

	require.True(t, CheckPassword(h, "s3cret-password"))
	require.False(t, CheckPassword(h, "wrong"))
	require.False(t, CheckPassword("not-a-hash", "s3cret-password"))
}
