package otp

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateFormat(t *testing.T) {
	a := NewAuthority("test-salt", time.Minute, 4)
	for i := 0; i < 200; i++ {
		code := a.Generate()
		require.Len(t, code, 4)
		for _, r := range code {
			require.True(t, r >= '0' && r <= '9', "non-digit in code %q", code)
		}
	}
}

func TestGenerateSpread(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		seen[Generate(6)] = struct{}{}
	}
	// 100 draws from a million-code space collapsing to a handful of
	// values would indicate a broken source.
	require.Greater(t, len(seen), 90)
}

func TestGenerateZeroPadding(t *testing.T) {
	// Regenerate until a code with a leading zero shows up; with 4-digit
	// codes the chance of 500 draws all starting nonzero is negligible.
	for i := 0; i < 500; i++ {
		if strings.HasPrefix(Generate(4), "0") {
			return
		}
	}
	t.Fatal("no zero-padded code observed in 500 draws")
}

func TestHashDeterministic(t *testing.T) {
	a := NewAuthority("test-salt", time.Minute, 4)
	require.Equal(t, a.Hash("1234"), a.Hash("1234"))
	require.NotEqual(t, a.Hash("1234"), a.Hash("1235"))
}

func TestHashSaltDependent(t *testing.T) {
	a := NewAuthority("salt-a", time.Minute, 4)
	b := NewAuthority("salt-b", time.Minute, 4)
	require.NotEqual(t, a.Hash("1234"), b.Hash("1234"))
}

func TestVerify(t *testing.T) {
	a := NewAuthority("test-salt", time.Minute, 4)
	digest := a.Hash("0042")
	require.True(t, a.Verify("0042", digest))
	require.False(t, a.Verify("0043", digest))
	require.False(t, a.Verify("", digest))
	require.False(t, a.Verify("0042", ""))
}

func TestDefaults(t *testing.T) {
	a := NewAuthority("s", 0, 0)
	require.Len(t, a.Generate(), DefaultLength)
	until := time.Until(a.ExpiryTime())
	require.InDelta(t, DefaultTTL.Seconds(), until.Seconds(), 5)
}
