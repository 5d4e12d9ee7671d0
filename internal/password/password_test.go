package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastParams = Params{Time: 1, Memory: 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestHashAndVerify(t *testing.T) {
	digest, err := HashWith(fastParams, "secret1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=1024,t=1,p=1$"))
	assert.NotContains(t, digest, "secret1")

	ok, err := Verify("secret1", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Verify("secret2", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashUsesFreshSalt(t *testing.T) {
	first, err := HashWith(fastParams, "secret1")
	require.NoError(t, err)
	second, err := HashWith(fastParams, "secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHashDefaultParams(t *testing.T) {
	digest, err := Hash("secret1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(digest, "$argon2id$v=19$m=65536,t=1,p=4$"))

	ok, err := Verify("secret1", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyMalformedDigest(t *testing.T) {
	valid, err := HashWith(fastParams, "secret1")
	require.NoError(t, err)
	parts := strings.Split(valid, "$")

	tests := map[string]string{
		"empty":          "",
		"plain text":     "secret1",
		"other scheme":   strings.Replace(valid, "argon2id", "bcrypt", 1),
		"bad version":    strings.Replace(valid, "v=19", "v=1", 1),
		"bad params":     strings.Replace(valid, "m=1024,t=1,p=1", "m=x", 1),
		"zero threads":   strings.Replace(valid, "p=1", "p=0", 1),
		"bad salt":       strings.Join([]string{"", parts[1], parts[2], parts[3], "!!!", parts[5]}, "$"),
		"missing key":    strings.Join([]string{"", parts[1], parts[2], parts[3], parts[4], ""}, "$"),
		"extra sections": valid + "$extra",
	}

	for name, digest := range tests {
		t.Run(name, func(t *testing.T) {
			ok, err := Verify("secret1", digest)
			assert.ErrorIs(t, err, ErrMalformedDigest)
			assert.False(t, ok)
		})
	}
}
