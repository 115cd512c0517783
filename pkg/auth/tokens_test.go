package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthenticatorLogin(t *testing.T) {
	ctx := context.Background()

	for _, scheme := range []Scheme{SchemeOpaque, SchemeJWT} {
		t.Run(string(scheme), func(t *testing.T) {
			s, err := NewScheme(scheme, "hunter2", 0)
			require.NoError(t, err)
			a := NewAuthenticator("hunter2", s)

			token, err := a.Login(ctx, "hunter2")
			require.NoError(t, err)
			assert.NotEmpty(t, token)
			assert.True(t, a.Verify(ctx, token))

			_, err = a.Login(ctx, "wrong")
			assert.ErrorIs(t, err, ErrInvalidPassword)

			assert.False(t, a.Verify(ctx, ""))
			assert.False(t, a.Verify(ctx, "made-up"))
		})
	}
}

func TestAuthenticatorDisabled(t *testing.T) {
	a := NewAuthenticator("", NewOpaqueTokens())

	assert.False(t, a.Enabled())
	assert.True(t, a.Verify(context.Background(), ""))

	_, err := a.Login(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrAuthDisabled)
}

func TestOpaqueTokensAreNotShared(t *testing.T) {
	ctx := context.Background()
	first, second := NewOpaqueTokens(), NewOpaqueTokens()

	token, err := first.Issue(ctx)
	require.NoError(t, err)

	assert.True(t, first.Verify(ctx, token))
	assert.False(t, second.Verify(ctx, token))
}

func TestJWTTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("other secret is rejected", func(t *testing.T) {
		token, err := NewJWTTokens("a", 0).Issue(ctx)
		require.NoError(t, err)

		assert.False(t, NewJWTTokens("b", 0).Verify(ctx, token))
	})

	t.Run("expires when ttl is set", func(t *testing.T) {
		j := NewJWTTokens("secret", time.Minute)
		issuedAt := time.Now()
		j.now = func() time.Time { return issuedAt }

		token, err := j.Issue(ctx)
		require.NoError(t, err)
		assert.True(t, j.Verify(ctx, token))

		j.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
		assert.False(t, j.Verify(ctx, token))
	})
}

func TestNewSchemeUnknown(t *testing.T) {
	_, err := NewScheme("kerberos", "x", 0)
	assert.ErrorIs(t, err, ErrUnknownScheme)
}

func TestIPRateLimiter(t *testing.T) {
	ctx := context.Background()
	l := NewIPRateLimiter(2, time.Minute)

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok)
	}

	ok, _ := l.Allow(ctx, "10.0.0.1")
	assert.False(t, ok)

	ok, _ = l.Allow(ctx, "10.0.0.2")
	assert.True(t, ok, "limits are per address")
}

func TestSlidingWindowExpires(t *testing.T) {
	ctx := context.Background()
	l := NewSlidingWindowLimiter(1, time.Minute)
	start := time.Now()
	l.now = func() time.Time { return start }

	ok, _ := l.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _ = l.Allow(ctx, "k")
	assert.False(t, ok)

	l.now = func() time.Time { return start.Add(61 * time.Second) }
	ok, _ = l.Allow(ctx, "k")
	assert.True(t, ok)

	require.NoError(t, l.Reset(ctx, "k"))
}
