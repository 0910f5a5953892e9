package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	s := NewSigner("test-secret")

	tok, err := s.Issue("user-1", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	uid, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", uid)
}

func TestParseRejectsExpired(t *testing.T) {
	s := NewSigner("test-secret")

	tok, err := s.Issue("user-1", -time.Minute)
	require.NoError(t, err)

	_, err = s.Parse(tok)
	assert.Error(t, err)
}

func TestParseRejectsWrongSecret(t *testing.T) {
	s1 := NewSigner("secret-a")
	s2 := NewSigner("secret-b")

	tok, err := s1.Issue("user-1", time.Minute)
	require.NoError(t, err)

	_, err = s2.Parse(tok)
	assert.Error(t, err)

	_, err = s1.Parse("not-a-token")
	assert.Error(t, err)
}

func TestHashTokenStable(t *testing.T) {
	a := HashToken("refresh-token")
	b := HashToken("refresh-token")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, HashToken("other"))
	assert.Len(t, a, 64)
}
