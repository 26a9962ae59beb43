package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("user-1", "teacher", "edutrack", testKey, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	assert.True(t, pair.RefreshExp.After(pair.AccessExp))

	claims, err := Parse(pair.AccessToken, testKey, "edutrack")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "teacher", claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParseRejectsWrongKey(t *testing.T) {
	pair, err := Issue("user-1", "student", "edutrack", testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, "other-key", "edutrack")
	assert.Error(t, err)
}

func TestParseRejectsIssuerMismatch(t *testing.T) {
	pair, err := Issue("user-1", "student", "someone-else", testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, testKey, "edutrack")
	assert.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	pair, err := Issue("user-1", "student", "edutrack", testKey, -time.Minute, time.Hour)
	require.NoError(t, err)

	_, err = Parse(pair.AccessToken, testKey, "edutrack")
	assert.Error(t, err)
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("not-a-token", testKey, "edutrack")
	assert.Error(t, err)
}
