package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok, err := Issue("secret", 42, 1)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := ParseAuth("Bearer "+tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, float64(42), claims["sub"])
}

func TestParseAuth_BadInput(t *testing.T) {
	testCases := []struct {
		name   string
		header string
		secret string
	}{
		{"empty header", "", "secret"},
		{"bearer without token", "Bearer ", "secret"},
		{"garbage token", "Bearer not.a.jwt", "secret"},
		{"wrong secret", mustIssue(t), "other-secret"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseAuth(tc.header, tc.secret)
			require.Error(t, err)
		})
	}
}

func mustIssue(t *testing.T) string {
	t.Helper()
	tok, err := Issue("secret", 1, 1)
	require.NoError(t, err)
	return "Bearer " + tok
}
