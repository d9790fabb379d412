package testutil

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/nhle/taskboard/internal/credential"
)

// NewTokenStore returns an in-memory credential store.
func NewTokenStore(t *testing.T) *credential.Store {
	t.Helper()
	return credential.NewMemory()
}

// NewAccessToken signs an HS256 access token for the user with the given
// claims. exp is set an hour ahead unless claims carries one.
func NewAccessToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	mc := jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}
	for k, v := range claims {
		mc[k] = v
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing access token: %v", err)
	}
	return token
}

// ExpiredAccessToken signs a token that expired a minute ago.
func ExpiredAccessToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	merged := map[string]any{"exp": time.Now().Add(-time.Minute).Unix()}
	for k, v := range claims {
		merged[k] = v
	}
	return NewAccessToken(t, merged)
}
