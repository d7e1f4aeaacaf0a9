package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Les identifiants doivent être lus à l'appel, pas à l'init du package :
// un .env chargé dans main() doit être vu par la config OAuth.
func TestGoogleOAuthConfig_ReadsEnvAtCallTime(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-123")
	t.Setenv("GOOGLE_CLIENT_SECRET", "secret-456")

	cfg := GoogleOAuthConfig()
	assert.Equal(t, "client-123", cfg.ClientID)
	assert.Equal(t, "secret-456", cfg.ClientSecret)

	t.Setenv("GOOGLE_CLIENT_ID", "client-789")
	assert.Equal(t, "client-789", GoogleOAuthConfig().ClientID)
}

// Le redirect_uri doit suivre BASE_URL, comme celui enregistré côté goth,
// sinon l'échange de code échoue en redirect_uri mismatch.
func TestGoogleOAuthConfig_RedirectFollowsBaseURL(t *testing.T) {
	t.Setenv("BASE_URL", "https://api.velora.be")
	assert.Equal(t, "https://api.velora.be/api/auth/google/callback", GoogleOAuthConfig().RedirectURL)

	t.Setenv("BASE_URL", "")
	assert.Equal(t, "http://localhost:8080/api/auth/google/callback", GoogleOAuthConfig().RedirectURL)
}
