package config

import (
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleOAuthConfig construit la config OAuth à la demande : les variables
// d'environnement sont lues à l'appel, jamais à l'init du package, sinon un
// .env chargé par Load() arriverait trop tard et l'échange de code partirait
// avec des identifiants vides.
func GoogleOAuthConfig() *oauth2.Config {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	return &oauth2.Config{
		RedirectURL:  baseURL + "/api/auth/google/callback",
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}
}
