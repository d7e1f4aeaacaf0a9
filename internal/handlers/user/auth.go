package user

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/config"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// ================== AUTH LOCALE ==================

func Register(c *gin.Context) {
	var input struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// email déjà pris pour un compte local ?
	var exists bool
	if err := database.Postgres.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1 AND provider = 'local')`,
		input.Email).Scan(&exists); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "Un compte avec cet email existe déjà"})
		return
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	user := models.User{Name: input.Name, Email: input.Email, Role: "customer", Provider: "local"}
	err = database.Postgres.QueryRowContext(ctx, `
		INSERT INTO users (name, email, password_hash, role, provider)
		VALUES ($1, $2, $3, 'customer', 'local')
		RETURNING user_id, created_at`,
		input.Name, input.Email, hashed,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		log.Printf("❌ Erreur création utilisateur: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	log.Printf("✅ Nouvel utilisateur: %s", user.Email)
	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

func Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var user models.User
	err := database.Postgres.QueryRowContext(ctx, `
		SELECT user_id, name, email, password_hash, role, provider, avatar_url, created_at
		FROM users WHERE email = $1 AND provider = 'local'`,
		input.Email,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Password, &user.Role, &user.Provider, &user.AvatarURL, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	ok, err := utils.VerifyPassword(input.Password, user.Password)
	if err != nil || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email ou mot de passe incorrect"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	user.Password = ""
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Me retourne le profil de l'utilisateur connecté (via cache Redis)
func Me(c *gin.Context) {
	userID := c.GetString("user_id")

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateProfile modifie le nom et/ou l'avatar de l'utilisateur connecté
func UpdateProfile(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if req.Name == "" && req.AvatarURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rien à mettre à jour"})
		return
	}

	res, err := database.Postgres.ExecContext(c.Request.Context(), `
		UPDATE users
		SET name = COALESCE(NULLIF($2, ''), name),
		    avatar_url = COALESCE(NULLIF($3, ''), avatar_url)
		WHERE user_id = $1`,
		userID, req.Name, req.AvatarURL)
	if err != nil {
		log.Printf("❌ Erreur mise à jour profil: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		return
	}

	cache.InvalidateUserCache(userID)

	user, err := cache.GetUserFromCache(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// ================== AUTH SOCIALE ==================

// BeginAuth redirige vers le provider OAuth (google ou facebook)
func BeginAuth(c *gin.Context) {
	provider := c.Param("provider")
	if provider != "google" && provider != "facebook" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provider non supporté"})
		return
	}

	// mémorise l'URL front de retour le temps du round-trip OAuth
	if redirectURL := c.Query("redirect_url"); redirectURL != "" {
		state := generateRandomState()
		database.Redis.Set(context.Background(), "oauth_redirect:"+state, redirectURL, 10*time.Minute)
		q := c.Request.URL.Query()
		q.Set("state", state)
		c.Request.URL.RawQuery = q.Encode()
	}

	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

// CallbackAuth échange le code OAuth et connecte (ou crée) l'utilisateur
func CallbackAuth(c *gin.Context) {
	provider := c.Param("provider")
	code := c.Query("code")
	state := c.Query("state")
	if (provider != "google" && provider != "facebook") || code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètres OAuth invalides"})
		return
	}

	ctx := context.Background()

	var email, name, avatar string
	switch provider {
	case "google":
		oauthConfig := config.GoogleOAuthConfig()
		oauthToken, err := oauthConfig.Exchange(ctx, code)
		if err != nil {
			log.Printf("❌ Échange code OAuth échoué: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification Google échouée"})
			return
		}

		client := oauthConfig.Client(ctx, oauthToken)
		resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Profil Google inaccessible"})
			return
		}
		defer resp.Body.Close()

		var gu struct {
			Email   string `json:"email"`
			Name    string `json:"name"`
			Picture string `json:"picture"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil || gu.Email == "" {
			c.JSON(http.StatusBadGateway, gin.H{"error": "Profil Google invalide"})
			return
		}
		email, name, avatar = gu.Email, gu.Name, gu.Picture

	case "facebook":
		q := c.Request.URL.Query()
		q.Set("provider", provider)
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil || gothUser.Email == "" {
			log.Printf("❌ Callback Facebook échoué: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentification Facebook échouée"})
			return
		}
		email, name, avatar = gothUser.Email, gothUser.Name, gothUser.AvatarURL
	}

	user, err := findOrCreateOAuthUser(ctx, provider, email, name, avatar)
	if err != nil {
		log.Printf("❌ Erreur compte OAuth: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création compte"})
		return
	}

	token, err := utils.GenerateJWT(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur génération token"})
		return
	}

	// retour vers le front si une URL avait été mémorisée
	if state != "" {
		if redirectURL, err := database.Redis.Get(ctx, "oauth_redirect:"+state).Result(); err == nil && redirectURL != "" {
			database.Redis.Del(ctx, "oauth_redirect:"+state)
			c.Redirect(http.StatusTemporaryRedirect, redirectURL+"?token="+token)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func findOrCreateOAuthUser(ctx context.Context, provider, email, name, avatarURL string) (models.User, error) {
	var user models.User
	err := database.Postgres.QueryRowContext(ctx, `
		SELECT user_id, name, email, role, provider, avatar_url, created_at
		FROM users WHERE email = $1 AND provider = $2`,
		email, provider,
	).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Provider, &user.AvatarURL, &user.CreatedAt)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.User{}, err
	}

	user = models.User{Name: name, Email: email, Role: "customer", Provider: provider, AvatarURL: avatarURL}
	err = database.Postgres.QueryRowContext(ctx, `
		INSERT INTO users (name, email, role, provider, avatar_url)
		VALUES ($1, $2, 'customer', $3, $4)
		RETURNING user_id, created_at`,
		name, email, provider, avatarURL,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}

	log.Printf("✅ Nouvel utilisateur OAuth (%s): %s", provider, email)
	return user, nil
}
