package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/lib/pq"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

const (
	UserCacheTTL    = 5 * time.Minute
	ProductCacheTTL = 10 * time.Minute
)

// GetUserFromCache récupère un utilisateur depuis Redis ou PostgreSQL
func GetUserFromCache(userID string) (*models.User, error) {
	ctx := context.Background()
	key := "user:" + userID

	// 1. Essayer le cache Redis
	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var user models.User
		if json.Unmarshal([]byte(data), &user) == nil {
			return &user, nil
		}
	}

	// 2. Récupérer de PostgreSQL
	user := &models.User{}
	err = database.Postgres.QueryRowContext(ctx, `
		SELECT user_id, name, email, role, provider, avatar_url, created_at
		FROM users WHERE user_id = $1
	`, userID).Scan(&user.ID, &user.Name, &user.Email, &user.Role, &user.Provider,
		&user.AvatarURL, &user.CreatedAt)
	if err != nil {
		return nil, err
	}

	// 3. Mettre en cache
	jsonData, _ := json.Marshal(user)
	database.Redis.Set(ctx, key, jsonData, UserCacheTTL)

	return user, nil
}

// InvalidateUserCache invalide le cache d'un utilisateur
func InvalidateUserCache(userID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "user:"+userID)
}

// GetProductFromCache récupère un produit (sans ses options) via le cache
func GetProductFromCache(productID string) (*models.Product, error) {
	ctx := context.Background()
	key := "product:" + productID

	data, err := database.Redis.Get(ctx, key).Result()
	if err == nil {
		var product models.Product
		if json.Unmarshal([]byte(data), &product) == nil {
			return &product, nil
		}
	}

	product := &models.Product{}
	err = database.Postgres.QueryRowContext(ctx, `
		SELECT product_id, name, description, price, stock, low_stock_threshold,
		       sku, category, image_urls, tags, archived, has_variants, created_at, updated_at
		FROM products WHERE product_id = $1
	`, productID).Scan(&product.ID, &product.Name, &product.Description, &product.Price,
		&product.Stock, &product.LowStockThreshold, &product.SKU, &product.Category,
		pq.Array(&product.ImageURLs), pq.Array(&product.Tags),
		&product.Archived, &product.HasVariants, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return nil, err
	}

	jsonData, _ := json.Marshal(product)
	database.Redis.Set(ctx, key, jsonData, ProductCacheTTL)

	return product, nil
}

// InvalidateProductCache invalide le cache d'un produit
func InvalidateProductCache(productID string) {
	ctx := context.Background()
	database.Redis.Del(ctx, "product:"+productID)
}
