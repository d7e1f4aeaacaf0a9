package user

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

const cartTTL = 30 * 24 * time.Hour

func cartKey(userID string) string { return "cart:" + userID }

func readCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	data, err := database.Redis.Get(ctx, cartKey(userID)).Result()
	if errors.Is(err, redis.Nil) || data == "" {
		return []models.CartItem{}, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func writeCart(ctx context.Context, userID string, items []models.CartItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := database.Redis.Set(ctx, cartKey(userID), data, cartTTL).Err(); err != nil {
		return err
	}
	// notifie les onglets/appareils connectés en WebSocket
	database.Redis.Publish(ctx, cartKey(userID), "updated")
	return nil
}

// GetCart retourne le panier courant avec total et nombre d'articles
func GetCart(c *gin.Context) {
	userID := c.GetString("user_id")

	items, err := readCart(context.Background(), userID)
	if err != nil {
		log.Printf("❌ Erreur lecture panier %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	total := 0.0
	count := 0
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
		count += item.Quantity
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "count": count})
}

// AddToCart ajoute un article. Même produit + mêmes options ⇒ les quantités
// fusionnent ; des options différentes restent des lignes distinctes.
func AddToCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		ProductID       string            `json:"product_id" binding:"required"`
		Quantity        int               `json:"quantity" binding:"required,min=1"`
		SelectedOptions map[string]string `json:"selected_options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	// le prix et le nom viennent TOUJOURS du catalogue, jamais du client
	product, err := cache.GetProductFromCache(req.ProductID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable"})
		return
	}
	if product.Archived {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Produit indisponible"})
		return
	}

	ctx := context.Background()
	items, err := readCart(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	newItem := models.CartItem{
		ProductID:       product.ID,
		Name:            product.Name,
		Price:           product.Price,
		Quantity:        req.Quantity,
		SelectedOptions: req.SelectedOptions,
	}
	if len(product.ImageURLs) > 0 {
		newItem.ImageURL = product.ImageURLs[0]
	}

	merged := false
	for i := range items {
		if items[i].SameLine(newItem) {
			items[i].Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		items = append(items, newItem)
	}

	if err := writeCart(ctx, userID, items); err != nil {
		log.Printf("❌ Erreur écriture panier %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	log.Printf("🛒 %s: +%d × %s", userID, req.Quantity, product.Name)
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// UpdateCartItem change la quantité d'une ligne (0 la supprime)
func UpdateCartItem(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		ProductID       string            `json:"product_id" binding:"required"`
		Quantity        int               `json:"quantity"`
		SelectedOptions map[string]string `json:"selected_options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}
	if req.Quantity < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Quantité invalide"})
		return
	}

	ctx := context.Background()
	items, err := readCart(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	target := models.CartItem{ProductID: req.ProductID, SelectedOptions: req.SelectedOptions}
	updated := items[:0]
	found := false
	for _, item := range items {
		if item.SameLine(target) {
			found = true
			if req.Quantity == 0 {
				continue
			}
			item.Quantity = req.Quantity
		}
		updated = append(updated, item)
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article absent du panier"})
		return
	}

	if err := writeCart(ctx, userID, updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": updated})
}

// RemoveFromCart retire une ligne du panier
func RemoveFromCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		ProductID       string            `json:"product_id" binding:"required"`
		SelectedOptions map[string]string `json:"selected_options"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ctx := context.Background()
	items, err := readCart(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	target := models.CartItem{ProductID: req.ProductID, SelectedOptions: req.SelectedOptions}
	updated := items[:0]
	for _, item := range items {
		if item.SameLine(target) {
			continue
		}
		updated = append(updated, item)
	}

	if err := writeCart(ctx, userID, updated); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": updated})
}

// MergeCart fusionne le panier local d'un invité au moment du login.
// Chaque ligne est revalidée contre le catalogue (prix et nom compris).
func MergeCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Items []models.CartItem `json:"items" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ctx := context.Background()
	items, err := readCart(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture panier"})
		return
	}

	for _, incoming := range req.Items {
		if incoming.Quantity <= 0 {
			continue
		}
		product, err := cache.GetProductFromCache(incoming.ProductID)
		if err != nil || product.Archived {
			continue
		}

		line := models.CartItem{
			ProductID:       product.ID,
			Name:            product.Name,
			Price:           product.Price,
			Quantity:        incoming.Quantity,
			SelectedOptions: incoming.SelectedOptions,
		}
		if len(product.ImageURLs) > 0 {
			line.ImageURL = product.ImageURLs[0]
		}

		merged := false
		for i := range items {
			if items[i].SameLine(line) {
				items[i].Quantity += line.Quantity
				merged = true
				break
			}
		}
		if !merged {
			items = append(items, line)
		}
	}

	if err := writeCart(ctx, userID, items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour panier"})
		return
	}

	log.Printf("🛒 Panier invité fusionné pour %s (%d ligne(s))", userID, len(items))
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// ClearCart vide entièrement le panier
func ClearCart(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := context.Background()

	database.Redis.Del(ctx, cartKey(userID))
	database.Redis.Publish(ctx, cartKey(userID), "cleared")

	c.JSON(http.StatusOK, gin.H{"items": []models.CartItem{}})
}
