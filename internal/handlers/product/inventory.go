package product

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
	"velora_back_end/internal/utils"
)

// UpdateStock ajuste le stock d'un produit (réassort ou inventaire).
// "restock" ajoute la quantité, "adjustment" fixe la quantité absolue.
// Chaque mouvement est tracé dans stock_movements.
func UpdateStock(c *gin.Context) {
	productID := c.Param("id")

	var req struct {
		Quantity int    `json:"quantity"`
		Reason   string `json:"reason" binding:"required"`
		Type     string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides: " + err.Error()})
		return
	}

	if req.Type != "restock" && req.Type != "adjustment" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Type invalide", "valid_types": []string{"restock", "adjustment"}})
		return
	}

	ctx := context.Background()
	tx, err := database.Postgres.BeginTx(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur connexion base de données"})
		return
	}
	defer tx.Rollback()

	var currentStock, threshold int
	var productName string
	err = tx.QueryRowContext(ctx,
		`SELECT stock, low_stock_threshold, name FROM products WHERE product_id = $1 FOR UPDATE`,
		productID).Scan(&currentStock, &threshold, &productName)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit non trouvé"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur lecture produit %s: %v", productID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produit"})
		return
	}

	var newStock int
	switch req.Type {
	case "restock":
		newStock = currentStock + req.Quantity
	case "adjustment":
		newStock = req.Quantity
	}
	if newStock < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Le stock ne peut pas devenir négatif"})
		return
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = $2, updated_at = NOW() WHERE product_id = $1`,
		productID, newStock); err != nil {
		log.Printf("❌ Erreur mise à jour stock: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour stock"})
		return
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stock_movements (product_id, type, quantity, prev_stock, new_stock, reason, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		productID, req.Type, req.Quantity, currentStock, newStock, req.Reason, c.GetString("user_id"),
	); err != nil {
		log.Printf("❌ Erreur trace mouvement stock: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour stock"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour stock"})
		return
	}

	cache.InvalidateProductCache(productID)
	invalidateProductList()

	log.Printf("📦 Stock de %s: %d → %d (%s)", productName, currentStock, newStock, req.Type)

	if newStock > 0 && newStock <= threshold {
		utils.NotifyLowStock(productName, newStock, threshold)
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id": productID,
		"prev_stock": currentStock,
		"new_stock":  newStock,
		"type":       req.Type,
	})
}

// GetStockMovements retourne l'historique des mouvements de stock d'un produit
func GetStockMovements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := database.Postgres.QueryContext(context.Background(), `
		SELECT movement_id, product_id, type, quantity, prev_stock, new_stock, reason, user_id, created_at
		FROM stock_movements
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, c.Param("id"), limit)
	if err != nil {
		log.Printf("❌ Erreur lecture mouvements: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture mouvements"})
		return
	}
	defer rows.Close()

	movements := []models.StockMovement{}
	for rows.Next() {
		var m models.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.Type, &m.Quantity, &m.PrevStock, &m.NewStock, &m.Reason, &m.UserID, &m.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture mouvements"})
			return
		}
		movements = append(movements, m)
	}

	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

// GetLowStockProducts liste les produits sous leur seuil d'alerte
func GetLowStockProducts(c *gin.Context) {
	rows, err := database.Postgres.QueryContext(context.Background(), `
		SELECT `+productColumns+`
		FROM products
		WHERE NOT archived AND stock <= low_stock_threshold
		ORDER BY stock ASC`)
	if err != nil {
		log.Printf("❌ Erreur lecture stock faible: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture produits"})
			return
		}
		products = append(products, p)
	}

	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}
