package product

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/cache"
	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// loadOptions charge les options d'un produit avec leurs valeurs
func loadOptions(ctx context.Context, productID string) ([]models.Option, error) {
	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT option_id, product_id, name, position
		FROM product_options
		WHERE product_id = $1
		ORDER BY position, name`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var o models.Option
		if err := rows.Scan(&o.ID, &o.ProductID, &o.Name, &o.Position); err != nil {
			return nil, err
		}
		options = append(options, o)
	}

	for i := range options {
		valueRows, err := database.Postgres.QueryContext(ctx, `
			SELECT value_id, option_id, value, image_url
			FROM option_values
			WHERE option_id = $1
			ORDER BY value`, options[i].ID)
		if err != nil {
			return nil, err
		}
		for valueRows.Next() {
			var v models.OptionValue
			if err := valueRows.Scan(&v.ID, &v.OptionID, &v.Value, &v.ImageURL); err != nil {
				valueRows.Close()
				return nil, err
			}
			options[i].Values = append(options[i].Values, v)
		}
		valueRows.Close()
	}

	return options, nil
}

// GetProductOptions retourne les options + valeurs d'un produit
func GetProductOptions(c *gin.Context) {
	options, err := loadOptions(context.Background(), c.Param("id"))
	if err != nil {
		log.Printf("❌ Erreur lecture options: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture options"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"options": options})
}

// AddProductOption ajoute une option (ex: "Couleur") à un produit
func AddProductOption(c *gin.Context) {
	productID := c.Param("id")

	var req struct {
		Name     string `json:"name" binding:"required"`
		Position int    `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	var o models.Option
	err := database.Postgres.QueryRowContext(context.Background(), `
		INSERT INTO product_options (product_id, name, position)
		VALUES ($1, $2, $3)
		RETURNING option_id, product_id, name, position`,
		productID, req.Name, req.Position,
	).Scan(&o.ID, &o.ProductID, &o.Name, &o.Position)
	if err != nil {
		log.Printf("❌ Erreur création option: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erreur création option (produit inexistant ou option en doublon)"})
		return
	}

	// Le produit devient un produit à variantes dès la première option
	database.Postgres.ExecContext(context.Background(),
		`UPDATE products SET has_variants = TRUE, updated_at = NOW() WHERE product_id = $1`, productID)
	cache.InvalidateProductCache(productID)

	c.JSON(http.StatusCreated, o)
}

// DeleteProductOption supprime une option et toutes ses valeurs (CASCADE)
func DeleteProductOption(c *gin.Context) {
	productID := c.Param("id")
	optionID := c.Param("optionId")

	res, err := database.Postgres.ExecContext(context.Background(),
		`DELETE FROM product_options WHERE option_id = $1 AND product_id = $2`, optionID, productID)
	if err != nil {
		log.Printf("❌ Erreur suppression option: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression option"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Option introuvable"})
		return
	}

	// Plus d'options ⇒ le produit redevient simple
	var remaining int
	if err := database.Postgres.QueryRowContext(context.Background(),
		`SELECT COUNT(*) FROM product_options WHERE product_id = $1`, productID).Scan(&remaining); err == nil && remaining == 0 {
		database.Postgres.ExecContext(context.Background(),
			`UPDATE products SET has_variants = FALSE, updated_at = NOW() WHERE product_id = $1`, productID)
	}
	cache.InvalidateProductCache(productID)

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddOptionValue ajoute une valeur à une option (ex: "Rouge" pour "Couleur")
func AddOptionValue(c *gin.Context) {
	optionID := c.Param("optionId")

	var req struct {
		Value    string `json:"value" binding:"required"`
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	var v models.OptionValue
	err := database.Postgres.QueryRowContext(context.Background(), `
		INSERT INTO option_values (option_id, value, image_url)
		VALUES ($1, $2, $3)
		RETURNING value_id, option_id, value, image_url`,
		optionID, req.Value, req.ImageURL,
	).Scan(&v.ID, &v.OptionID, &v.Value, &v.ImageURL)
	if err != nil {
		log.Printf("❌ Erreur création valeur d'option: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erreur création valeur (option inexistante ou valeur en doublon)"})
		return
	}

	c.JSON(http.StatusCreated, v)
}

// UpdateOptionValue modifie une valeur d'option (libellé ou image)
func UpdateOptionValue(c *gin.Context) {
	valueID := c.Param("valueId")

	var req struct {
		Value    string `json:"value" binding:"required"`
		ImageURL string `json:"image_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	var v models.OptionValue
	err := database.Postgres.QueryRowContext(context.Background(), `
		UPDATE option_values SET value = $2, image_url = $3
		WHERE value_id = $1
		RETURNING value_id, option_id, value, image_url`,
		valueID, req.Value, req.ImageURL,
	).Scan(&v.ID, &v.OptionID, &v.Value, &v.ImageURL)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Valeur introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur mise à jour valeur d'option: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour valeur"})
		return
	}

	c.JSON(http.StatusOK, v)
}

// DeleteOptionValue supprime une valeur d'option
func DeleteOptionValue(c *gin.Context) {
	res, err := database.Postgres.ExecContext(context.Background(),
		`DELETE FROM option_values WHERE value_id = $1`, c.Param("valueId"))
	if err != nil {
		log.Printf("❌ Erreur suppression valeur d'option: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression valeur"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Valeur introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
