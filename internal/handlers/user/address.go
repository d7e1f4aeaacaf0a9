package user

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

const addressColumns = `address_id, user_id, label, phone, city, address, house, floor, notes, is_default, created_at`

type addressRequest struct {
	Label     string `json:"label"`
	Phone     string `json:"phone" binding:"required"`
	City      string `json:"city" binding:"required"`
	Address   string `json:"address" binding:"required"`
	House     string `json:"house"`
	Floor     string `json:"floor"`
	Notes     string `json:"notes"`
	IsDefault bool   `json:"is_default"`
}

// GetAddresses liste les adresses de livraison de l'utilisateur
func GetAddresses(c *gin.Context) {
	userID := c.GetString("user_id")

	rows, err := database.Postgres.QueryContext(context.Background(),
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`,
		userID)
	if err != nil {
		log.Printf("❌ Erreur lecture adresses: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture adresses"})
		return
	}
	defer rows.Close()

	addresses := []models.Address{}
	for rows.Next() {
		var a models.Address
		if err := rows.Scan(&a.ID, &a.UserID, &a.Label, &a.Phone, &a.City, &a.Address,
			&a.House, &a.Floor, &a.Notes, &a.IsDefault, &a.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture adresses"})
			return
		}
		addresses = append(addresses, a)
	}

	c.JSON(http.StatusOK, gin.H{"addresses": addresses})
}

// AddAddress enregistre une nouvelle adresse de livraison
func AddAddress(c *gin.Context) {
	userID := c.GetString("user_id")

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ctx := context.Background()

	// une seule adresse par défaut à la fois
	if req.IsDefault {
		database.Postgres.ExecContext(ctx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1`, userID)
	}

	var a models.Address
	err := database.Postgres.QueryRowContext(ctx, `
		INSERT INTO addresses (user_id, label, phone, city, address, house, floor, notes, is_default)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+addressColumns,
		userID, req.Label, req.Phone, req.City, req.Address, req.House, req.Floor, req.Notes, req.IsDefault,
	).Scan(&a.ID, &a.UserID, &a.Label, &a.Phone, &a.City, &a.Address,
		&a.House, &a.Floor, &a.Notes, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		log.Printf("❌ Erreur création adresse: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création adresse"})
		return
	}

	c.JSON(http.StatusCreated, a)
}

// UpdateAddress modifie une adresse existante
func UpdateAddress(c *gin.Context) {
	userID := c.GetString("user_id")
	addressID := c.Param("id")

	var req addressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ctx := context.Background()
	if req.IsDefault {
		database.Postgres.ExecContext(ctx,
			`UPDATE addresses SET is_default = FALSE WHERE user_id = $1`, userID)
	}

	var a models.Address
	err := database.Postgres.QueryRowContext(ctx, `
		UPDATE addresses
		SET label = $3, phone = $4, city = $5, address = $6, house = $7, floor = $8, notes = $9, is_default = $10
		WHERE address_id = $1 AND user_id = $2
		RETURNING `+addressColumns,
		addressID, userID, req.Label, req.Phone, req.City, req.Address, req.House, req.Floor, req.Notes, req.IsDefault,
	).Scan(&a.ID, &a.UserID, &a.Label, &a.Phone, &a.City, &a.Address,
		&a.House, &a.Floor, &a.Notes, &a.IsDefault, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Adresse introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur mise à jour adresse: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour adresse"})
		return
	}

	c.JSON(http.StatusOK, a)
}

// DeleteAddress supprime une adresse
func DeleteAddress(c *gin.Context) {
	userID := c.GetString("user_id")

	res, err := database.Postgres.ExecContext(context.Background(),
		`DELETE FROM addresses WHERE address_id = $1 AND user_id = $2`,
		c.Param("id"), userID)
	if err != nil {
		log.Printf("❌ Erreur suppression adresse: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression adresse"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Adresse introuvable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
