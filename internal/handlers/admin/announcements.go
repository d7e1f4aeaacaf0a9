package admin

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

// CreateAnnouncement publie une annonce affichée en bannière sur le site
func CreateAnnouncement(c *gin.Context) {
	var req struct {
		Title  string `json:"title" binding:"required"`
		Body   string `json:"body" binding:"required"`
		Active *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	var a models.Announcement
	err := database.Postgres.QueryRowContext(context.Background(), `
		INSERT INTO announcements (title, body, active)
		VALUES ($1, $2, $3)
		RETURNING announcement_id, title, body, active, created_at, updated_at`,
		req.Title, req.Body, active,
	).Scan(&a.ID, &a.Title, &a.Body, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		log.Printf("❌ Erreur création annonce: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur création annonce"})
		return
	}

	log.Printf("📢 Annonce créée: %s", a.Title)
	c.JSON(http.StatusCreated, a)
}

// UpdateAnnouncement modifie une annonce existante
func UpdateAnnouncement(c *gin.Context) {
	var req struct {
		Title  string `json:"title" binding:"required"`
		Body   string `json:"body" binding:"required"`
		Active bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	var a models.Announcement
	err := database.Postgres.QueryRowContext(context.Background(), `
		UPDATE announcements
		SET title = $2, body = $3, active = $4, updated_at = NOW()
		WHERE announcement_id = $1
		RETURNING announcement_id, title, body, active, created_at, updated_at`,
		c.Param("id"), req.Title, req.Body, req.Active,
	).Scan(&a.ID, &a.Title, &a.Body, &a.Active, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}
	if err != nil {
		log.Printf("❌ Erreur mise à jour annonce: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour annonce"})
		return
	}

	c.JSON(http.StatusOK, a)
}

// DeleteAnnouncement supprime une annonce
func DeleteAnnouncement(c *gin.Context) {
	res, err := database.Postgres.ExecContext(context.Background(),
		`DELETE FROM announcements WHERE announcement_id = $1`, c.Param("id"))
	if err != nil {
		log.Printf("❌ Erreur suppression annonce: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression annonce"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Annonce introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListAnnouncements retourne toutes les annonces (vue admin)
func ListAnnouncements(c *gin.Context) {
	listAnnouncements(c, false)
}

// GetActiveAnnouncements retourne les annonces actives (vue publique)
func GetActiveAnnouncements(c *gin.Context) {
	listAnnouncements(c, true)
}

func listAnnouncements(c *gin.Context, activeOnly bool) {
	query := `SELECT announcement_id, title, body, active, created_at, updated_at
	          FROM announcements`
	if activeOnly {
		query += ` WHERE active`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := database.Postgres.QueryContext(context.Background(), query)
	if err != nil {
		log.Printf("❌ Erreur lecture annonces: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture annonces"})
		return
	}
	defer rows.Close()

	announcements := []models.Announcement{}
	for rows.Next() {
		var a models.Announcement
		if err := rows.Scan(&a.ID, &a.Title, &a.Body, &a.Active, &a.CreatedAt, &a.UpdatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture annonces"})
			return
		}
		announcements = append(announcements, a)
	}

	c.JSON(http.StatusOK, gin.H{"announcements": announcements})
}
