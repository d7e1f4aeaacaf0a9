package admin

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// GetAllMessages retourne les messages du support, non lus en premier
func GetAllMessages(c *gin.Context) {
	rows, err := database.Postgres.QueryContext(context.Background(), `
		SELECT message_id, user_id, subject, body, is_read, created_at
		FROM messages
		ORDER BY is_read ASC, created_at DESC`)
	if err != nil {
		log.Printf("❌ Erreur lecture messages: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture messages"})
		return
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Subject, &m.Body, &m.IsRead, &m.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture messages"})
			return
		}
		messages = append(messages, m)
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// ReplyToMessage répond à un message client et le marque comme lu
func ReplyToMessage(c *gin.Context) {
	messageID := c.Param("id")
	adminID := c.GetString("user_id")

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	ctx := context.Background()

	var r models.MessageReply
	err := database.Postgres.QueryRowContext(ctx, `
		INSERT INTO message_replies (message_id, admin_id, body)
		VALUES ($1, $2, $3)
		RETURNING reply_id, message_id, admin_id, body, created_at`,
		messageID, adminID, req.Body,
	).Scan(&r.ID, &r.MessageID, &r.AdminID, &r.Body, &r.CreatedAt)
	if err != nil {
		log.Printf("❌ Erreur réponse message %s: %v", messageID, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message introuvable"})
		return
	}

	database.Postgres.ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE WHERE message_id = $1`, messageID)

	c.JSON(http.StatusCreated, r)
}

// MarkMessageRead marque un message comme traité sans y répondre
func MarkMessageRead(c *gin.Context) {
	res, err := database.Postgres.ExecContext(context.Background(),
		`UPDATE messages SET is_read = TRUE WHERE message_id = $1`, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour message"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Message introuvable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
