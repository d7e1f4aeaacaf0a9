package user

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// CreateMessage envoie un message au support
func CreateMessage(c *gin.Context) {
	userID := c.GetString("user_id")

	var req struct {
		Subject string `json:"subject" binding:"required"`
		Body    string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	var m models.Message
	err := database.Postgres.QueryRowContext(context.Background(), `
		INSERT INTO messages (user_id, subject, body)
		VALUES ($1, $2, $3)
		RETURNING message_id, user_id, subject, body, is_read, created_at`,
		userID, req.Subject, req.Body,
	).Scan(&m.ID, &m.UserID, &m.Subject, &m.Body, &m.IsRead, &m.CreatedAt)
	if err != nil {
		log.Printf("❌ Erreur création message: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur envoi message"})
		return
	}

	c.JSON(http.StatusCreated, m)
}

// GetMyMessages retourne les messages de l'utilisateur avec leurs réponses
func GetMyMessages(c *gin.Context) {
	userID := c.GetString("user_id")
	ctx := context.Background()

	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT message_id, user_id, subject, body, is_read, created_at
		FROM messages
		WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
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

	for i := range messages {
		replies, err := loadReplies(ctx, messages[i].ID)
		if err != nil {
			log.Printf("⚠️ Réponses non chargées pour %s: %v", messages[i].ID, err)
			continue
		}
		messages[i].Replies = replies
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func loadReplies(ctx context.Context, messageID string) ([]models.MessageReply, error) {
	rows, err := database.Postgres.QueryContext(ctx, `
		SELECT reply_id, message_id, admin_id, body, created_at
		FROM message_replies
		WHERE message_id = $1
		ORDER BY created_at`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	replies := []models.MessageReply{}
	for rows.Next() {
		var r models.MessageReply
		if err := rows.Scan(&r.ID, &r.MessageID, &r.AdminID, &r.Body, &r.CreatedAt); err != nil {
			return nil, err
		}
		replies = append(replies, r)
	}
	return replies, nil
}
