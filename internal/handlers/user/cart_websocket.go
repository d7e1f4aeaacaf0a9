package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"velora_back_end/internal/database"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// CartWebSocket pousse le panier à chaque modification, via Redis pub/sub.
// Un onglet qui ajoute un article met ainsi à jour tous les autres.
func CartWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()

	pubsub := database.Redis.Subscribe(ctx, cartKey(userID))
	defer pubsub.Close()
	ch := pubsub.Channel()

	conn.WriteJSON(gin.H{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	// Boucle de lecture dédiée : on ignore ce que le client envoie, mais il
	// faut pomper la connexion pour traiter pongs et trames de fermeture.
	// Sans elle, un client parti n'est détecté qu'à la prochaine écriture.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return

		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != "updated" && msg.Payload != "cleared" {
				continue
			}

			items, err := readCart(ctx, userID)
			if err != nil {
				log.Printf("⚠️ Erreur lecture panier pour WebSocket: %v", err)
				continue
			}

			total := 0.0
			for _, item := range items {
				total += item.Price * float64(item.Quantity)
			}

			if err := conn.WriteJSON(gin.H{
				"type":  "cart_updated",
				"items": items,
				"total": total,
				"count": len(items),
			}); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}

		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
