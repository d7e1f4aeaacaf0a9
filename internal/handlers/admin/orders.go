package admin

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
	"velora_back_end/internal/events"
	"velora_back_end/internal/models"
	"velora_back_end/internal/orders"
	"velora_back_end/internal/utils"
)

// GetAllOrders retourne les commandes pour l'admin, filtrables par statut
func GetAllOrders(c *gin.Context) {
	status := c.Query("status")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	repo := orders.NewRepository(database.Postgres)
	list, err := repo.List(context.Background(), status, limit, offset)
	if err != nil {
		log.Printf("❌ Erreur lecture commandes: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commandes"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list, "count": len(list)})
}

// GetOrder retourne une commande complète (items inclus) pour l'admin
func GetOrder(c *gin.Context) {
	repo := orders.NewRepository(database.Postgres)
	order, err := repo.GetByID(context.Background(), c.Param("id"))
	if err != nil {
		if errors.Is(err, orders.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur lecture commande"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus fait avancer (ou annule) une commande. Les effets de
// stock sont gérés dans le repository : annuler rend le stock, dé-annuler
// le re-réserve et échoue si un autre client l'a pris entre-temps.
func UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	to := orders.Status(req.Status)
	if !to.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Statut invalide",
			"valid_statuses": orders.AllStatuses,
		})
		return
	}

	repo := orders.NewRepository(database.Postgres)
	order, err := repo.UpdateStatus(context.Background(), orderID, to)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		default:
			var invalid *orders.InvalidTransitionError
			var stockErr *orders.StockError
			if errors.As(err, &invalid) {
				c.JSON(http.StatusBadRequest, gin.H{
					"error": "Transition invalide",
					"from":  string(invalid.From),
					"to":    string(invalid.To),
				})
				return
			}
			if errors.As(err, &stockErr) {
				// Dé-annulation refusée : le stock est parti ailleurs
				c.JSON(http.StatusBadRequest, gin.H{
					"error":     "Stock insuffisant pour réactiver la commande",
					"product":   stockErr.ProductName,
					"available": stockErr.Available,
					"requested": stockErr.Requested,
				})
				return
			}
			log.Printf("❌ Erreur mise à jour commande %s: %v", orderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur mise à jour commande"})
		}
		return
	}

	log.Printf("✅ Commande %s mise à jour: %s", orderID, to)

	events.Orders.PublishAsync(events.OrderEvent{
		Type:    "order.status_changed",
		OrderID: order.ID,
		Status:  string(to),
		Total:   order.TotalPrice,
	})

	// Notification email au client (async)
	if order.CustomerEmail != "" {
		go func(o models.Order) {
			if err := utils.SendOrderStatusEmail(o, o.CustomerEmail, string(to)); err != nil {
				log.Printf("⚠️ Erreur envoi email notification: %v", err)
			}
		}(*order)
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": order.ID,
		"status":   order.Status,
	})
}

// DeleteOrder supprime définitivement une commande terminée ou annulée
func DeleteOrder(c *gin.Context) {
	orderID := c.Param("id")

	repo := orders.NewRepository(database.Postgres)
	if err := repo.Delete(context.Background(), orderID); err != nil {
		switch {
		case errors.Is(err, orders.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Commande introuvable"})
		case errors.Is(err, orders.ErrNotDeletable):
			c.JSON(http.StatusConflict, gin.H{"error": "Seules les commandes terminées ou annulées peuvent être supprimées"})
		default:
			log.Printf("❌ Erreur suppression commande %s: %v", orderID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur suppression commande"})
		}
		return
	}

	log.Printf("🗑️ Commande %s supprimée", orderID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
