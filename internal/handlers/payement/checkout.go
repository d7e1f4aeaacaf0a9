package payement

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/checkout/session"

	"velora_back_end/internal/database"
	"velora_back_end/internal/events"
	"velora_back_end/internal/models"
	"velora_back_end/internal/orders"
)

type checkoutRequest struct {
	// Coordonnées de livraison
	Phone   string `json:"phone" binding:"required"`
	City    string `json:"city" binding:"required"`
	Address string `json:"address" binding:"required"`
	House   string `json:"house"`
	Floor   string `json:"floor"`
	Notes   string `json:"notes"`

	// Invité uniquement
	Email string `json:"email"`
	Name  string `json:"name"`

	// Invité uniquement : panier local. Pour un utilisateur connecté le
	// panier vient de Redis, jamais du body.
	Items []models.CartItem `json:"items"`
}

// Checkout réserve le stock, crée la commande PENDING et ouvre une session
// de paiement Stripe. L'appel Stripe est volontairement HORS de la
// transaction de réservation : en cas d'échec du prestataire, une
// transaction de compensation rend le stock et supprime la commande.
func Checkout(c *gin.Context) {
	var req checkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Données invalides", "details": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	email := c.GetString("email")
	if email == "" {
		email = req.Email
	}

	ctx := context.Background()

	items := req.Items
	if userID != "" {
		var err error
		items, err = loadCart(ctx, userID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide ou introuvable"})
			return
		}
	}

	repo := orders.NewRepository(database.Postgres)
	order, err := repo.CreateOrder(ctx, orders.CheckoutInput{
		UserID:        userID,
		CustomerName:  req.Name,
		CustomerEmail: email,
		Phone:         req.Phone,
		City:          req.City,
		Address:       req.Address,
		House:         req.House,
		Floor:         req.Floor,
		Notes:         req.Notes,
		PaymentMethod: "stripe",
		Items:         items,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	// ✅ Session Stripe Checkout — l'order_id sert de référence marchande
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(order.ID),
		SuccessURL:        stripe.String(frontendURL() + "/checkout/success?order=" + order.ID),
		CancelURL:         stripe.String(frontendURL() + "/checkout/cancel?order=" + order.ID),
	}
	if email != "" {
		params.CustomerEmail = stripe.String(email)
	}
	for _, item := range items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			Quantity: stripe.Int64(int64(item.Quantity)),
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("eur"),
				UnitAmount: stripe.Int64(eurCents(item.Price)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
		})
	}
	params.AddMetadata("order_id", order.ID)
	if userID != "" {
		params.AddMetadata("user_id", userID)
	}

	s, err := session.New(params)
	if err != nil || s.URL == "" {
		log.Printf("❌ Erreur Stripe, rollback de la commande %s: %v", order.ID, err)
		if rbErr := repo.Rollback(ctx, order.ID); rbErr != nil {
			log.Printf("❌ Rollback de %s échoué: %v", order.ID, rbErr)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Erreur création paiement"})
		return
	}

	if err := repo.SetPaymentID(ctx, order.ID, s.ID); err != nil {
		log.Printf("⚠️ payment_id non enregistré pour %s: %v", order.ID, err)
	}

	if userID != "" {
		clearCart(ctx, userID)
	}

	events.Orders.PublishAsync(events.OrderEvent{
		Type:    "order.created",
		OrderID: order.ID,
		Status:  order.Status,
		Total:   order.TotalPrice,
	})

	log.Printf("💳 Checkout créé: commande %s (%.2f€), session %s", order.ID, order.TotalPrice, s.ID)

	c.JSON(http.StatusOK, gin.H{
		"order_id":     order.ID,
		"checkout_url": s.URL,
		"payment_id":   s.ID,
		"amount":       order.TotalPrice,
		"currency":     "eur",
		"items_count":  len(order.Items),
	})
}

// respondCheckoutError mappe les erreurs du repository vers des réponses HTTP
func respondCheckoutError(c *gin.Context, err error) {
	var stockErr *orders.StockError
	if errors.As(err, &stockErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Stock insuffisant",
			"product":   stockErr.ProductName,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
		return
	}

	var notFound *orders.ProductNotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Produit introuvable: " + notFound.ProductID})
		return
	}

	if errors.Is(err, orders.ErrEmptyCart) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Panier vide"})
		return
	}

	log.Printf("❌ Erreur checkout: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
}

func frontendURL() string {
	u := os.Getenv("FRONTEND_URL")
	if u == "" {
		return "http://localhost:5173"
	}
	return u
}
