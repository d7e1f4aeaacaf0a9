package payement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/webhook"

	"velora_back_end/internal/database"
	"velora_back_end/internal/events"
	"velora_back_end/internal/orders"
	"velora_back_end/internal/utils"
)

const maxWebhookBody = 65536

// StripeWebhook reçoit les événements Stripe. Seul checkout.session.completed
// nous intéresse : il fait passer la commande de PENDING à PROCESSING.
// L'endpoint est idempotent, Stripe pouvant relivrer le même événement.
func StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Payload trop volumineux"})
		return
	}

	var event stripe.Event
	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret != "" {
		event, err = webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), secret)
		if err != nil {
			log.Printf("⚠️ Signature Stripe invalide: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Signature invalide"})
			return
		}
	} else {
		// Mode test : pas de secret configuré, on parse sans vérifier
		if err := json.Unmarshal(payload, &event); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payload invalide"})
			return
		}
	}

	if event.Type != "checkout.session.completed" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Printf("❌ Session Stripe illisible: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session invalide"})
		return
	}

	orderID := session.ClientReferenceID
	if orderID == "" {
		orderID = session.Metadata["order_id"]
	}
	if orderID == "" {
		log.Println("⚠️ Événement Stripe sans référence de commande")
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	ctx := context.Background()
	repo := orders.NewRepository(database.Postgres)

	// MarkPaid ne touche qu'aux commandes encore PENDING : une relivraison
	// tardive ne fait jamais reculer une commande déjà expédiée ou livrée.
	if _, err := repo.MarkPaid(ctx, orderID); err != nil {
		if errors.Is(err, orders.ErrAlreadyProcessed) {
			log.Printf("⚠️ Commande %s déjà traitée, événement ignoré", orderID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		if errors.Is(err, orders.ErrNotFound) {
			log.Printf("⚠️ Événement Stripe pour une commande inconnue: %s", orderID)
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}
		log.Printf("❌ Mise à jour de %s échouée: %v", orderID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur interne"})
		return
	}

	log.Printf("✅ Paiement confirmé pour la commande %s", orderID)

	events.Orders.PublishAsync(events.OrderEvent{
		Type:       "order.paid",
		OrderID:    orderID,
		Status:     string(orders.StatusProcessing),
		PrevStatus: string(orders.StatusPending),
	})

	// 📧 Confirmation + facture PDF en arrière-plan
	go func() {
		order, err := repo.GetByID(context.Background(), orderID)
		if err != nil {
			log.Printf("⚠️ Commande %s introuvable pour l'email: %v", orderID, err)
			return
		}
		if order.CustomerEmail == "" {
			return
		}
		pdf, err := utils.RenderInvoicePDF(order.ID, "")
		if err != nil {
			log.Printf("⚠️ Facture PDF non générée pour %s: %v", orderID, err)
			pdf = nil
		}
		html := utils.GenerateOrderConfirmationHTML(*order, order.CustomerEmail)
		if err := utils.SendConfirmationEmail(order.CustomerEmail, "Confirmation de votre commande Velora", html, pdf); err != nil {
			log.Printf("⚠️ Email de confirmation non envoyé pour %s: %v", orderID, err)
		}
	}()

	c.JSON(http.StatusOK, gin.H{"received": true})
}
