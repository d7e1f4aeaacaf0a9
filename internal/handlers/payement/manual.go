package payement

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"velora_back_end/internal/database"
	"velora_back_end/internal/events"
	"velora_back_end/internal/models"
	"velora_back_end/internal/orders"
	"velora_back_end/internal/utils"
)

type manualPaymentRequest struct {
	Phone   string `json:"phone" binding:"required"`
	City    string `json:"city" binding:"required"`
	Address string `json:"address" binding:"required"`
	House   string `json:"house"`
	Floor   string `json:"floor"`
	Notes   string `json:"notes"`

	// Référence du virement/paiement communiquée par le client
	PayerPhone     string `json:"payer_phone" binding:"required"`
	TransactionRef string `json:"transaction_ref" binding:"required"`

	Email string `json:"email"`
	Name  string `json:"name"`

	Items []models.CartItem `json:"items"`
}

// ManualPayment crée une commande payée hors ligne (virement, cash, etc.).
// Le stock est réservé immédiatement ; un admin validera ensuite la commande
// en la passant en PROCESSING depuis le dashboard.
func ManualPayment(c *gin.Context) {
	var req manualPaymentRequest
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
		UserID:         userID,
		CustomerName:   req.Name,
		CustomerEmail:  email,
		Phone:          req.Phone,
		City:           req.City,
		Address:        req.Address,
		House:          req.House,
		Floor:          req.Floor,
		Notes:          req.Notes,
		PaymentMethod:  "manual",
		PayerPhone:     req.PayerPhone,
		TransactionRef: req.TransactionRef,
		Items:          items,
	})
	if err != nil {
		respondCheckoutError(c, err)
		return
	}

	if userID != "" {
		clearCart(ctx, userID)
	}

	// 📤 Notifications Discord/Telegram — fire and forget
	utils.NotifyNewOrder(*order)

	// 📧 Facture avec QR SEPA pour que le client fasse son virement
	if email != "" {
		go sendManualPaymentInvoice(*order, email)
	}

	events.Orders.PublishAsync(events.OrderEvent{
		Type:    "order.created",
		OrderID: order.ID,
		Status:  order.Status,
		Total:   order.TotalPrice,
	})

	log.Printf("💳 Commande manuelle %s créée (%.2f€, réf %s)", order.ID, order.TotalPrice, req.TransactionRef)

	c.JSON(http.StatusOK, gin.H{
		"order_id": order.ID,
		"status":   order.Status,
		"amount":   order.TotalPrice,
		"message":  "Commande enregistrée, en attente de validation du paiement",
	})
}

func sendManualPaymentInvoice(order models.Order, email string) {
	qr := ""
	if iban := os.Getenv("SHOP_IBAN"); iban != "" {
		var err error
		qr, err = utils.GenerateSepaQR(iban, os.Getenv("SHOP_BIC"), "Velora", order.ID, order.TotalPrice)
		if err != nil {
			log.Printf("⚠️ QR SEPA non généré pour %s: %v", order.ID, err)
		}
	}

	pdf, err := utils.RenderInvoicePDF(order.ID, qr)
	if err != nil {
		log.Printf("⚠️ Facture PDF non générée pour %s: %v", order.ID, err)
		pdf = nil
	}

	html := utils.GenerateOrderConfirmationHTML(order, email)
	if err := utils.SendConfirmationEmail(email, "Votre commande Velora — instructions de paiement", html, pdf); err != nil {
		log.Printf("⚠️ Email facture non envoyé pour %s: %v", order.ID, err)
	}
}
