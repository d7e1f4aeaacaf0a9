package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"velora_back_end/internal/models"
)

var webhookClient = &http.Client{Timeout: 5 * time.Second}

// NotifyNewOrder envoie le résumé d'une commande sur Discord et Telegram.
// Fire-and-forget : les échecs sont juste loggés, jamais remontés au client.
func NotifyNewOrder(order models.Order) {
	summary := orderSummary(order)
	go notifyDiscord(summary, order)
	go notifyTelegram(summary)
}

// NotifyLowStock alerte quand un produit passe sous son seuil
func NotifyLowStock(productName string, stock, threshold int) {
	msg := fmt.Sprintf("⚠️ Stock faible : %s — %d restant(s) (seuil %d)", productName, stock, threshold)
	go notifyDiscord(msg, models.Order{})
	go notifyTelegram(msg)
}

func orderSummary(order models.Order) string {
	lines := fmt.Sprintf("🛒 Nouvelle commande #%s — %.2f€ (%s)\n",
		shortID(order.ID), order.TotalPrice, order.PaymentMethod)
	for _, item := range order.Items {
		lines += fmt.Sprintf("• %s ×%d — %.2f€\n", item.ProductName, item.Quantity, item.Price)
	}
	lines += fmt.Sprintf("📍 %s, %s", order.City, order.Address)
	return lines
}

func notifyDiscord(content string, order models.Order) {
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")
	if webhookURL == "" {
		return
	}

	payload := map[string]any{"content": content}
	if order.ID != "" {
		payload = map[string]any{
			"embeds": []map[string]any{{
				"title":       "Nouvelle commande #" + shortID(order.ID),
				"description": content,
				"color":       3066993, // vert
			}},
		}
	}

	body, _ := json.Marshal(payload)
	resp, err := webhookClient.Post(webhookURL, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ Webhook Discord injoignable: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️ Webhook Discord a répondu %d", resp.StatusCode)
	}
}

func notifyTelegram(text string) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		return
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", token)
	body, _ := json.Marshal(map[string]string{
		"chat_id": chatID,
		"text":    text,
	})

	resp, err := webhookClient.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("⚠️ Webhook Telegram injoignable: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("⚠️ Webhook Telegram a répondu %d", resp.StatusCode)
	}
}

// TrackingURL construit le lien de suivi de commande côté front
func TrackingURL(orderID string) string {
	base := os.Getenv("FRONTEND_URL")
	if base == "" {
		base = "http://localhost:5173"
	}
	q := url.Values{}
	q.Set("order", orderID)
	return base + "/orders?" + q.Encode()
}
