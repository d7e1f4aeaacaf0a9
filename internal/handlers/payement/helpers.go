package payement

import (
	"context"
	"encoding/json"
	"errors"
	"math"

	"velora_back_end/internal/database"
	"velora_back_end/internal/models"
)

// eurCents convertit un prix en euros vers des centimes Stripe.
// Arrondi, pas troncature : 19.99 stocké en float64 vaut 19.989999…,
// tronquer facturerait 1998 centimes et le total Stripe décrocherait
// du total de la commande.
func eurCents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// loadCart récupère le panier Redis d'un utilisateur connecté
func loadCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	data, err := database.Redis.Get(ctx, "cart:"+userID).Result()
	if err != nil || data == "" {
		return nil, errors.New("panier vide ou introuvable")
	}

	var items []models.CartItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil, errors.New("erreur lecture panier")
	}
	return items, nil
}

// clearCart vide le panier et notifie les sessions WebSocket ouvertes
func clearCart(ctx context.Context, userID string) {
	database.Redis.Del(ctx, "cart:"+userID)
	database.Redis.Publish(ctx, "cart:"+userID, "cleared")
}
