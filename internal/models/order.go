package models

import "time"

type Order struct {
	ID             string      `json:"id" db:"order_id"`
	UserID         string      `json:"user_id,omitempty" db:"user_id"`
	Status         string      `json:"status" db:"status"`
	TotalPrice     float64     `json:"total_price" db:"total_price"`
	PaymentMethod  string      `json:"payment_method" db:"payment_method"` // "stripe" ou "manual"
	PaymentID      string      `json:"payment_id,omitempty" db:"payment_id"`
	TransactionRef string      `json:"transaction_ref,omitempty" db:"transaction_ref"`
	PayerPhone     string      `json:"payer_phone,omitempty" db:"payer_phone"`
	CustomerName   string      `json:"customer_name" db:"customer_name"`
	CustomerEmail  string      `json:"customer_email" db:"customer_email"`
	Phone          string      `json:"phone" db:"phone"`
	City           string      `json:"city" db:"city"`
	Address        string      `json:"address" db:"address"`
	House          string      `json:"house,omitempty" db:"house"`
	Floor          string      `json:"floor,omitempty" db:"floor"`
	Notes          string      `json:"notes,omitempty" db:"notes"`
	Items          []OrderItem `json:"items"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem : snapshot immuable d'une ligne de panier au moment du checkout.
// Le prix est copié depuis le panier, jamais relu depuis le produit.
type OrderItem struct {
	ID              string            `json:"id" db:"item_id"`
	OrderID         string            `json:"order_id" db:"order_id"`
	ProductID       string            `json:"product_id" db:"product_id"`
	ProductName     string            `json:"product_name" db:"product_name"`
	Quantity        int               `json:"quantity" db:"quantity"`
	Price           float64           `json:"price" db:"price"`
	SelectedOptions map[string]string `json:"selected_options,omitempty"`
}
