package models

import "time"

type Product struct {
	ID                string    `json:"id" db:"product_id"`
	Name              string    `json:"name" db:"name"`
	Description       string    `json:"description" db:"description"`
	Price             float64   `json:"price" db:"price"`
	Stock             int       `json:"stock" db:"stock"`
	LowStockThreshold int       `json:"low_stock_threshold" db:"low_stock_threshold"`
	SKU               string    `json:"sku" db:"sku"`
	Category          string    `json:"category" db:"category"`
	ImageURLs         []string  `json:"image_urls" db:"image_urls"`
	Tags              []string  `json:"tags" db:"tags"`
	Archived          bool      `json:"archived" db:"archived"`
	HasVariants       bool      `json:"has_variants" db:"has_variants"`
	Options           []Option  `json:"options,omitempty"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" db:"updated_at"`
}

// Option : déclinaison d'un produit (ex: "Couleur", "Taille")
type Option struct {
	ID        string        `json:"id" db:"option_id"`
	ProductID string        `json:"product_id" db:"product_id"`
	Name      string        `json:"name" db:"name"`
	Position  int           `json:"position" db:"position"`
	Values    []OptionValue `json:"values,omitempty"`
}

// OptionValue : valeur choisissable d'une option, avec image facultative
type OptionValue struct {
	ID       string `json:"id" db:"value_id"`
	OptionID string `json:"option_id" db:"option_id"`
	Value    string `json:"value" db:"value"`
	ImageURL string `json:"image_url,omitempty" db:"image_url"`
}

type StockMovement struct {
	ID        string    `json:"id" db:"movement_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Type      string    `json:"type" db:"type"` // "restock", "adjustment", "order", "cancellation"
	Quantity  int       `json:"quantity" db:"quantity"`
	PrevStock int       `json:"prev_stock" db:"prev_stock"`
	NewStock  int       `json:"new_stock" db:"new_stock"`
	Reason    string    `json:"reason" db:"reason"`
	UserID    string    `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
