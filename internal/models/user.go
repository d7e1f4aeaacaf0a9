package models

import "time"

type User struct {
	ID        string    `json:"id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Password  string    `json:"-" db:"password_hash"`
	Role      string    `json:"role" db:"role"` // "customer" ou "admin"
	Provider  string    `json:"provider" db:"provider"`
	AvatarURL string    `json:"avatar_url,omitempty" db:"avatar_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Address struct {
	ID        string    `json:"id" db:"address_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Label     string    `json:"label" db:"label"`
	Phone     string    `json:"phone" db:"phone"`
	City      string    `json:"city" db:"city"`
	Address   string    `json:"address" db:"address"`
	House     string    `json:"house,omitempty" db:"house"`
	Floor     string    `json:"floor,omitempty" db:"floor"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
	IsDefault bool      `json:"is_default" db:"is_default"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
