package models

import "time"

// Message : message interne utilisateur → admin
type Message struct {
	ID        string         `json:"id" db:"message_id"`
	UserID    string         `json:"user_id" db:"user_id"`
	Subject   string         `json:"subject" db:"subject"`
	Body      string         `json:"body" db:"body"`
	IsRead    bool           `json:"is_read" db:"is_read"`
	Replies   []MessageReply `json:"replies,omitempty"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

type MessageReply struct {
	ID        string    `json:"id" db:"reply_id"`
	MessageID string    `json:"message_id" db:"message_id"`
	AdminID   string    `json:"admin_id" db:"admin_id"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Announcement struct {
	ID        string    `json:"id" db:"announcement_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	Active    bool      `json:"active" db:"active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
