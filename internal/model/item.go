package model

import "time"

// Item is a single pantry record. The whole collection is persisted as one
// document, so the struct carries no database tags.
type Item struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Category     Category  `json:"category"`
	Quantity     int       `json:"quantity"`
	Unit         string    `json:"unit,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	PurchaseDate time.Time `json:"purchase_date"`
	ExpiryDate   time.Time `json:"expiry_date"`
	CreatedAt    time.Time `json:"created_at"`
	Consumed     bool      `json:"consumed"`
}

// ItemDraft is an item proposed by the text extraction collaborator before it
// gets an id and concrete dates.
type ItemDraft struct {
	Name             string   `json:"name"`
	Category         Category `json:"category"`
	Quantity         int      `json:"quantity"`
	ExpiryOffsetDays int      `json:"expiry_offset_days"`
}
