package domain

import "math"

// Product is a read-only snapshot of one catalog entry as served by the
// remote catalog source. This core never writes products back.
type Product struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	CategoryID  int64   `json:"category_id"`
	Stock       int     `json:"stock"`
	Published   bool    `json:"published"`
}

// Category represents a product category
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LocalizedProduct is a Product whose text fields are in the requested
// display language. Derived per localization run, never persisted.
type LocalizedProduct struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	CategoryID  int64   `json:"category_id"`
	Stock       int     `json:"stock"`
	Language    string  `json:"language"`
}

// MinorUnits converts a catalog price to minor currency units (cents).
// Cart line items carry unit prices in minor units captured at add time.
func MinorUnits(price float64) int64 {
	return int64(math.Round(price * 100))
}
