package entity

import "time"

// Location is a geocoded coordinate pair
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is owned by exactly one User through Creator.
type Place struct {
	ID          string
	Title       string
	Description string
	Address     string
	Image       string
	Location    Location
	Creator     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
