package events

import "time"

const (
	PlaceCreated = "place.created"
	PlaceUpdated = "place.updated"
	PlaceDeleted = "place.deleted"
)

// PlaceEvent is the JSON payload put on the RabbitMQ queue after a place
// write has committed. Place is omitted for deletions.
type PlaceEvent struct {
	Type       string         `json:"type"`
	PlaceID    string         `json:"place_id"`
	Creator    string         `json:"creator"`
	Place      *PlaceDocument `json:"place,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// PlaceDocument is the public representation of a place, shared by the HTTP
// responses, the search index and events.
type PlaceDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Address     string   `json:"address"`
	Image       string   `json:"image"`
	Location    Location `json:"location"`
	Creator     string   `json:"creator"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
