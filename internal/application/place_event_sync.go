package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oksasatya/go-places-api/pkg/events"
)

// ErrBadEvent marks a message that can never be applied; it should be
// dropped rather than redelivered.
var ErrBadEvent = errors.New("bad place event")

// PlaceEventSync applies place events from the broker to the search index.
type PlaceEventSync struct {
	Index PlaceIndexer
}

func NewPlaceEventSync(index PlaceIndexer) *PlaceEventSync {
	return &PlaceEventSync{Index: index}
}

// Handle decodes one event body and updates the index at the event's
// version, so an event older than what the index holds changes nothing.
// Errors wrapping ErrBadEvent are permanent; anything else may succeed on retry.
func (s *PlaceEventSync) Handle(ctx context.Context, body []byte) (events.PlaceEvent, error) {
	var ev events.PlaceEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	if ev.PlaceID == "" {
		return ev, fmt.Errorf("%w: missing place_id", ErrBadEvent)
	}
	if ev.OccurredAt.IsZero() {
		return ev, fmt.Errorf("%w: missing occurred_at", ErrBadEvent)
	}
	// redelivered or reordered events lose against newer index writes
	version := ev.OccurredAt.UnixNano()

	switch ev.Type {
	case events.PlaceCreated, events.PlaceUpdated:
		if ev.Place == nil {
			return ev, fmt.Errorf("%w: %s without place", ErrBadEvent, ev.Type)
		}
		p := FromDocument(*ev.Place)
		p.ID = ev.PlaceID
		return ev, s.Index.IndexPlace(ctx, p, version)
	case events.PlaceDeleted:
		return ev, s.Index.DeletePlace(ctx, ev.PlaceID, version)
	default:
		return ev, fmt.Errorf("%w: unknown type %q", ErrBadEvent, ev.Type)
	}
}
