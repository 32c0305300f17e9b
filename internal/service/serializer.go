package service

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/somoapp/campus-events/internal/domain"
)

// OptInLookup answers whether a viewer has reserved an event. Small on
// purpose so tests can substitute a double for the Mongo repository.
type OptInLookup interface {
	HasEvent(ctx context.Context, email string, eventID primitive.ObjectID) (bool, error)
}

// EventResponse is the public shape of a stored event: ids as hex strings,
// timestamps as RFC 3339 or null, and a per-viewer reserved flag.
type EventResponse struct {
	ID               string  `json:"_id"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	CampusID         string  `json:"campus_id,omitempty"`
	Location         string  `json:"location"`
	OpenTo           string  `json:"open_to"`
	StartTime        *string `json:"start_time"`
	EndTime          *string `json:"end_time"`
	TicketPrice      float64 `json:"ticket_price"`
	IsFree           bool    `json:"is_free"`
	ImageURL         string  `json:"image_url"`
	CreatedBy        string  `json:"created_by"`
	CreatedAt        *string `json:"created_at"`
	TicketsSold      int64   `json:"tickets_sold"`
	IsCustomLocation bool    `json:"is_custom_location"`
	ServiceFee       float64 `json:"service_fee"`
	Reserved         bool    `json:"reserved"`
}

type EventSerializer struct {
	optins OptInLookup
}

func NewEventSerializer(optins OptInLookup) *EventSerializer {
	return &EventSerializer{optins: optins}
}

// Serialize maps a stored event for a viewer. Reserved is false without a
// viewer email or opt-in record; a failed lookup also reads as false rather
// than failing the whole response.
func (s *EventSerializer) Serialize(ctx context.Context, event domain.Event, viewerEmail string) EventResponse {
	reserved := false
	if viewerEmail != "" && s.optins != nil {
		if has, err := s.optins.HasEvent(ctx, viewerEmail, event.ID); err == nil {
			reserved = has
		}
	}

	campusID := ""
	if !event.CampusID.IsZero() {
		campusID = event.CampusID.Hex()
	}

	return EventResponse{
		ID:               event.ID.Hex(),
		Title:            event.Title,
		Description:      event.Description,
		CampusID:         campusID,
		Location:         event.Location,
		OpenTo:           event.OpenTo,
		StartTime:        isoTime(event.StartTime),
		EndTime:          isoTime(event.EndTime),
		TicketPrice:      event.TicketPrice,
		IsFree:           event.IsFree,
		ImageURL:         event.ImageURL,
		CreatedBy:        event.CreatedBy,
		CreatedAt:        isoTime(&event.CreatedAt),
		TicketsSold:      event.TicketsSold,
		IsCustomLocation: event.IsCustomLocation,
		ServiceFee:       event.ServiceFee,
		Reserved:         reserved,
	}
}

// SerializeAll looks up the opt-in set once per event. O(n) extra reads for
// n returned events; acceptable at this catalog's size.
func (s *EventSerializer) SerializeAll(ctx context.Context, events []domain.Event, viewerEmail string) []EventResponse {
	out := make([]EventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, s.Serialize(ctx, e, viewerEmail))
	}
	return out
}

func isoTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
