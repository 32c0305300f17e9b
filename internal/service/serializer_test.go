package service

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/somoapp/campus-events/internal/domain"
)

type fakeOptIns struct {
	byEmail map[string][]primitive.ObjectID
}

func (f *fakeOptIns) HasEvent(_ context.Context, email string, eventID primitive.ObjectID) (bool, error) {
	for _, id := range f.byEmail[email] {
		if id == eventID {
			return true, nil
		}
	}
	return false, nil
}

func TestSerialize_ReservedFlag(t *testing.T) {
	eventID := primitive.NewObjectID()
	lookup := &fakeOptIns{byEmail: map[string][]primitive.ObjectID{
		"jane@uonbi.ac.ke": {eventID},
	}}
	s := NewEventSerializer(lookup)
	event := domain.Event{ID: eventID, Title: "Campus Bash"}

	if got := s.Serialize(context.Background(), event, "jane@uonbi.ac.ke"); !got.Reserved {
		t.Error("expected reserved=true for opted-in viewer")
	}
	if got := s.Serialize(context.Background(), event, "someone@ku.ac.ke"); got.Reserved {
		t.Error("expected reserved=false for other viewer")
	}
	if got := s.Serialize(context.Background(), event, ""); got.Reserved {
		t.Error("expected reserved=false without viewer identity")
	}
}

func TestSerialize_Shapes(t *testing.T) {
	start := time.Date(2026, 9, 12, 18, 0, 0, 0, time.UTC)
	created := time.Date(2026, 8, 30, 10, 30, 0, 0, time.UTC)
	event := domain.Event{
		ID:               primitive.NewObjectID(),
		Title:            "Hackathon Nairobi",
		Location:         "Strathmore University",
		OpenTo:           "everyone",
		StartTime:        &start,
		CreatedAt:        created,
		TicketPrice:      500,
		TicketsSold:      24,
		IsCustomLocation: true,
		ServiceFee:       50,
	}

	got := NewEventSerializer(&fakeOptIns{}).Serialize(context.Background(), event, "")

	if got.ID != event.ID.Hex() {
		t.Errorf("id = %q, want hex string", got.ID)
	}
	if got.StartTime == nil || *got.StartTime != "2026-09-12T18:00:00Z" {
		t.Errorf("start_time = %v, want RFC3339", got.StartTime)
	}
	if got.EndTime != nil {
		t.Errorf("end_time = %v, want nil for absent timestamp", got.EndTime)
	}
	if got.CreatedAt == nil || *got.CreatedAt != "2026-08-30T10:30:00Z" {
		t.Errorf("created_at = %v", got.CreatedAt)
	}
	if got.TicketsSold != 24 || got.TicketPrice != 500 || got.ServiceFee != 50 {
		t.Errorf("numeric fields mangled: %+v", got)
	}
	if got.CampusID != "" {
		t.Errorf("campus_id = %q, want empty for zero id", got.CampusID)
	}
}

func TestSerializeAll_EmptyInput(t *testing.T) {
	got := NewEventSerializer(&fakeOptIns{}).SerializeAll(context.Background(), nil, "")
	if got == nil || len(got) != 0 {
		t.Errorf("want non-nil empty slice, got %v", got)
	}
}
