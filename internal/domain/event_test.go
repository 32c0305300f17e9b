package domain

import (
	"testing"
	"time"
)

func TestNewEvent_ServiceFee(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name   string
		draft  EventDraft
		price  float64
		fee    float64
		isFree bool
	}{
		{
			name:  "custom location above min fee",
			draft: EventDraft{Title: "Bash", TicketPrice: 1000, IsCustomLocation: true},
			price: 1000, fee: 100,
		},
		{
			name:  "custom location floor applies",
			draft: EventDraft{Title: "Bash", TicketPrice: 100, IsCustomLocation: true},
			price: 100, fee: 50,
		},
		{
			name:  "campus location no fee",
			draft: EventDraft{Title: "Bash", TicketPrice: 1000},
			price: 1000, fee: 0,
		},
		{
			name:  "free forces price zero",
			draft: EventDraft{Title: "Bash", TicketPrice: 500, IsFree: true},
			price: 0, fee: 0, isFree: true,
		},
		{
			name:  "free custom location still pays min fee",
			draft: EventDraft{Title: "Bash", TicketPrice: 500, IsFree: true, IsCustomLocation: true},
			price: 0, fee: 50, isFree: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := NewEvent(tc.draft, DefaultServiceFeeRate, DefaultMinServiceFee, "roy.murwa@strathmore.edu", now)
			if ev.TicketPrice != tc.price {
				t.Errorf("ticket price = %v, want %v", ev.TicketPrice, tc.price)
			}
			if ev.ServiceFee != tc.fee {
				t.Errorf("service fee = %v, want %v", ev.ServiceFee, tc.fee)
			}
			if ev.IsFree != tc.isFree {
				t.Errorf("is_free = %v, want %v", ev.IsFree, tc.isFree)
			}
			if ev.TicketsSold != 0 {
				t.Errorf("tickets_sold = %d, want 0", ev.TicketsSold)
			}
		})
	}
}

func TestNewEvent_Defaults(t *testing.T) {
	now := time.Now()

	ev := NewEvent(EventDraft{Title: "  Hackathon  ", Campus: "Strathmore University"}, DefaultServiceFeeRate, DefaultMinServiceFee, "a@b.edu", now)
	if ev.OpenTo != "everyone" {
		t.Errorf("open_to = %q, want everyone", ev.OpenTo)
	}
	if ev.Location != "Strathmore University" {
		t.Errorf("location = %q, want campus fallback", ev.Location)
	}
	if ev.Title != "Hackathon" {
		t.Errorf("title = %q, want trimmed", ev.Title)
	}
	if !ev.CreatedAt.Equal(now.UTC()) {
		t.Errorf("created_at = %v, want %v", ev.CreatedAt, now.UTC())
	}

	ev = NewEvent(EventDraft{Title: "Gala", Location: "KICC Rooftop", Campus: "UoN", OpenTo: "STUDENTS"}, DefaultServiceFeeRate, DefaultMinServiceFee, "a@b.edu", now)
	if ev.Location != "KICC Rooftop" {
		t.Errorf("location = %q, explicit location must win over campus", ev.Location)
	}
	if ev.OpenTo != "students" {
		t.Errorf("open_to = %q, want lower-cased", ev.OpenTo)
	}
}
