package domain

import (
	"math"
	"strings"
	"time"
)

const (
	DefaultServiceFeeRate = 0.10
	DefaultMinServiceFee  = 50.0

	DefaultOpenTo = "everyone"
)

// EventDraft carries the already-decoded fields of a create request.
// Malformed optional input is normalized at the HTTP boundary before it
// reaches here; the draft never fails to build an event.
type EventDraft struct {
	Title            string
	Description      string
	Campus           string
	Location         string
	ImageURL         string
	OpenTo           string
	StartTime        *time.Time
	EndTime          *time.Time
	IsFree           bool
	TicketPrice      float64
	IsCustomLocation bool
}

// NewEvent normalizes a draft into a persistable event. A free event always
// has a zero price; the service fee applies only to custom locations and is
// frozen at creation time.
func NewEvent(d EventDraft, feeRate, minFee float64, createdBy string, now time.Time) Event {
	openTo := strings.ToLower(strings.TrimSpace(d.OpenTo))
	if openTo == "" {
		openTo = DefaultOpenTo
	}

	location := d.Location
	if location == "" {
		location = d.Campus
	}

	price := d.TicketPrice
	if d.IsFree || price < 0 {
		price = 0
	}

	fee := 0.0
	if d.IsCustomLocation {
		fee = math.Max(minFee, math.Round(price*feeRate*100)/100)
	}

	return Event{
		Title:            strings.TrimSpace(d.Title),
		Description:      strings.TrimSpace(d.Description),
		Location:         location,
		OpenTo:           openTo,
		StartTime:        d.StartTime,
		EndTime:          d.EndTime,
		TicketPrice:      price,
		IsFree:           d.IsFree,
		TicketsSold:      0,
		ImageURL:         d.ImageURL,
		CreatedBy:        createdBy,
		CreatedAt:        now.UTC(),
		IsCustomLocation: d.IsCustomLocation,
		ServiceFee:       fee,
	}
}
