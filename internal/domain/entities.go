package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Campus is immutable reference data for a university location, seeded once.
type Campus struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Latitude  float64            `bson:"latitude" json:"latitude"`
	Longitude float64            `bson:"longitude" json:"longitude"`
	Type      string             `bson:"type" json:"type"`
	Domain    string             `bson:"domain,omitempty" json:"domain,omitempty"`
}

const (
	CampusTypePublic  = "Public"
	CampusTypePrivate = "Private"
)

// RankedCampus is a campus annotated with its distance to a query point.
type RankedCampus struct {
	Campus
	DistanceKM float64 `json:"distance_km"`
}

type Event struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	Title            string             `bson:"title"`
	Description      string             `bson:"description"`
	CampusID         primitive.ObjectID `bson:"campus_id,omitempty"`
	Location         string             `bson:"location"`
	OpenTo           string             `bson:"open_to"`
	StartTime        *time.Time         `bson:"start_time,omitempty"`
	EndTime          *time.Time         `bson:"end_time,omitempty"`
	TicketPrice      float64            `bson:"ticket_price"`
	IsFree           bool               `bson:"is_free"`
	TicketsSold      int64              `bson:"tickets_sold"`
	ImageURL         string             `bson:"image_url,omitempty"`
	CreatedBy        string             `bson:"created_by"`
	CreatedAt        time.Time          `bson:"created_at"`
	IsCustomLocation bool               `bson:"is_custom_location"`
	ServiceFee       float64            `bson:"service_fee"`
}

// UserOptIn records which events a viewer has reserved, keyed by email.
// Events has set semantics: adding an id already present is a no-op.
type UserOptIn struct {
	Email  string               `bson:"email"`
	Events []primitive.ObjectID `bson:"events"`
}

// User is the registry entry written by the identity callback; its campus
// supplies the coordinate fallback for nearest-campus lookups.
type User struct {
	Email      string             `bson:"email"`
	Name       string             `bson:"name"`
	CampusID   primitive.ObjectID `bson:"university_id"`
	CampusName string             `bson:"university_name"`
	CreatedAt  time.Time          `bson:"created_at"`
}
