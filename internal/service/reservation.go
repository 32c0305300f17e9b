package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	mongoadapter "github.com/somoapp/campus-events/internal/adapters/mongo"
	"github.com/somoapp/campus-events/internal/adapters/rabbit"
	"github.com/somoapp/campus-events/internal/domain"
	"github.com/somoapp/campus-events/internal/observability"
)

type ReserveStatus string

const (
	StatusReserved        ReserveStatus = "reserved"
	StatusAlreadyReserved ReserveStatus = "already_reserved"
)

type ReservationService struct {
	events *mongoadapter.EventRepository
	optins *mongoadapter.OptInRepository
	pub    *rabbit.Publisher
	logger observability.Logger
}

func NewReservationService(
	events *mongoadapter.EventRepository,
	optins *mongoadapter.OptInRepository,
	pub *rabbit.Publisher,
	logger observability.Logger,
) *ReservationService {
	return &ReservationService{events: events, optins: optins, pub: pub, logger: logger}
}

// Reserve opts a viewer into an event and sells one ticket. The opt-in write
// is the sole gate for the counter: tickets_sold increments only when the
// event id was actually added to the viewer's set, so a double submit leaves
// the counter at exactly +1.
func (s *ReservationService) Reserve(ctx context.Context, eventID, email string) (ReserveStatus, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", domain.ErrMissingEmail
	}

	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return "", domain.ErrNotFound
	}

	if _, err := s.events.FindByID(ctx, oid); err != nil {
		return "", err
	}

	added, err := s.optins.AddEvent(ctx, email, oid)
	if err != nil {
		return "", err
	}
	if !added {
		observability.ReservationsTotal.WithLabelValues("duplicate").Inc()
		return StatusAlreadyReserved, nil
	}

	if err := s.events.IncrementTicketsSold(ctx, oid); err != nil {
		// Opt-in landed but the counter did not: surfaced, not retried.
		return "", err
	}

	observability.ReservationsTotal.WithLabelValues("reserved").Inc()
	s.publish(ctx, "event.reserved", map[string]interface{}{
		"event_id": oid.Hex(),
		"email":    email,
	})
	return StatusReserved, nil
}

// RegisterTicket bumps tickets_sold without opt-in bookkeeping, for callers
// that do not track reservation identity. No idempotence guarantee: a retry
// counts twice.
func (s *ReservationService) RegisterTicket(ctx context.Context, eventID string) error {
	oid, err := primitive.ObjectIDFromHex(eventID)
	if err != nil {
		return domain.ErrNotFound
	}

	if _, err := s.events.FindByID(ctx, oid); err != nil {
		return err
	}
	if err := s.events.IncrementTicketsSold(ctx, oid); err != nil {
		return err
	}
	observability.ReservationsTotal.WithLabelValues("ticket").Inc()
	return nil
}

// ListOptIns returns the viewer's reserved event ids as hex strings. An
// unknown email is an empty list, not an error.
func (s *ReservationService) ListOptIns(ctx context.Context, email string) ([]string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, domain.ErrMissingEmail
	}

	optin, err := s.optins.Get(ctx, email)
	if err == domain.ErrNotFound {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(optin.Events))
	for _, id := range optin.Events {
		ids = append(ids, id.Hex())
	}
	return ids, nil
}

func (s *ReservationService) publish(ctx context.Context, key string, payload map[string]interface{}) {
	if s.pub == nil {
		return
	}
	body, _ := json.Marshal(payload)
	msg := amqp.Publishing{
		MessageId:   uuid.New().String(),
		ContentType: "application/json",
		Body:        body,
	}
	if err := s.pub.Publish(ctx, key, msg); err != nil {
		s.logger.Warn("failed to publish ", key, ": ", err)
	}
}
