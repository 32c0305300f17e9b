package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	mongoadapter "github.com/somoapp/campus-events/internal/adapters/mongo"
	"github.com/somoapp/campus-events/internal/adapters/rabbit"
	"github.com/somoapp/campus-events/internal/domain"
	"github.com/somoapp/campus-events/internal/observability"
)

type CatalogService struct {
	events     *mongoadapter.EventRepository
	campuses   *mongoadapter.CampusRepository
	serializer *EventSerializer
	pub        *rabbit.Publisher
	feeRate    float64
	minFee     float64
	logger     observability.Logger
}

func NewCatalogService(
	events *mongoadapter.EventRepository,
	campuses *mongoadapter.CampusRepository,
	serializer *EventSerializer,
	pub *rabbit.Publisher,
	feeRate, minFee float64,
	logger observability.Logger,
) *CatalogService {
	return &CatalogService{
		events:     events,
		campuses:   campuses,
		serializer: serializer,
		pub:        pub,
		feeRate:    feeRate,
		minFee:     minFee,
		logger:     logger,
	}
}

type ListQuery struct {
	Search      string
	Campus      string
	Sort        string
	IsCustom    *bool
	Limit       int64
	ViewerEmail string
}

// List filters, sorts and serializes events. A campus filter is resolved to
// its canonical record first; a name that resolves to no known campus yields
// an empty list rather than silently dropping the filter.
func (s *CatalogService) List(ctx context.Context, q ListQuery) ([]EventResponse, error) {
	filter := mongoadapter.ListFilter{
		TitleSearch: q.Search,
		IsCustom:    q.IsCustom,
		Sort:        strings.ToLower(q.Sort),
		Limit:       q.Limit,
	}

	if campus := strings.TrimSpace(q.Campus); campus != "" {
		uni, err := s.campuses.FindByName(ctx, campus)
		if errors.Is(err, domain.ErrNotFound) {
			return []EventResponse{}, nil
		}
		if err != nil {
			return nil, err
		}
		filter.CampusID = uni.ID
		filter.Location = uni.Name
	}

	events, err := s.events.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.serializer.SerializeAll(ctx, events, q.ViewerEmail), nil
}

// CreateEventInput arrives fully decoded; the boundary already normalized
// malformed optional fields to zero values.
type CreateEventInput struct {
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
	CreatedBy        string
}

// Create persists a new event. Only persistence failures surface as errors;
// everything else normalizes.
func (s *CatalogService) Create(ctx context.Context, in CreateEventInput) (*EventResponse, error) {
	event := domain.NewEvent(domain.EventDraft{
		Title:            in.Title,
		Description:      in.Description,
		Campus:           in.Campus,
		Location:         in.Location,
		ImageURL:         in.ImageURL,
		OpenTo:           in.OpenTo,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		IsFree:           in.IsFree,
		TicketPrice:      in.TicketPrice,
		IsCustomLocation: in.IsCustomLocation,
	}, s.feeRate, s.minFee, in.CreatedBy, time.Now())

	if campus := strings.TrimSpace(in.Campus); campus != "" {
		uni, err := s.campuses.FindByName(ctx, campus)
		if err == nil {
			event.CampusID = uni.ID
			if strings.TrimSpace(in.Location) == "" {
				event.Location = uni.Name
			}
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("campus resolve failed during create: ", err)
		}
	}

	id, err := s.events.Insert(ctx, event)
	if err != nil {
		return nil, err
	}
	event.ID = id

	s.publish(ctx, "event.created", map[string]interface{}{
		"event_id":   id.Hex(),
		"title":      event.Title,
		"created_by": event.CreatedBy,
	})

	resp := s.serializer.Serialize(ctx, event, in.CreatedBy)
	return &resp, nil
}

func (s *CatalogService) publish(ctx context.Context, key string, payload map[string]interface{}) {
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
