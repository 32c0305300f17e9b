package mongo

import (
	"context"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/somoapp/campus-events/internal/domain"
	"github.com/somoapp/campus-events/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SortLatest   = "latest"
	SortUpcoming = "upcoming"
)

type EventRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewEventRepository(db *mongo.Database, logger observability.Logger) *EventRepository {
	return &EventRepository{
		coll:   db.Collection("events"),
		logger: logger,
	}
}

func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "start_time", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return errors.Wrap(err, "create event indexes")
}

func (r *EventRepository) Insert(ctx context.Context, event domain.Event) (primitive.ObjectID, error) {
	done := observe("events", "insertOne")
	defer done()

	res, err := r.coll.InsertOne(ctx, event)
	if err != nil {
		r.logger.Error("failed to insert event", err)
		return primitive.NilObjectID, errors.Wrap(err, "insert event")
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *EventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Event, error) {
	done := observe("events", "findOne")
	defer done()

	var event domain.Event
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find event")
	}
	return &event, nil
}

// ListFilter narrows the events collection. Sort is "latest" for newest
// created first; anything else sorts by start time ascending. An IsCustom of
// nil leaves the custom-location filter unset.
type ListFilter struct {
	TitleSearch string
	CampusID    primitive.ObjectID
	Location    string
	IsCustom    *bool
	Sort        string
	Limit       int64
}

func (r *EventRepository) Find(ctx context.Context, f ListFilter) ([]domain.Event, error) {
	done := observe("events", "find")
	defer done()

	filter := bson.M{}
	if s := strings.TrimSpace(f.TitleSearch); s != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
	}
	if f.Location != "" {
		// Canonical campus name: match either the explicit foreign key or the
		// legacy free-text location of pre-migration documents.
		locMatch := primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Location) + "$", Options: "i"}
		if !f.CampusID.IsZero() {
			filter["$or"] = bson.A{
				bson.M{"campus_id": f.CampusID},
				bson.M{"location": locMatch},
			}
		} else {
			filter["location"] = locMatch
		}
	}
	if f.IsCustom != nil {
		filter["is_custom_location"] = *f.IsCustom
	}

	sort := bson.D{{Key: "start_time", Value: 1}}
	if f.Sort == SortLatest {
		sort = bson.D{{Key: "created_at", Value: -1}}
	}

	opts := options.Find().SetSort(sort)
	if f.Limit > 0 {
		opts.SetLimit(f.Limit)
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("failed to list events", err)
		return nil, errors.Wrap(err, "find events")
	}
	defer cur.Close(ctx)

	var events []domain.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, errors.Wrap(err, "decode events")
	}
	return events, nil
}

// FindUpcomingByKeywords returns the soonest-starting events whose location
// text contains any keyword, case-insensitively. A text heuristic kept for
// documents that predate the campus_id field.
func (r *EventRepository) FindUpcomingByKeywords(ctx context.Context, keywords []string, limit int64) ([]domain.Event, error) {
	done := observe("events", "find")
	defer done()

	or := make(bson.A, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k == "" {
			continue
		}
		or = append(or, bson.M{"location": primitive.Regex{Pattern: regexp.QuoteMeta(k), Options: "i"}})
	}
	if len(or) == 0 {
		return nil, nil
	}

	opts := options.Find().SetSort(bson.D{{Key: "start_time", Value: 1}}).SetLimit(limit)
	cur, err := r.coll.Find(ctx, bson.M{"$or": or}, opts)
	if err != nil {
		r.logger.Error("failed to find events by keywords", err)
		return nil, errors.Wrap(err, "find events by keywords")
	}
	defer cur.Close(ctx)

	var events []domain.Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, errors.Wrap(err, "decode events")
	}
	return events, nil
}

// IncrementTicketsSold bumps the counter by one. Returns domain.ErrNotFound
// when no event matches.
func (r *EventRepository) IncrementTicketsSold(ctx context.Context, id primitive.ObjectID) error {
	done := observe("events", "updateOne")
	defer done()

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$inc": bson.M{"tickets_sold": 1}})
	if err != nil {
		r.logger.Error("failed to increment tickets_sold", err)
		return errors.Wrap(err, "increment tickets_sold")
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
