package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/somoapp/campus-events/internal/domain"
	"github.com/somoapp/campus-events/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OptInRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewOptInRepository(db *mongo.Database, logger observability.Logger) *OptInRepository {
	return &OptInRepository{
		coll:   db.Collection("user_optins"),
		logger: logger,
	}
}

// EnsureIndexes creates the unique email index AddEvent relies on.
func (r *OptInRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return errors.Wrap(err, "create optin indexes")
}

// Get returns the opt-in record for an email, or domain.ErrNotFound.
func (r *OptInRepository) Get(ctx context.Context, email string) (*domain.UserOptIn, error) {
	done := observe("user_optins", "findOne")
	defer done()

	var optin domain.UserOptIn
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&optin)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find optin")
	}
	return &optin, nil
}

// HasEvent reports whether the viewer's opt-in set contains the event.
// A missing record reads as false, not an error.
func (r *OptInRepository) HasEvent(ctx context.Context, email string, eventID primitive.ObjectID) (bool, error) {
	done := observe("user_optins", "countDocuments")
	defer done()

	n, err := r.coll.CountDocuments(ctx, bson.M{"email": email, "events": eventID})
	if err != nil {
		return false, errors.Wrap(err, "count optin")
	}
	return n > 0, nil
}

// AddEvent adds the event id to the viewer's opt-in set, creating the record
// if absent. It reports whether the id was actually added, in one conditional
// write: the filter excludes documents already holding the id, so a repeat
// call matches nothing and its upsert collides with the unique email index.
// That collision is the "already reserved" signal, which makes this the sole
// gate for the tickets_sold increment even under concurrent duplicates.
func (r *OptInRepository) AddEvent(ctx context.Context, email string, eventID primitive.ObjectID) (bool, error) {
	done := observe("user_optins", "updateOne")
	defer done()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"email": email, "events": bson.M{"$ne": eventID}},
		bson.M{"$addToSet": bson.M{"events": eventID}},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		r.logger.Error("failed to add optin", err)
		return false, errors.Wrap(err, "add optin")
	}
	return res.ModifiedCount > 0 || res.UpsertedCount > 0, nil
}
