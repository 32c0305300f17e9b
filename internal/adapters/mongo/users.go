package mongo

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/somoapp/campus-events/internal/domain"
	"github.com/somoapp/campus-events/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserRepository holds the registry written by the identity callback. Request
// handling only reads it, for the home-campus coordinate fallback.
type UserRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewUserRepository(db *mongo.Database, logger observability.Logger) *UserRepository {
	return &UserRepository{
		coll:   db.Collection("users"),
		logger: logger,
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	done := observe("users", "findOne")
	defer done()

	var user domain.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return &user, nil
}

func (r *UserRepository) Upsert(ctx context.Context, user domain.User) error {
	done := observe("users", "updateOne")
	defer done()

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"email": user.Email},
		bson.M{"$set": user},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		r.logger.Error("failed to upsert user", err)
		return errors.Wrap(err, "upsert user")
	}
	return nil
}
