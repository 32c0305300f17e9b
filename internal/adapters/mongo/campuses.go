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

// CampusRepository reads the seeded universities reference collection.
// The collection is never written at request time.
type CampusRepository struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewCampusRepository(db *mongo.Database, logger observability.Logger) *CampusRepository {
	return &CampusRepository{
		coll:   db.Collection("universities"),
		logger: logger,
	}
}

// All returns every campus in storage order.
func (r *CampusRepository) All(ctx context.Context) ([]domain.Campus, error) {
	done := observe("universities", "find")
	defer done()

	cur, err := r.coll.Find(ctx, bson.M{})
	if err != nil {
		r.logger.Error("failed to list universities", err)
		return nil, errors.Wrap(err, "find universities")
	}
	defer cur.Close(ctx)

	var campuses []domain.Campus
	if err := cur.All(ctx, &campuses); err != nil {
		return nil, errors.Wrap(err, "decode universities")
	}
	return campuses, nil
}

// List returns campuses matching an optional case-insensitive name search,
// sorted by name.
func (r *CampusRepository) List(ctx context.Context, search string) ([]domain.Campus, error) {
	done := observe("universities", "find")
	defer done()

	filter := bson.M{}
	if search = strings.TrimSpace(search); search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		r.logger.Error("failed to search universities", err)
		return nil, errors.Wrap(err, "find universities")
	}
	defer cur.Close(ctx)

	var campuses []domain.Campus
	if err := cur.All(ctx, &campuses); err != nil {
		return nil, errors.Wrap(err, "decode universities")
	}
	return campuses, nil
}

func (r *CampusRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Campus, error) {
	done := observe("universities", "findOne")
	defer done()

	var campus domain.Campus
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&campus)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find university")
	}
	return &campus, nil
}

// FindByName matches the full name exactly, ignoring case.
func (r *CampusRepository) FindByName(ctx context.Context, name string) (*domain.Campus, error) {
	done := observe("universities", "findOne")
	defer done()

	filter := bson.M{"name": primitive.Regex{Pattern: "^" + regexp.QuoteMeta(name) + "$", Options: "i"}}

	var campus domain.Campus
	err := r.coll.FindOne(ctx, filter).Decode(&campus)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find university by name")
	}
	return &campus, nil
}

// FindByDomain resolves an email domain suffix to its campus.
func (r *CampusRepository) FindByDomain(ctx context.Context, emailDomain string) (*domain.Campus, error) {
	done := observe("universities", "findOne")
	defer done()

	var campus domain.Campus
	err := r.coll.FindOne(ctx, bson.M{"domain": strings.ToLower(emailDomain)}).Decode(&campus)
	if err == mongo.ErrNoDocuments {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find university by domain")
	}
	return &campus, nil
}
