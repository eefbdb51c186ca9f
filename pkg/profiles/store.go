package profiles

import (
	"context"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store interface {
	Get(ctx context.Context, id string) (Profile, error)
	GetByNormalized(ctx context.Context, normalized string) (Profile, error)

	// Upsert writes the whole profile. It fails with ErrPseudonymTaken when
	// another profile already holds the normalized pseudonym.
	Upsert(ctx context.Context, p *Profile) error
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Get(ctx context.Context, id string) (Profile, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *MongoStore) GetByNormalized(ctx context.Context, normalized string) (Profile, error) {
	return s.findOne(ctx, bson.M{"normalized": normalized})
}

func (s *MongoStore) findOne(ctx context.Context, f bson.M) (Profile, error) {
	var p Profile
	err := s.coll.FindOne(ctx, f).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return p, ErrProfileNotFound
	}
	return p, errors.Wrap(err, "get profile")
}

func (s *MongoStore) Upsert(ctx context.Context, p *Profile) error {
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.Id}, p, options.Replace().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return ErrPseudonymTaken
	}
	return errors.Wrap(err, "upsert profile")
}
