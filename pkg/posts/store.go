package posts

import (
	"context"

	"github.com/japap-media/server/pkg/scoopid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MaxTransactAttempts = 5

// TxFunc mutates a freshly read post. Returning ErrNoChange skips the write.
type TxFunc func(p *Post) error

type Store interface {
	Insert(ctx context.Context, p *Post) error
	Get(ctx context.Context, id scoopid.ScoopID) (Post, error)
	All(ctx context.Context) ([]Post, error)
	Page(ctx context.Context, before scoopid.ScoopID, limit int64) ([]Post, error)
	Delete(ctx context.Context, id scoopid.ScoopID) error
	Count(ctx context.Context) (int64, error)

	// Transact runs a read-modify-write against a single post and retries
	// when another writer got there first.
	Transact(ctx context.Context, id scoopid.ScoopID, fn TxFunc) (Post, error)
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Insert(ctx context.Context, p *Post) error {
	_, err := s.coll.InsertOne(ctx, p)
	return errors.Wrap(err, "insert post")
}

func (s *MongoStore) Get(ctx context.Context, id scoopid.ScoopID) (Post, error) {
	var p Post
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return p, ErrPostNotFound
	}
	return p, errors.Wrap(err, "get post")
}

func (s *MongoStore) All(ctx context.Context) ([]Post, error) {
	return s.find(ctx, bson.M{}, options.Find().SetSort(bson.M{"_id": -1}))
}

func (s *MongoStore) Page(ctx context.Context, before scoopid.ScoopID, limit int64) ([]Post, error) {
	f := bson.M{}
	if before > 0 {
		f["_id"] = bson.M{"$lt": before}
	}
	return s.find(ctx, f, options.Find().SetSort(bson.M{"_id": -1}).SetLimit(limit))
}

func (s *MongoStore) find(ctx context.Context, f bson.M, opts *options.FindOptions) ([]Post, error) {
	posts := []Post{}
	cur, err := s.coll.Find(ctx, f, opts)
	if err != nil {
		return posts, errors.Wrap(err, "find posts")
	}
	if err := cur.All(ctx, &posts); err != nil {
		return posts, errors.Wrap(err, "decode posts")
	}
	return posts, nil
}

func (s *MongoStore) Delete(ctx context.Context, id scoopid.ScoopID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(err, "delete post")
	}
	if res.DeletedCount == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	return s.coll.EstimatedDocumentCount(ctx)
}

func (s *MongoStore) Transact(ctx context.Context, id scoopid.ScoopID, fn TxFunc) (Post, error) {
	for attempt := 0; attempt < MaxTransactAttempts; attempt++ {
		p, err := s.Get(ctx, id)
		if err != nil {
			return p, err
		}

		// fn gets a copy, so callers never see a half applied change
		rev := p.Rev
		before := p.Clone()
		if err := fn(&p); err != nil {
			if errors.Is(err, ErrNoChange) {
				return before, nil
			}
			return before, err
		}
		p.Rev = rev + 1

		// Only replace the revision we read
		res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id, "rev": rev}, &p)
		if err != nil {
			return p, errors.Wrap(err, "replace post")
		}
		if res.MatchedCount == 1 {
			return p, nil
		}
	}
	return Post{}, ErrTransactConflict
}
