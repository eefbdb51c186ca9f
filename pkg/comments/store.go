package comments

import (
	"context"

	"github.com/japap-media/server/pkg/scoopid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const MaxTransactAttempts = 5

// TxFunc mutates a freshly read comment. Returning ErrNoChange skips the write.
type TxFunc func(c *Comment) error

type Store interface {
	Insert(ctx context.Context, c *Comment) error
	Get(ctx context.Context, postId scoopid.ScoopID, id string) (Comment, error)
	List(ctx context.Context, postId scoopid.ScoopID) ([]Comment, error)
	Transact(ctx context.Context, postId scoopid.ScoopID, id string, fn TxFunc) (Comment, error)
	DeleteByPost(ctx context.Context, postId scoopid.ScoopID) (int64, error)
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Insert(ctx context.Context, c *Comment) error {
	_, err := s.coll.InsertOne(ctx, c)
	return errors.Wrap(err, "insert comment")
}

func (s *MongoStore) Get(ctx context.Context, postId scoopid.ScoopID, id string) (Comment, error) {
	var c Comment
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "post_id": postId}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return c, ErrCommentNotFound
	}
	return c, errors.Wrap(err, "get comment")
}

func (s *MongoStore) List(ctx context.Context, postId scoopid.ScoopID) ([]Comment, error) {
	comments := []Comment{}
	cur, err := s.coll.Find(
		ctx,
		bson.M{"post_id": postId},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return comments, errors.Wrap(err, "find comments")
	}
	if err := cur.All(ctx, &comments); err != nil {
		return comments, errors.Wrap(err, "decode comments")
	}
	return comments, nil
}

func (s *MongoStore) Transact(ctx context.Context, postId scoopid.ScoopID, id string, fn TxFunc) (Comment, error) {
	for attempt := 0; attempt < MaxTransactAttempts; attempt++ {
		c, err := s.Get(ctx, postId, id)
		if err != nil {
			return c, err
		}

		// fn gets a copy, so callers never see a half applied change
		rev := c.Rev
		before := c.Clone()
		if err := fn(&c); err != nil {
			if errors.Is(err, ErrNoChange) {
				return before, nil
			}
			return before, err
		}
		c.Rev = rev + 1

		res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": id, "rev": rev}, &c)
		if err != nil {
			return c, errors.Wrap(err, "replace comment")
		}
		if res.MatchedCount == 1 {
			return c, nil
		}
	}
	return Comment{}, ErrTransactConflict
}

func (s *MongoStore) DeleteByPost(ctx context.Context, postId scoopid.ScoopID) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"post_id": postId})
	if err != nil {
		return 0, errors.Wrap(err, "delete comments")
	}
	return res.DeletedCount, nil
}
