package sessions

import (
	"context"
	"crypto/rand"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const signingKeyDoc = "signing_keys"

// LoadSigningKey returns configured when set, otherwise the key stored in the
// config collection, generating and persisting one on first run.
func LoadSigningKey(ctx context.Context, config *mongo.Collection, configured string) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}

	var signingKeys struct {
		Id      string `bson:"_id"`
		Session []byte `bson:"session"`
	}
	err := config.FindOne(ctx, bson.M{"_id": signingKeyDoc}).Decode(&signingKeys)
	if err == nil && len(signingKeys.Session) > 0 {
		return signingKeys.Session, nil
	}
	if err != nil && err != mongo.ErrNoDocuments {
		return nil, errors.Wrap(err, "get signing keys")
	}

	signingKeys.Id = signingKeyDoc
	signingKeys.Session = make([]byte, 64)
	if _, err := rand.Read(signingKeys.Session); err != nil {
		return nil, err
	}
	if _, err := config.InsertOne(ctx, signingKeys); err != nil {
		// Another instance won the race, use its key
		if mongo.IsDuplicateKeyError(err) {
			return LoadSigningKey(ctx, config, "")
		}
		return nil, errors.Wrap(err, "store signing keys")
	}

	return signingKeys.Session, nil
}
