package db

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DB struct {
	Client   *mongo.Client
	Database *mongo.Database

	Config    *mongo.Collection
	Posts     *mongo.Collection
	Comments  *mongo.Collection
	Profiles  *mongo.Collection
	Reports   *mongo.Collection
	Snapshots *mongo.Collection
	Netblock  *mongo.Collection
}

func Connect(ctx context.Context, uri string, dbName string) (*DB, error) {
	// Connect to MongoDB
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect mongo")
	}

	// Ping MongoDB
	var result bson.M
	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Decode(&result); err != nil {
		return nil, errors.Wrap(err, "ping mongo")
	}

	// Set collections
	database := client.Database(dbName)
	d := &DB{
		Client:   client,
		Database: database,

		Config:    database.Collection("config"),
		Posts:     database.Collection("posts"),
		Comments:  database.Collection("comments"),
		Profiles:  database.Collection("profiles"),
		Reports:   database.Collection("reports"),
		Snapshots: database.Collection("report_snapshots"),
		Netblock:  database.Collection("netblock"),
	}

	if err := d.ensureIndexes(ctx); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *DB) ensureIndexes(ctx context.Context) error {
	if _, err := d.Profiles.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "normalized", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}); err != nil {
		return errors.Wrap(err, "index profiles.normalized")
	}

	if _, err := d.Comments.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "post_id", Value: 1}, {Key: "created_at", Value: 1}},
	}); err != nil {
		return errors.Wrap(err, "index comments.post_id")
	}

	return nil
}

func (d *DB) Disconnect() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return d.Client.Disconnect(ctx)
}
