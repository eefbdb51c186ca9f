package rdb

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

func Connect(ctx context.Context, uri string) (*redis.Client, error) {
	// Get Redis options
	rdbOpts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis uri")
	}

	// Create Redis client
	client := redis.NewClient(rdbOpts)

	// Ping Redis
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "ping redis")
	}

	return client, nil
}
