package main

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/japap-media/server/pkg/api/events"
	"github.com/japap-media/server/pkg/config"
	"github.com/japap-media/server/pkg/db"
	"github.com/japap-media/server/pkg/feed"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/rdb"
	"github.com/japap-media/server/pkg/sessions"

	pubsub "github.com/japap-media/server/pkg/events"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load config
	cfg := config.Load()
	logging.Init("events")

	// Initialise Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn: cfg.SentryDSN,
	}); err != nil {
		panic(err)
	}
	defer sentry.Flush(time.Second * 5)

	// Init MongoDB
	database, err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		panic(err)
	}
	defer database.Disconnect()

	// Init Redis
	redisClient, err := rdb.Connect(ctx, cfg.RedisURI)
	if err != nil {
		panic(err)
	}

	// Tokens are verified with the same key the REST nodes sign with
	signingKey, err := sessions.LoadSigningKey(ctx, database.Config, cfg.SessionSigningKey)
	if err != nil {
		panic(err)
	}

	// The gateway never writes, so its post service has nothing to publish to
	postSvc := posts.NewService(posts.NewMongoStore(database.Posts), pubsub.NewBus())
	synchronizer := feed.NewSynchronizer(postSvc)
	server := events.NewServer(synchronizer, sessions.NewSigner(signingKey))

	go func() {
		payloads := pubsub.Subscribe(ctx, redisClient, pubsub.ChannelEvents)
		if err := synchronizer.Run(ctx, payloads); err != nil {
			panic(err)
		}
	}()

	// Create & run server
	if err := server.Run(cfg.EventsAddress); err != nil {
		logging.Capture(err, "events server stopped", nil)
	}
}
