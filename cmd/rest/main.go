package main

import (
	"context"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/japap-media/server/pkg/api/rest"
	v0_rest "github.com/japap-media/server/pkg/api/rest/v0"
	"github.com/japap-media/server/pkg/comments"
	"github.com/japap-media/server/pkg/config"
	"github.com/japap-media/server/pkg/db"
	"github.com/japap-media/server/pkg/events"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/media"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/profiles"
	"github.com/japap-media/server/pkg/ratelimit"
	"github.com/japap-media/server/pkg/rdb"
	"github.com/japap-media/server/pkg/safety"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/japap-media/server/pkg/sessions"
	"github.com/japap-media/server/pkg/sweeper"
	"github.com/pkg/errors"
)

func main() {
	ctx := context.Background()

	// Load config
	cfg := config.Load()
	logging.Init("rest")

	// Init Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn: cfg.SentryDSN,
	}); err != nil {
		panic(err)
	}
	defer sentry.Flush(time.Second * 5)

	// Init ScoopID
	if err := scoopid.Init(cfg.NodeId); err != nil {
		panic(err)
	}

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
	publisher := events.NewRedisPublisher(redisClient, events.ChannelEvents)

	// Init session signing key
	signingKey, err := sessions.LoadSigningKey(ctx, database.Config, cfg.SessionSigningKey)
	if err != nil {
		panic(err)
	}

	// Services
	moderator := safety.NewModerator(cfg.BlockedWords)

	postSvc := posts.NewService(posts.NewMongoStore(database.Posts), publisher)
	postSvc.SetModerator(moderator.CheckContent)

	commentSvc := comments.NewService(comments.NewMongoStore(database.Comments), postSvc, publisher)
	commentSvc.SetModerator(moderator.CheckContent)
	postSvc.SetCascade(commentSvc)

	profileSvc := profiles.NewService(profiles.NewMongoStore(database.Profiles))
	profileSvc.SetModerator(moderator.CheckContent)

	reports := safety.NewReports(
		safety.NewMongoReportStore(database.Reports, database.Snapshots),
		postSvc,
		commentSvc,
		safety.NewNotifier(cfg.SMTP),
	)

	// Firewall, kept in sync with the other nodes over its own channel
	firewall := safety.NewFirewall(
		safety.NewMongoBlockStore(database.Netblock),
		events.NewRedisPublisher(redisClient, events.ChannelFirewall),
	)
	if err := firewall.Load(ctx); err != nil {
		panic(err)
	}
	go firewall.Run(events.Subscribe(ctx, redisClient, events.ChannelFirewall))

	// Media uploads are optional
	uploader, err := media.NewUploader(cfg.Media)
	if errors.Is(err, media.ErrNoUploader) {
		logging.Log.Warn("media uploads are not configured")
		uploader = nil
	} else if err != nil {
		panic(err)
	}

	// Start the sweeper
	go sweeper.New(postSvc, cfg.SweepInterval).Run(ctx)

	// Serve HTTP router
	router := rest.Router(v0_rest.Deps{
		Config:   cfg,
		Posts:    postSvc,
		Comments: commentSvc,
		Profiles: profileSvc,
		Signer:   sessions.NewSigner(signingKey),
		Reports:  reports,
		Firewall: firewall,
		Limiter:  ratelimit.NewRedisLimiter(redisClient),
		Uploader: uploader,
	})
	logging.Log.WithField("port", cfg.HTTPPort).Info("serving HTTP server")
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		logging.Capture(err, "http server stopped", nil)
	}
}
