package safety

import (
	"context"
	"strconv"
	"strings"

	"github.com/japap-media/server/pkg/comments"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/japap-media/server/pkg/structs"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	ReportTypePost    = "post"
	ReportTypeComment = "comment"

	ReportStatusPending = "pending"

	MaxReasonLength = 100
)

type Report struct {
	Id           scoopid.ScoopID `bson:"_id" msgpack:"id"`
	Type         string          `bson:"type" msgpack:"type"` // "post" / "comment"
	PostId       scoopid.ScoopID `bson:"post" msgpack:"post"`
	ContentId    string          `bson:"content" msgpack:"content"`
	SnapshotHash string          `bson:"snapshot" msgpack:"snapshot"`
	ReporterId   string          `bson:"reporter" msgpack:"reporter"`
	Reason       string          `bson:"reason" msgpack:"reason"`
	Comment      string          `bson:"comment" msgpack:"comment"`
	Status       string          `bson:"status" msgpack:"status"` // "pending" / "no_action_taken" / "action_taken"
}

// this is for the reporter, not admin
func (r *Report) V0() structs.V0Report {
	return structs.V0Report{
		Id:        strconv.FormatInt(r.Id, 10),
		Type:      r.Type,
		ContentId: r.ContentId,
		Reason:    r.Reason,
		Comment:   r.Comment,
		Time:      scoopid.Extract(r.Id).Timestamp / 1000,
		Status:    r.Status,
	}
}

type ReportStore interface {
	InsertSnapshot(ctx context.Context, s *Snapshot) error
	InsertReport(ctx context.Context, r *Report) error
}

type MongoReportStore struct {
	reports   *mongo.Collection
	snapshots *mongo.Collection
}

func NewMongoReportStore(reports *mongo.Collection, snapshots *mongo.Collection) *MongoReportStore {
	return &MongoReportStore{reports: reports, snapshots: snapshots}
}

func (s *MongoReportStore) InsertSnapshot(ctx context.Context, snap *Snapshot) error {
	// Identical content hashes to the same snapshot
	if _, err := s.snapshots.InsertOne(ctx, snap); err != nil && !mongo.IsDuplicateKeyError(err) {
		return errors.Wrap(err, "insert snapshot")
	}
	return nil
}

func (s *MongoReportStore) InsertReport(ctx context.Context, r *Report) error {
	_, err := s.reports.InsertOne(ctx, r)
	return errors.Wrap(err, "insert report")
}

type Reports struct {
	store    ReportStore
	posts    *posts.Service
	comments *comments.Service
	notifier Notifier
}

func NewReports(store ReportStore, postSvc *posts.Service, commentSvc *comments.Service, notifier Notifier) *Reports {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Reports{
		store:    store,
		posts:    postSvc,
		comments: commentSvc,
		notifier: notifier,
	}
}

// CreateReport snapshots the reported post with its comments and files a
// pending report. commentId is only used for comment reports.
func (r *Reports) CreateReport(ctx context.Context, reportType string, postId scoopid.ScoopID, commentId string, reporterId string, reason string, comment string) (Report, error) {
	var report Report

	reason = strings.TrimSpace(reason)
	if reason == "" || len(reason) > MaxReasonLength {
		return report, ErrInvalidReason
	}

	contentId := strconv.FormatInt(postId, 10)
	switch reportType {
	case ReportTypePost:
	case ReportTypeComment:
		if _, err := r.comments.Store().Get(ctx, postId, commentId); err != nil {
			return report, err
		}
		contentId = commentId
	default:
		return report, ErrInvalidReportType
	}

	// Create snapshot
	post, err := r.posts.Get(ctx, postId)
	if err != nil {
		return report, err
	}
	postComments, err := r.comments.List(ctx, postId)
	if err != nil {
		return report, err
	}
	snapshot, err := NewSnapshot(post, postComments)
	if err != nil {
		return report, err
	}
	if err := r.store.InsertSnapshot(ctx, &snapshot); err != nil {
		return report, err
	}

	// Create report
	report = Report{
		Id:           scoopid.GenId(),
		Type:         reportType,
		PostId:       postId,
		ContentId:    contentId,
		SnapshotHash: snapshot.Hash,
		ReporterId:   reporterId,
		Reason:       reason,
		Comment:      strings.TrimSpace(comment),
		Status:       ReportStatusPending,
	}
	if err := r.store.InsertReport(ctx, &report); err != nil {
		return report, err
	}

	logging.Log.WithFields(logrus.Fields{
		"report": report.Id,
		"type":   report.Type,
		"post":   postId,
	}).Info("report filed")

	r.notifier.NotifyReport(report)

	return report, nil
}
