package v0_rest

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/japap-media/server/pkg/comments"
	"github.com/japap-media/server/pkg/logging"
	"github.com/japap-media/server/pkg/media"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/profiles"
	"github.com/japap-media/server/pkg/safety"
	"github.com/japap-media/server/pkg/scoopid"
	"github.com/japap-media/server/pkg/sessions"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var validate = validator.New()

type CtxKey string

const viewerKey CtxKey = "viewer"

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	// Decode body
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") || contentType == "" { // default
		err := json.NewDecoder(r.Body).Decode(v)
		if err != nil {
			returnErr(w, http.StatusBadRequest, ErrBadRequest, nil)
			return false
		}
	} else {
		returnErr(w, http.StatusBadRequest, ErrBadRequest, nil)
		return false
	}

	// Get struct type
	structType := reflect.TypeOf(v)
	if structType.Kind() == reflect.Ptr {
		structType = structType.Elem()
	}

	// Validate
	err := validate.Struct(v)
	if err != nil {
		errFields := make(map[string]string, len(err.(validator.ValidationErrors)))
		for _, err := range err.(validator.ValidationErrors) {
			field, _ := structType.FieldByName(err.StructField())
			errFields[field.Tag.Get("json")] = err.Error()
		}
		returnErr(w, http.StatusBadRequest, ErrBadRequest, errFields)
		return false
	}

	return true
}

func returnData(w http.ResponseWriter, code int, data interface{}) {
	marshaled, err := json.Marshal(data)
	if err != nil {
		returnErr(w, http.StatusInternalServerError, ErrInternal, nil)
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(marshaled)
	}
}

func returnErr(w http.ResponseWriter, code int, errType error, fields map[string]string) {
	marshaled, err := json.Marshal(ErrResp{
		Error:  true,
		Type:   errType.Error(),
		Fields: fields,
	})
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("An error occurred while sending the error response."))
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(marshaled)
	}
}

// returnServiceErr maps an error from the domain packages onto a response.
func returnServiceErr(w http.ResponseWriter, r *http.Request, err error) {
	var rejected *safety.RejectedError
	switch {
	case errors.As(err, &rejected):
		returnErr(w, http.StatusBadRequest, ErrContentRejected, map[string]string{"rule": rejected.Rule})
	case errors.Is(err, posts.ErrPostNotFound),
		errors.Is(err, comments.ErrCommentNotFound),
		errors.Is(err, comments.ErrReplyNotFound),
		errors.Is(err, profiles.ErrProfileNotFound),
		errors.Is(err, safety.ErrBlockNotFound):
		returnErr(w, http.StatusNotFound, ErrNotFound, nil)
	case errors.Is(err, posts.ErrNotAuthor):
		returnErr(w, http.StatusForbidden, ErrMissingPermissions, nil)
	case errors.Is(err, posts.ErrInvalidKind),
		errors.Is(err, posts.ErrInvalidContent),
		errors.Is(err, posts.ErrInvalidEmoji),
		errors.Is(err, comments.ErrInvalidText),
		errors.Is(err, comments.ErrInvalidEmoji),
		errors.Is(err, profiles.ErrInvalidPseudonym),
		errors.Is(err, profiles.ErrInvalidProfile),
		errors.Is(err, safety.ErrInvalidReportType),
		errors.Is(err, safety.ErrInvalidReason),
		errors.Is(err, safety.ErrInvalidAddress):
		returnErr(w, http.StatusBadRequest, ErrBadRequest, map[string]string{"reason": err.Error()})
	case errors.Is(err, profiles.ErrPseudonymTaken):
		returnErr(w, http.StatusConflict, ErrPseudonymTaken, nil)
	case errors.Is(err, profiles.ErrAlreadyOnboarded):
		returnErr(w, http.StatusConflict, ErrAlreadyOnboarded, nil)
	case errors.Is(err, posts.ErrTransactConflict), errors.Is(err, comments.ErrTransactConflict):
		returnErr(w, http.StatusConflict, ErrConflict, nil)
	case errors.Is(err, media.ErrFileTooLarge):
		returnErr(w, http.StatusRequestEntityTooLarge, ErrFileTooLarge, nil)
	case errors.Is(err, media.ErrUnsupportedType):
		returnErr(w, http.StatusUnsupportedMediaType, ErrUnsupportedType, nil)
	default:
		logging.Capture(err, "request failed", logrus.Fields{"method": r.Method, "path": r.URL.Path})
		returnErr(w, http.StatusInternalServerError, ErrInternal, nil)
	}
}

// Update a ratelimit for a resource (bucket) based on a scope and identifier.
//
// Only 1 ratelimit should be set before returning a response.
// Otherwise, the ratelimit headers might accidentally be overwritten.
func (h *Handler) ratelimit(w http.ResponseWriter, r *http.Request, bucket string, scope string, id string, limit int, window time.Duration) {
	status, err := h.Limiter.Hit(r.Context(), bucket, scope, id, limit, window)
	if err != nil {
		logging.Capture(err, "ratelimit update failed", logrus.Fields{"bucket": bucket})
		return
	}

	// Set response headers
	w.Header().Set("X-Rtl-Bucket", status.Bucket)
	w.Header().Set("X-Rtl-Scope", status.Scope)
	w.Header().Set("X-Rtl-Remaining", strconv.Itoa(status.Remaining))
	w.Header().Set("X-Rtl-Reset", strconv.FormatInt(status.Reset.UnixMilli(), 10))
}

// ratelimited checks the bucket and answers 429 when it is exhausted.
func (h *Handler) ratelimited(w http.ResponseWriter, r *http.Request, bucket string, scope string, id string) bool {
	if h.Limiter.Limited(r.Context(), bucket, scope, id) {
		returnErr(w, http.StatusTooManyRequests, ErrRatelimited, nil)
		return true
	}
	return false
}

// authed requires a valid viewer token and puts the session on the context.
func (h *Handler) authed(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.Signer.Parse(r.Header.Get("token"))
		if err != nil {
			if !errors.Is(err, sessions.ErrTokenExpired) &&
				!errors.Is(err, sessions.ErrInvalidTokenFormat) &&
				!errors.Is(err, sessions.ErrInvalidTokenSignature) {
				logging.Capture(err, "failed parsing token", nil)
			}
			returnErr(w, http.StatusUnauthorized, ErrUnauthorized, nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), viewerKey, sess.ViewerId)))
	})
}

// viewerId is the authenticated viewer, or empty for anonymous reads.
func (h *Handler) viewerId(r *http.Request) string {
	if id, ok := r.Context().Value(viewerKey).(string); ok {
		return id
	}
	if token := r.Header.Get("token"); token != "" {
		if sess, err := h.Signer.Parse(token); err == nil {
			return sess.ViewerId
		}
	}
	return ""
}

// firewall rejects writes from blocked networks.
func (h *Handler) firewall(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead && r.Method != http.MethodOptions {
			if h.Firewall != nil && h.Firewall.IsBlocked(r.RemoteAddr) {
				returnErr(w, http.StatusForbidden, ErrIPBlocked, nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func postIdParam(w http.ResponseWriter, r *http.Request) (scoopid.ScoopID, bool) {
	id, err := scoopid.Parse(chi.URLParam(r, "postId"))
	if err != nil {
		returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		return 0, false
	}
	return id, true
}
