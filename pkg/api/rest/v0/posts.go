package v0_rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/ratelimit"
	"github.com/japap-media/server/pkg/safety"
	"github.com/japap-media/server/pkg/structs"
)

func (h *Handler) PostsRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Get("/", h.getPosts)
	r.With(h.authed).Post("/", h.createPost)

	r.Route("/{postId}", func(r chi.Router) {
		r.Get("/", h.getPost)
		r.Get("/share", h.sharePost)
		r.Get("/comments", h.getComments)

		r.Group(func(r chi.Router) {
			r.Use(h.authed)

			r.Delete("/", h.deletePost)

			r.Post("/like", h.likePost)
			r.Post("/dislike", h.dislikePost)
			r.Put("/reaction", h.setPostReaction)
			r.Delete("/reaction", h.clearPostReaction)

			r.Post("/report", h.reportPost)

			r.Post("/comments", h.createComment)
			r.Put("/comments/{commentId}/reaction", h.setCommentReaction)
			r.Delete("/comments/{commentId}/reaction", h.clearCommentReaction)
			r.Post("/comments/{commentId}/report", h.reportComment)
		})
	})

	return r
}

func (h *Handler) getPosts(w http.ResponseWriter, r *http.Request) {
	viewerId := h.viewerId(r)

	// Get pagination opts
	paginationOpts := PaginationOpts{Request: r}

	page, err := h.Posts.Page(r.Context(), paginationOpts.BeforeId(), paginationOpts.Limit())
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	// Parse posts
	v0posts := []structs.V0Post{}
	for _, p := range page {
		v0posts = append(v0posts, p.V0(viewerId))
	}

	// Get next cursor
	var next string
	if int64(len(page)) == paginationOpts.Limit() {
		next = strconv.FormatInt(page[len(page)-1].Id, 10)
	}

	returnData(w, http.StatusOK, ListResp{
		Autoget: v0posts,
		Next:    next,
	})
}

func (h *Handler) createPost(w http.ResponseWriter, r *http.Request) {
	viewerId := h.viewerId(r)

	if h.ratelimited(w, r, "post", ratelimit.ScopeViewer, viewerId) {
		return
	}

	// Decode body
	var body CreatePostReq
	if !decodeBody(w, r, &body) {
		return
	}

	h.ratelimit(w, r, "post", ratelimit.ScopeViewer, viewerId, 6, time.Minute)

	// Get author stub
	author, err := h.Profiles.Author(r.Context(), viewerId)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	p, err := h.Posts.Create(r.Context(), author.Author(), body.Kind, body.Content, body.Caption)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, PostResp{V0Post: p.V0(viewerId)})
}

// getPost returns a post and counts the view.
func (h *Handler) getPost(w http.ResponseWriter, r *http.Request) {
	postId, ok := postIdParam(w, r)
	if !ok {
		return
	}

	p, err := h.Posts.View(r.Context(), postId)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, PostResp{V0Post: p.V0(h.viewerId(r))})
}

func (h *Handler) deletePost(w http.ResponseWriter, r *http.Request) {
	postId, ok := postIdParam(w, r)
	if !ok {
		return
	}

	if err := h.Posts.Delete(r.Context(), postId, h.viewerId(r)); err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, BaseResp{})
}

func (h *Handler) sharePost(w http.ResponseWriter, r *http.Request) {
	postId, ok := postIdParam(w, r)
	if !ok {
		return
	}

	if _, err := h.Posts.Get(r.Context(), postId); err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ShareResp{URL: posts.ShareURL(h.Config.FrontendURL, postId)})
}

func (h *Handler) likePost(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, func(postId int64, viewerId string) (posts.Post, error) {
		return h.Posts.ToggleLike(r.Context(), postId, viewerId)
	})
}

func (h *Handler) dislikePost(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, func(postId int64, viewerId string) (posts.Post, error) {
		return h.Posts.ToggleDislike(r.Context(), postId, viewerId)
	})
}

func (h *Handler) setPostReaction(w http.ResponseWriter, r *http.Request) {
	var body ReactionReq
	if !decodeBody(w, r, &body) {
		return
	}

	h.reconcile(w, r, func(postId int64, viewerId string) (posts.Post, error) {
		return h.Posts.SetReaction(r.Context(), postId, viewerId, body.Emoji)
	})
}

func (h *Handler) clearPostReaction(w http.ResponseWriter, r *http.Request) {
	h.reconcile(w, r, func(postId int64, viewerId string) (posts.Post, error) {
		return h.Posts.ClearReaction(r.Context(), postId, viewerId)
	})
}

// reconcile runs a reaction change and answers with the post as the viewer
// now sees it.
func (h *Handler) reconcile(w http.ResponseWriter, r *http.Request, fn func(postId int64, viewerId string) (posts.Post, error)) {
	viewerId := h.viewerId(r)
	postId, ok := postIdParam(w, r)
	if !ok {
		return
	}

	if h.ratelimited(w, r, "react", ratelimit.ScopeViewer, viewerId) {
		return
	}
	h.ratelimit(w, r, "react", ratelimit.ScopeViewer, viewerId, 60, time.Minute)

	p, err := fn(postId, viewerId)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, PostResp{V0Post: p.V0(viewerId)})
}

func (h *Handler) reportPost(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, safety.ReportTypePost, "")
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request, reportType string, commentId string) {
	viewerId := h.viewerId(r)
	postId, ok := postIdParam(w, r)
	if !ok {
		return
	}

	if h.ratelimited(w, r, "report", ratelimit.ScopeViewer, viewerId) {
		return
	}

	var body CreateReportReq
	if !decodeBody(w, r, &body) {
		return
	}

	h.ratelimit(w, r, "report", ratelimit.ScopeViewer, viewerId, 10, time.Hour)

	report, err := h.Reports.CreateReport(r.Context(), reportType, postId, commentId, viewerId, body.Reason, body.Comment)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, ReportResp{V0Report: report.V0()})
}
