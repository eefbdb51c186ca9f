package v0_rest

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/japap-media/server/pkg/ratelimit"
	"github.com/japap-media/server/pkg/safety"
	"github.com/japap-media/server/pkg/structs"
)

func (h *Handler) getComments(w http.ResponseWriter, r *http.Request) {
	postId, ok := postIdParam(w, r)
	if !ok {
		return
	}

	// Make sure post exists
	if _, err := h.Posts.Get(r.Context(), postId); err != nil {
		returnServiceErr(w, r, err)
		return
	}

	list, err := h.Comments.List(r.Context(), postId)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	viewerId := h.viewerId(r)
	v0comments := []structs.V0Comment{}
	for _, c := range list {
		v0comments = append(v0comments, c.V0(viewerId))
	}

	returnData(w, http.StatusOK, ListResp{Autoget: v0comments})
}

func (h *Handler) createComment(w http.ResponseWriter, r *http.Request) {
	viewerId := h.viewerId(r)
	postId, ok := postIdParam(w, r)
	if !ok {
		return
	}

	if h.ratelimited(w, r, "comment", ratelimit.ScopeViewer, viewerId) {
		return
	}

	var body CreateCommentReq
	if !decodeBody(w, r, &body) {
		return
	}

	h.ratelimit(w, r, "comment", ratelimit.ScopeViewer, viewerId, 20, time.Minute)

	author, err := h.Profiles.Author(r.Context(), viewerId)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	c, err := h.Comments.Add(r.Context(), postId, author.Author(), body.Text, body.ReplyTo)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, CommentResp{V0Comment: c.V0(viewerId)})
}

func (h *Handler) setCommentReaction(w http.ResponseWriter, r *http.Request) {
	var body ReactionReq
	if !decodeBody(w, r, &body) {
		return
	}
	h.commentReaction(w, r, body.Emoji)
}

func (h *Handler) clearCommentReaction(w http.ResponseWriter, r *http.Request) {
	h.commentReaction(w, r, "")
}

// commentReaction sets or, with an empty emoji, clears the viewer's reaction
// on a comment.
func (h *Handler) commentReaction(w http.ResponseWriter, r *http.Request, emoji string) {
	viewerId := h.viewerId(r)
	postId, ok := postIdParam(w, r)
	if !ok {
		return
	}

	if h.ratelimited(w, r, "react", ratelimit.ScopeViewer, viewerId) {
		return
	}
	h.ratelimit(w, r, "react", ratelimit.ScopeViewer, viewerId, 60, time.Minute)

	c, err := h.Comments.SetReaction(r.Context(), postId, chi.URLParam(r, "commentId"), viewerId, emoji)
	if err != nil {
		returnServiceErr(w, r, err)
		return
	}

	returnData(w, http.StatusOK, CommentResp{V0Comment: c.V0(viewerId)})
}

func (h *Handler) reportComment(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, safety.ReportTypeComment, chi.URLParam(r, "commentId"))
}
