package v0_rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/japap-media/server/pkg/comments"
	"github.com/japap-media/server/pkg/config"
	"github.com/japap-media/server/pkg/events"
	"github.com/japap-media/server/pkg/media"
	"github.com/japap-media/server/pkg/posts"
	"github.com/japap-media/server/pkg/profiles"
	"github.com/japap-media/server/pkg/ratelimit"
	"github.com/japap-media/server/pkg/safety"
	"github.com/japap-media/server/pkg/sessions"
	"github.com/japap-media/server/pkg/structs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUploader struct{}

func (fakeUploader) Upload(_ context.Context, u media.Upload, progress media.ProgressFunc) (string, error) {
	n, err := io.Copy(io.Discard, u.Body)
	if progress != nil {
		progress(n, u.Size)
	}
	return "https://cdn.example.com/" + u.Filename, err
}

type testServer struct {
	t         *testing.T
	srv       *httptest.Server
	postStore *posts.MemoryStore
	reports   *safety.MemoryReportStore
	firewall  *safety.Firewall
	signer    *sessions.Signer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := &config.Config{FrontendURL: "https://japap.app", AdminToken: "admin"}

	bus := events.NewBus()
	moderator := safety.NewModerator([]string{"forbidden"})

	postStore := posts.NewMemoryStore()
	postSvc := posts.NewService(postStore, bus)
	postSvc.SetModerator(moderator.CheckContent)

	commentSvc := comments.NewService(comments.NewMemoryStore(), postSvc, bus)
	commentSvc.SetModerator(moderator.CheckContent)
	postSvc.SetCascade(commentSvc)

	reportStore := safety.NewMemoryReportStore()
	firewall := safety.NewFirewall(safety.NewMemoryBlockStore(), nil)
	signer := sessions.NewSigner([]byte("test-key"))

	router := Router(Deps{
		Config:   cfg,
		Posts:    postSvc,
		Comments: commentSvc,
		Profiles: profiles.NewService(profiles.NewMemoryStore()),
		Signer:   signer,
		Reports:  safety.NewReports(reportStore, postSvc, commentSvc, nil),
		Firewall: firewall,
		Limiter:  ratelimit.NewMemoryLimiter(),
		Uploader: fakeUploader{},
	})

	// Stand-in for the real IP middleware mounted by the rest package
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ip := r.Header.Get("X-Test-IP"); ip != "" {
			r.RemoteAddr = ip
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	return &testServer{
		t:         t,
		srv:       srv,
		postStore: postStore,
		reports:   reportStore,
		firewall:  firewall,
		signer:    signer,
	}
}

func (s *testServer) token() string {
	token, err := s.signer.Token(s.signer.New())
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method string, path string, token string, body interface{}, out interface{}) *http.Response {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		marshaled, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(marshaled)
	}
	req, err := http.NewRequest(method, s.srv.URL+path, reader)
	require.NoError(s.t, err)
	if token != "" {
		req.Header.Set("token", token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(s.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (s *testServer) createPost(token string, content string) structs.V0Post {
	var out PostResp
	resp := s.do(http.MethodPost, "/posts", token, CreatePostReq{Kind: posts.KindText, Content: content}, &out)
	require.Equal(s.t, http.StatusOK, resp.StatusCode)
	return out.V0Post
}

func TestRoot(t *testing.T) {
	s := newTestServer(t)
	var out WelcomeResp
	resp := s.do(http.MethodGet, "/", "", nil, &out)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://japap.app", out.Frontend)

	var status StatusResp
	s.do(http.MethodGet, "/status", "", nil, &status)
	assert.True(t, status.Uploads)
}

func TestCreateSession(t *testing.T) {
	s := newTestServer(t)
	var out SessionResp
	resp := s.do(http.MethodPost, "/session", "", nil, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, out.ViewerId)
	assert.NotEmpty(t, resp.Header.Get("X-Rtl-Remaining"))

	sess, err := s.signer.Parse(out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.ViewerId, sess.ViewerId)
}

func TestWritesNeedToken(t *testing.T) {
	s := newTestServer(t)
	var out ErrResp
	resp := s.do(http.MethodPost, "/posts", "", CreatePostReq{Kind: "text", Content: "hi"}, &out)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Unauthorized", out.Type)

	resp = s.do(http.MethodPost, "/posts", "garbage.token", CreatePostReq{Kind: "text", Content: "hi"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndListPosts(t *testing.T) {
	s := newTestServer(t)
	token := s.token()

	first := s.createPost(token, "first")
	second := s.createPost(token, "second")
	assert.Contains(t, first.Author.Username, "anon_")

	var list struct {
		Autoget []structs.V0Post `json:"autoget"`
		Next    string           `json:"next"`
	}
	s.do(http.MethodGet, "/posts?limit=1", "", nil, &list)
	require.Len(t, list.Autoget, 1)
	assert.Equal(t, second.Id, list.Autoget[0].Id)
	assert.Equal(t, second.Id, list.Next)

	s.do(http.MethodGet, "/posts?limit=1&before="+list.Next, "", nil, &list)
	require.Len(t, list.Autoget, 1)
	assert.Equal(t, first.Id, list.Autoget[0].Id)
}

func TestCreatePostValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.token()

	var out ErrResp
	resp := s.do(http.MethodPost, "/posts", token, CreatePostReq{Kind: "poll", Content: "hi"}, &out)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, out.Fields, "kind")

	resp = s.do(http.MethodPost, "/posts", token, CreatePostReq{Kind: "text", Content: "this is forbidden"}, &out)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "contentRejected", out.Type)
	assert.Equal(t, safety.RuleBlockedWord, out.Fields["rule"])
}

func TestLikeDislikeFlow(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.postStore.Insert(context.Background(), &posts.Post{
		Id:      42,
		Kind:    posts.KindText,
		Content: "tea",
		Stats:   posts.Stats{Likes: 5},
	}))
	token := s.token()

	var out PostResp
	s.do(http.MethodPost, "/posts/42/like", token, nil, &out)
	assert.Equal(t, int64(6), out.Stats.Likes)
	assert.True(t, out.Liked)

	s.do(http.MethodPost, "/posts/42/dislike", token, nil, &out)
	assert.Equal(t, int64(5), out.Stats.Likes)
	assert.Equal(t, int64(1), out.Stats.Dislikes)
	assert.False(t, out.Liked)
	assert.True(t, out.Disliked)

	resp := s.do(http.MethodPost, "/posts/404/like", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp = s.do(http.MethodPost, "/posts/nope/like", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReactions(t *testing.T) {
	s := newTestServer(t)
	token := s.token()
	p := s.createPost(token, "tea")

	var out PostResp
	resp := s.do(http.MethodPut, "/posts/"+p.Id+"/reaction", token, ReactionReq{Emoji: "🔥"}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "🔥", out.MyReaction)
	require.Len(t, out.Reactions, 1)
	assert.True(t, out.Reactions[0].UserReacted)

	resp = s.do(http.MethodPut, "/posts/"+p.Id+"/reaction", token, ReactionReq{Emoji: "🍕"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var cleared PostResp
	s.do(http.MethodDelete, "/posts/"+p.Id+"/reaction", token, nil, &cleared)
	assert.Empty(t, cleared.MyReaction)
	assert.Empty(t, cleared.Reactions)
}

func TestGetPostCountsView(t *testing.T) {
	s := newTestServer(t)
	p := s.createPost(s.token(), "tea")

	var out PostResp
	s.do(http.MethodGet, "/posts/"+p.Id, "", nil, &out)
	s.do(http.MethodGet, "/posts/"+p.Id, "", nil, &out)
	assert.Equal(t, int64(2), out.Stats.Views)

	var share ShareResp
	s.do(http.MethodGet, "/posts/"+p.Id+"/share", "", nil, &share)
	assert.Equal(t, "https://japap.app/scoop/"+p.Id, share.URL)
}

func TestDeletePost(t *testing.T) {
	s := newTestServer(t)
	owner := s.token()
	p := s.createPost(owner, "tea")

	resp := s.do(http.MethodDelete, "/posts/"+p.Id, s.token(), nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.do(http.MethodDelete, "/posts/"+p.Id, owner, nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.do(http.MethodGet, "/posts/"+p.Id, "", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestComments(t *testing.T) {
	s := newTestServer(t)
	token := s.token()
	p := s.createPost(token, "tea")

	var c CommentResp
	resp := s.do(http.MethodPost, "/posts/"+p.Id+"/comments", token, CreateCommentReq{Text: "so true"}, &c)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var reply CommentResp
	s.do(http.MethodPost, "/posts/"+p.Id+"/comments", token, CreateCommentReq{Text: "agreed", ReplyTo: c.Id}, &reply)
	require.NotNil(t, reply.ReplyTo)
	assert.Equal(t, "so true", reply.ReplyTo.Snippet)

	s.do(http.MethodPut, "/posts/"+p.Id+"/comments/"+c.Id+"/reaction", token, ReactionReq{Emoji: "😂"}, &c)
	assert.Equal(t, "😂", c.MyReaction)
	require.Len(t, c.Reactions, 1)
	assert.Equal(t, int64(1), c.Reactions[0].Count)

	var cleared CommentResp
	resp = s.do(http.MethodDelete, "/posts/"+p.Id+"/comments/"+c.Id+"/reaction", token, nil, &cleared)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, cleared.MyReaction)
	assert.Empty(t, cleared.Reactions)

	resp = s.do(http.MethodDelete, "/posts/"+p.Id+"/comments/missing/reaction", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(http.MethodPut, "/posts/"+p.Id+"/comments/"+c.Id+"/reaction", token, ReactionReq{Emoji: "🍕"}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var list struct {
		Autoget []structs.V0Comment `json:"autoget"`
	}
	s.do(http.MethodGet, "/posts/"+p.Id+"/comments", "", nil, &list)
	require.Len(t, list.Autoget, 2)

	var post PostResp
	s.do(http.MethodGet, "/posts/"+p.Id, "", nil, &post)
	assert.Equal(t, int64(2), post.Stats.Comments)

	resp = s.do(http.MethodGet, "/posts/404/comments", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReports(t *testing.T) {
	s := newTestServer(t)
	token := s.token()
	p := s.createPost(token, "tea")

	var out ReportResp
	resp := s.do(http.MethodPost, "/posts/"+p.Id+"/report", token, CreateReportReq{Reason: "spam"}, &out)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pending", out.Status)
	assert.Len(t, s.reports.Reports, 1)

	resp = s.do(http.MethodPost, "/posts/"+p.Id+"/comments/missing/report", token, CreateReportReq{Reason: "spam"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOnboardingAndProfiles(t *testing.T) {
	s := newTestServer(t)
	token := s.token()

	var me ProfileResp
	s.do(http.MethodGet, "/me", token, nil, &me)
	assert.False(t, me.Onboarded)

	resp := s.do(http.MethodPut, "/me", token, OnboardReq{Pseudonym: "Spill_The_Tea", Bio: "hi"}, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, me.Onboarded)
	assert.Equal(t, "spill_the_tea", me.Pseudonym)

	resp = s.do(http.MethodPut, "/me", s.token(), OnboardReq{Pseudonym: "spill_the_tea"}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	bio := "updated"
	s.do(http.MethodPatch, "/me", token, UpdateProfileReq{Bio: &bio}, &me)
	assert.Equal(t, "updated", me.Bio)
	assert.Equal(t, "spill_the_tea", me.Pseudonym)

	var public ProfileResp
	resp = s.do(http.MethodGet, "/profiles/spill_the_tea", "", nil, &public)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "updated", public.Bio)

	p := s.createPost(token, "tea")
	assert.Equal(t, "spill_the_tea", p.Author.Username)
}

func TestRatelimit(t *testing.T) {
	s := newTestServer(t)
	token := s.token()

	for i := 0; i < 6; i++ {
		s.createPost(token, "tea "+strconv.Itoa(i))
	}
	resp := s.do(http.MethodPost, "/posts", token, CreatePostReq{Kind: "text", Content: "one more"}, nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
}

func TestBlockedNetworkCannotWrite(t *testing.T) {
	s := newTestServer(t)
	_, err := s.firewall.CreateBlock(context.Background(), "203.0.113.0/24", "", 0)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/session", nil)
	require.NoError(t, err)
	req.Header.Set("X-Test-IP", "203.0.113.9")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req, _ = http.NewRequest(http.MethodGet, s.srv.URL+"/posts", nil)
	req.Header.Set("X-Test-IP", "203.0.113.9")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAdminNetblocks(t *testing.T) {
	s := newTestServer(t)

	resp := s.do(http.MethodPost, "/admin/netblocks", "", CreateNetblockReq{Address: "198.51.100.7"}, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := json.Marshal(CreateNetblockReq{Address: "198.51.100.7", ExpiresAt: time.Now().Add(time.Hour).UnixMilli()})
	req, _ := http.NewRequest(http.MethodPost, s.srv.URL+"/admin/netblocks", bytes.NewReader(body))
	req.Header.Set("Admin-Token", "admin")
	httpResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer httpResp.Body.Close()

	var out NetblockResp
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&out))
	assert.Equal(t, http.StatusOK, httpResp.StatusCode)
	assert.Equal(t, "198.51.100.7/32", out.Address)
	assert.True(t, s.firewall.IsBlocked("198.51.100.7"))
}

func TestUploadMedia(t *testing.T) {
	s := newTestServer(t)

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	partHeader := make(textproto.MIMEHeader)
	partHeader.Set("Content-Disposition", `form-data; name="file"; filename="pic.png"`)
	partHeader.Set("Content-Type", "image/png")
	part, err := form.CreatePart(partHeader)
	require.NoError(t, err)
	part.Write([]byte("pngdata"))
	require.NoError(t, form.Close())

	req, _ := http.NewRequest(http.MethodPost, s.srv.URL+"/media", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("token", s.token())
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out MediaResp
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image", out.Kind)
	assert.Equal(t, "https://cdn.example.com/pic.png", out.URL)
}
