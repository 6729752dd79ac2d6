package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blueDog-Consulting/gh-issues-view/internal/github"
	"github.com/blueDog-Consulting/gh-issues-view/internal/middleware"
	"github.com/blueDog-Consulting/gh-issues-view/internal/session"
)

const testSecret = "api-test-secret"

type fakeStore struct {
	sessions map[string]session.Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessions: make(map[string]session.Session)}
}

func (f *fakeStore) Create(_ context.Context, s session.Session) error {
	f.sessions[s.SessionID] = s
	return nil
}

func (f *fakeStore) Get(_ context.Context, sessionID string) (*session.Session, error) {
	s, ok := f.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func (f *fakeStore) Delete(_ context.Context, sessionID string) error {
	delete(f.sessions, sessionID)
	return nil
}

// upstream is a fake GitHub API that records how often it was hit.
type upstream struct {
	srv  *httptest.Server
	hits int
}

func newUpstream(t *testing.T, handler http.HandlerFunc) *upstream {
	t.Helper()

	u := &upstream{}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.hits++
		handler(w, r)
	}))
	t.Cleanup(u.srv.Close)

	return u
}

func newRouter(store session.Store, client *github.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	apiGroup := router.Group("/api")
	apiGroup.Use(middleware.GinRequireAuth(middleware.NewAuthMiddleware(store, testSecret)))

	NewHandler(client).RegisterRoutes(apiGroup)

	return router
}

func loggedInCookie(t *testing.T, store *fakeStore, user session.User) *http.Cookie {
	t.Helper()

	id, err := session.GenerateID()
	require.NoError(t, err)

	require.NoError(t, store.Create(context.Background(), session.Session{
		SessionID:   id,
		AccessToken: "tok",
		User:        user,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(session.TTL),
	}))

	return &http.Cookie{
		Name:  session.CookieName,
		Value: session.EncodeValue(id, testSecret),
	}
}

func TestUnauthorizedRequestNeverReachesUpstream(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	})

	store := newFakeStore()
	router := newRouter(store, github.NewClient(github.WithAPIBaseURL(up.srv.URL)))

	for _, path := range []string{
		"/api/orgs",
		"/api/orgs/acme/repos",
		"/api/repos/acme/widgets/issues",
		"/api/repos/acme/widgets/pulls",
	} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, w.Body.String(), path)
	}

	assert.Zero(t, up.hits)
}

func TestOrgsPrependsPersonalAccount(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user/orgs", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"login":"zeta"},{"login":"beta"}]`))
	})

	store := newFakeStore()
	router := newRouter(store, github.NewClient(github.WithAPIBaseURL(up.srv.URL)))

	cookie := loggedInCookie(t, store, session.User{
		ID:        1,
		Login:     "alice",
		AvatarURL: "https://a.example/alice.png",
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orgs", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var orgs []struct {
		Login       string `json:"login"`
		Description string `json:"description"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &orgs))

	// Pseudo-org first, then upstream order untouched.
	require.Len(t, orgs, 3)
	assert.Equal(t, "alice", orgs[0].Login)
	assert.Equal(t, "Personal Account", orgs[0].Description)
	assert.Equal(t, "zeta", orgs[1].Login)
	assert.Equal(t, "beta", orgs[2].Login)
}

func TestReposRoutesPersonalAccountToUserRepos(t *testing.T) {
	var gotPath string

	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"dotfiles"}]`))
	})

	store := newFakeStore()
	router := newRouter(store, github.NewClient(github.WithAPIBaseURL(up.srv.URL)))

	cookie := loggedInCookie(t, store, session.User{ID: 1, Login: "alice"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orgs/alice/repos", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/user/repos", gotPath)
}

func TestReposRoutesOrgToOrgRepos(t *testing.T) {
	var gotPath string

	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"name":"widgets"}]`))
	})

	store := newFakeStore()
	router := newRouter(store, github.NewClient(github.WithAPIBaseURL(up.srv.URL)))

	cookie := loggedInCookie(t, store, session.User{ID: 1, Login: "alice"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/orgs/acme/repos", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/orgs/acme/repos", gotPath)
}

func TestIssuesFiltersPullRequests(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link",
			`<https://api.github.com/repos/acme/widgets/issues?page=2>; rel="next", `+
				`<https://api.github.com/repos/acme/widgets/issues?page=5>; rel="last"`)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"number":1},{"number":2,"pull_request":{"url":"https://api.github.com/repos/acme/widgets/pulls/2"}}]`))
	})

	store := newFakeStore()
	router := newRouter(store, github.NewClient(github.WithAPIBaseURL(up.srv.URL)))

	cookie := loggedInCookie(t, store, session.User{ID: 1, Login: "alice"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/repos/acme/widgets/issues", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []struct {
			Number int `json:"number"`
		} `json:"data"`
		Pagination map[string]int `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data, 1)
	assert.Equal(t, 1, envelope.Data[0].Number)
	assert.Equal(t, map[string]int{"next": 2, "last": 5}, envelope.Pagination)
}

func TestPullsDoesNotFilter(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/acme/widgets/pulls", r.URL.Path)
		require.Equal(t, "closed", r.URL.Query().Get("state"))
		require.Equal(t, "2", r.URL.Query().Get("page"))
		require.Equal(t, "10", r.URL.Query().Get("per_page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"number":7},{"number":8}]`))
	})

	store := newFakeStore()
	router := newRouter(store, github.NewClient(github.WithAPIBaseURL(up.srv.URL)))

	cookie := loggedInCookie(t, store, session.User{ID: 1, Login: "alice"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/repos/acme/widgets/pulls?state=closed&page=2&per_page=10", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data       []json.RawMessage `json:"data"`
		Pagination map[string]int    `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))

	assert.Len(t, envelope.Data, 2)
	assert.Empty(t, envelope.Pagination)
}

func TestUpstreamFailureYieldsGenericError(t *testing.T) {
	up := newUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`this is not json`))
	})

	store := newFakeStore()
	router := newRouter(store, github.NewClient(github.WithAPIBaseURL(up.srv.URL)))

	cookie := loggedInCookie(t, store, session.User{ID: 1, Login: "alice"})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/repos/acme/widgets/issues", nil)
	req.AddCookie(cookie)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to fetch issues"}`, w.Body.String())
}

func TestFilterPullRequests(t *testing.T) {
	issues := []json.RawMessage{
		json.RawMessage(`{"number":1}`),
		json.RawMessage(`{"number":2,"pull_request":{}}`),
		json.RawMessage(`{"number":3,"pull_request":null}`),
	}

	filtered := filterPullRequests(issues)

	require.Len(t, filtered, 2)
	assert.JSONEq(t, `{"number":1}`, string(filtered[0]))
	assert.JSONEq(t, `{"number":3,"pull_request":null}`, string(filtered[1]))
}
