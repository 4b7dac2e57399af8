package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/moviehub/internal/config"
	"github.com/user/moviehub/internal/handler"
	"github.com/user/moviehub/internal/repository"
	"gorm.io/driver/sqlite"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	engine        *gin.Engine
	repos         *repository.Repositories
	upstreamCalls *int32
}

func newTestServer(t *testing.T, opts ...func(*config.Config)) *testServer {
	t.Helper()

	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/search/movie", "/movie/popular":
			_, _ = w.Write([]byte(`{"page":1,"results":[{"id":42,"title":"X","poster_path":"/x.jpg","genre_ids":[28]}]}`))
		case "/genre/movie/list":
			_, _ = w.Write([]byte(`{"genres":[{"id":28,"name":"Action"}]}`))
		case "/movie/42":
			_, _ = w.Write([]byte(`{"id":42,"title":"X","videos":{"results":[]},"credits":{"cast":[],"crew":[]}}`))
		case "/movie/500":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(upstream.Close)

	db, err := repository.Open(sqlite.Open(repository.SQLiteDSN(filepath.Join(t.TempDir(), "api.db"))))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		AppSecret:         "test-secret",
		PasswordPepper:    "pepper",
		TMDBToken:         "token",
		TMDBBaseURL:       upstream.URL,
		TMDBImageBaseURL:  "https://image.tmdb.org/t/p/",
		UpstreamTimeout:   5 * time.Second,
		UpstreamCacheSize: 100,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	repos := repository.NewRepositories(db, cfg.PasswordPepper)

	return &testServer{
		engine:        NewEngine(handler.NewHandler(repos, cfg)),
		repos:         repos,
		upstreamCalls: &calls,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type authBody struct {
	Token string `json:"token"`
	User  struct {
		ID       int    `json:"id"`
		Email    string `json:"email"`
		Username string `json:"username"`
	} `json:"user"`
	Favorites    []map[string]interface{} `json:"favorites"`
	Watchlist    []map[string]interface{} `json:"watchlist"`
	WatchHistory []map[string]interface{} `json:"watchHistory"`
}

func (s *testServer) register(t *testing.T) authBody {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"email": "a@b.com", "password": "secret1", "username": "alice",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	return decode[authBody](t, w)
}

func TestRegister(t *testing.T) {
	s := newTestServer(t)

	body := s.register(t)
	assert.NotEmpty(t, body.Token)
	assert.Equal(t, "a@b.com", body.User.Email)
	assert.Equal(t, "alice", body.User.Username)

	w := s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"email": "a@b.com", "password": "secret1", "username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[map[string]string](t, w)["error"], "email already exists")
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/register", "", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"email": "a@b.com", "password": "123", "username": "alice",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "at least 6")

	req := httptest.NewRequest(http.MethodPost, "/api/register", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.engine.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginThenVerify(t *testing.T) {
	s := newTestServer(t)
	registered := s.register(t)

	w := s.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "a@b.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	login := decode[authBody](t, w)
	assert.NotEmpty(t, login.Token)
	assert.NotNil(t, login.Favorites)
	assert.NotNil(t, login.Watchlist)
	assert.NotNil(t, login.WatchHistory)

	w = s.do(t, http.MethodGet, "/api/verify", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	verified := decode[authBody](t, w)
	assert.Equal(t, registered.User.ID, verified.User.ID)
	assert.Equal(t, "a@b.com", verified.User.Email)
	assert.Equal(t, "alice", verified.User.Username)
	assert.Empty(t, verified.Token)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLoginInvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	s.register(t)

	w := s.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "a@b.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "a@b.com"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/verify", "/api/favorites", "/api/watchlist", "/api/watch-history"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = s.do(t, http.MethodGet, path, "invalid", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestFavoritesFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t).Token

	w := s.do(t, http.MethodPost, "/api/favorites", token, map[string]interface{}{
		"movie_id": "42", "movie_data": map[string]interface{}{"id": 42, "title": "X"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, decode[map[string]string](t, w)["message"], "favorites")

	// 数字 movie_id 和字符串 movie_id 指向同一条收藏
	w = s.do(t, http.MethodPost, "/api/favorites", token, map[string]interface{}{
		"movie_id": 42, "movie_data": map[string]interface{}{"id": 42, "title": "X2"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/favorites", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	favorites := decode[[]map[string]interface{}](t, w)
	require.Len(t, favorites, 1)
	assert.Equal(t, float64(42), favorites[0]["id"])
	assert.Equal(t, "X2", favorites[0]["title"])

	w = s.do(t, http.MethodDelete, "/api/favorites/42", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodDelete, "/api/favorites/42", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/favorites", token, nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestFavoriteMovieIDFromSnapshot(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t).Token

	w := s.do(t, http.MethodPost, "/api/watchlist", token, map[string]interface{}{
		"movie_data": map[string]interface{}{"id": "tt0133093", "title": "The Matrix"},
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/api/watchlist/tt0133093", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/watchlist", token, nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestLibraryValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t).Token

	for _, body := range []interface{}{
		map[string]interface{}{},
		map[string]interface{}{"movie_id": "42"},
		map[string]interface{}{"movie_id": "42", "movie_data": nil},
		map[string]interface{}{"movie_data": map[string]interface{}{"title": "no id"}},
	} {
		w := s.do(t, http.MethodPost, "/api/favorites", token, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestWatchHistoryFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t).Token

	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodPost, "/api/watch-history", token, map[string]interface{}{
			"movie_id": i, "movie_data": map[string]interface{}{"id": i},
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/watch-history", token, nil)
	history := decode[[]map[string]interface{}](t, w)
	require.Len(t, history, 3)
	assert.Equal(t, float64(2), history[0]["id"])

	w = s.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": "a@b.com", "password": "secret1"})
	assert.Len(t, decode[authBody](t, w).WatchHistory, 3)
}

func TestSearchRequiresQuery(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/movies/search", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Search query is required"}`, w.Body.String())
	assert.Zero(t, atomic.LoadInt32(s.upstreamCalls))

	w = s.do(t, http.MethodGet, "/api/movies/search?query=x", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	movies := decode[[]map[string]interface{}](t, w)
	require.Len(t, movies, 1)
	assert.Equal(t, "https://image.tmdb.org/t/p/w500/x.jpg", movies[0]["poster_path"])
	assert.Equal(t, []interface{}{"Action"}, movies[0]["genres"])
}

func TestMovieRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/movies/popular?page=abc", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]interface{}](t, w), 1)

	w = s.do(t, http.MethodGet, "/api/movies/trending", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/movies/genre/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/movies/42", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "X", decode[map[string]interface{}](t, w)["title"])

	w = s.do(t, http.MethodGet, "/api/movies/404", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Movie not found"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/movies/500", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = s.do(t, http.MethodGet, "/api/genres", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"id":28,"name":"Action"}]`, w.Body.String())
}

func TestHealthAndNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/api/health"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"OK"}`, w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}

	w := s.do(t, http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
}

func withAuthRateLimit(rps float64, burst int) func(*config.Config) {
	return func(cfg *config.Config) {
		cfg.AuthRateLimitRPS = rps
		cfg.AuthRateLimitBurst = burst
	}
}

func (s *testServer) loginFrom(t *testing.T, remoteAddr, forwardedFor string) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"email":"a@b.com","password":"secret1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w.Code
}

func TestAuthRateLimitIgnoresForwardedFor(t *testing.T) {
	s := newTestServer(t, withAuthRateLimit(0.001, 1))

	limited := 0
	for i := 0; i < 20; i++ {
		if s.loginFrom(t, "203.0.113.7:4000", fmt.Sprintf("10.0.0.%d", i)) == http.StatusTooManyRequests {
			limited++
		}
	}
	assert.Equal(t, 19, limited)

	// 其他连接地址有独立的额度
	assert.NotEqual(t, http.StatusTooManyRequests, s.loginFrom(t, "203.0.113.8:4000", ""))
}

func TestAuthRateLimitTrustedProxy(t *testing.T) {
	s := newTestServer(t, withAuthRateLimit(0.001, 1), func(cfg *config.Config) {
		cfg.TrustedProxies = []string{"203.0.113.7"}
	})

	// 经过受信代理时按 X-Forwarded-For 中的客户端地址限流
	assert.NotEqual(t, http.StatusTooManyRequests, s.loginFrom(t, "203.0.113.7:4000", "198.51.100.1"))
	assert.NotEqual(t, http.StatusTooManyRequests, s.loginFrom(t, "203.0.113.7:4000", "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, s.loginFrom(t, "203.0.113.7:4000", "198.51.100.1"))
}

func TestPanicReturnsErrorBody(t *testing.T) {
	s := newTestServer(t)
	s.engine.GET("/api/boom", func(c *gin.Context) { panic("boom") })

	w := s.do(t, http.MethodGet, "/api/boom", "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
}

func TestVerifyDeletedUser(t *testing.T) {
	s := newTestServer(t)
	body := s.register(t)

	require.NoError(t, s.repos.User.Delete(body.User.ID))

	w := s.do(t, http.MethodGet, "/api/verify", body.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
}
