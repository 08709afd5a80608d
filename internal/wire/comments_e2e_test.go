package wire

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"movie-comments/internal/data/entity"
	"movie-comments/internal/data/repository"
	"movie-comments/internal/data/seed"
	"movie-comments/pkg/cache"
	"movie-comments/pkg/database"
	"movie-comments/pkg/middleware"
	"movie-comments/pkg/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memStore is an in-memory comment and movie store loaded from the seed
// fixtures. It satisfies both repository interfaces and Pinger.
type memStore struct {
	mu       sync.Mutex
	movies   map[int64]entity.Movie
	comments map[int64]entity.Comment
	nextID   int64
}

func newMemStore() *memStore {
	s := &memStore{
		movies:   make(map[int64]entity.Movie),
		comments: make(map[int64]entity.Comment),
	}
	now := time.Now()
	for i, m := range seed.Movies {
		m.ID = int64(i + 1)
		m.CreatedAt = now
		s.movies[m.ID] = m
	}
	for i, c := range seed.Comments {
		c.ID = int64(i + 1)
		c.CreatedAt, c.UpdatedAt = now, now
		s.comments[c.ID] = c
	}
	s.nextID = int64(len(seed.Comments))
	return s
}

func (s *memStore) Ping(context.Context) error { return nil }

func (s *memStore) Exists(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.movies[id]
	return ok, nil
}

type memComments struct{ *memStore }

func (s memComments) list(match func(entity.Comment) bool) []*entity.Comment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entity.Comment, 0)
	for _, c := range s.comments {
		if match(c) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s memComments) FindAll(context.Context) ([]*entity.Comment, error) {
	return s.list(func(entity.Comment) bool { return true }), nil
}

func (s memComments) FindByUser(_ context.Context, user string) ([]*entity.Comment, error) {
	return s.list(func(c entity.Comment) bool { return c.User == user }), nil
}

func (s memComments) FindByID(_ context.Context, id int64) (*entity.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.comments[id]; ok {
		return &c, nil
	}
	return nil, nil
}

func (s memComments) Create(_ context.Context, c *entity.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.movies[c.MovieID]; !ok {
		return repository.ErrMissingReference
	}
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	s.comments[c.ID] = *c
	return nil
}

func (s memComments) Update(_ context.Context, c *entity.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[c.ID]; !ok {
		return repository.ErrNotFound
	}
	if _, ok := s.movies[c.MovieID]; !ok {
		return repository.ErrMissingReference
	}
	c.UpdatedAt = time.Now()
	s.comments[c.ID] = *c
	return nil
}

func (s memComments) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.comments, id)
	return nil
}

func testConfig() *utils.Config {
	return &utils.Config{CORS: utils.CORSConfig{AllowedOrigins: []string{"*"}}}
}

func newMemoryApp(t *testing.T) http.Handler {
	t.Helper()
	store := newMemStore()
	repo := &repository.Repository{Movie: store, Comment: memComments{store}}
	return Wiring(repo, store, cache.Noop{}, testConfig(), zap.NewNop()).Router
}

// newPostgresApp reseeds the database named by TEST_DATABASE_URL.
func newPostgresApp(t *testing.T) http.Handler {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := database.Open(ctx, dsn, 4)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	require.NoError(t, seed.Migrate(ctx, db))
	require.NoError(t, seed.Run(ctx, db))

	repo := repository.NewRepository(db, zap.NewNop())
	return Wiring(repo, db, cache.Noop{}, testConfig(), zap.NewNop()).Router
}

func TestComments_Memory(t *testing.T) {
	runCommentSuite(t, newMemoryApp)
}

func TestComments_Postgres(t *testing.T) {
	runCommentSuite(t, newPostgresApp)
}

type apiError struct {
	Status  bool              `json:"status"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

func send(t *testing.T, app http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func listComments(t *testing.T, app http.Handler, target string) []map[string]any {
	t.Helper()
	rec := send(t, app, http.MethodGet, target, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out []map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func countComments(t *testing.T, app http.Handler) int {
	t.Helper()
	return len(listComments(t, app, "/api/v1/comments"))
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apiError {
	t.Helper()
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var e apiError
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&e))
	assert.False(t, e.Status)
	return e
}

func runCommentSuite(t *testing.T, newApp func(t *testing.T) http.Handler) {
	t.Run("list all", func(t *testing.T) {
		app := newApp(t)
		assert.Equal(t, 8, countComments(t, app))
	})

	t.Run("list by user", func(t *testing.T) {
		app := newApp(t)
		comments := listComments(t, app, "/api/v1/comments/boris")
		require.Len(t, comments, 3)
		for _, c := range comments {
			assert.Equal(t, "boris", c["user"])
		}
	})

	t.Run("list by unknown user", func(t *testing.T) {
		app := newApp(t)
		rec := send(t, app, http.MethodGet, "/api/v1/comments/nobody", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		decodeError(t, rec)
	})

	t.Run("create", func(t *testing.T) {
		app := newApp(t)
		rec := send(t, app, http.MethodPost, "/api/v1/comments",
			`{"movie_id":1,"user":"Foo","title":"Foo","contents":"lorem2137"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var created map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
		assert.Equal(t, "Foo", created["user"])
		assert.Equal(t, float64(1), created["movie_id"])
		assert.Equal(t, 9, countComments(t, app))
	})

	t.Run("create form encoded", func(t *testing.T) {
		app := newApp(t)
		form := url.Values{"movie_id": {"1"}, "user": {"Foo"}, "title": {"Foo"}, "contents": {"lorem2137"}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, 9, countComments(t, app))
	})

	t.Run("create missing one field", func(t *testing.T) {
		full := map[string]any{"movie_id": 1, "user": "Foo", "title": "Foo", "contents": "lorem2137"}
		for field := range full {
			t.Run(field, func(t *testing.T) {
				app := newApp(t)
				body := make(map[string]any, len(full))
				for k, v := range full {
					if k != field {
						body[k] = v
					}
				}
				raw, err := json.Marshal(body)
				require.NoError(t, err)

				rec := send(t, app, http.MethodPost, "/api/v1/comments", string(raw))
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.Contains(t, decodeError(t, rec).Errors, field)
				assert.Equal(t, 8, countComments(t, app))
			})
		}
	})

	t.Run("create reports every missing field", func(t *testing.T) {
		app := newApp(t)
		rec := send(t, app, http.MethodPost, "/api/v1/comments", `{"movie_id":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		errs := decodeError(t, rec).Errors
		assert.Contains(t, errs, "user")
		assert.Contains(t, errs, "title")
		assert.Contains(t, errs, "contents")
	})

	t.Run("create for unknown movie", func(t *testing.T) {
		app := newApp(t)
		rec := send(t, app, http.MethodPost, "/api/v1/comments",
			`{"movie_id":200,"user":"Foo","title":"Foo","contents":"lorem2137"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		decodeError(t, rec)
		assert.Equal(t, 8, countComments(t, app))
	})

	t.Run("update", func(t *testing.T) {
		app := newApp(t)
		rec := send(t, app, http.MethodPatch, "/api/v1/comments/1", `{"title":"Changed my mind"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		comments := listComments(t, app, "/api/v1/comments/boris")
		require.NotEmpty(t, comments)
		assert.Equal(t, "Changed my mind", comments[0]["title"])
		assert.Equal(t, 8, countComments(t, app))
	})

	t.Run("update errors", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
			body   string
			code   int
		}{
			{"unknown movie", "/api/v1/comments/1", `{"movie_id":200}`, http.StatusBadRequest},
			{"unknown id", "/api/v1/comments/99", `{"title":"x"}`, http.StatusNotFound},
			{"non-integer id", "/api/v1/comments/abc", `{"title":"x"}`, http.StatusBadRequest},
			{"nothing to update", "/api/v1/comments/1", `{}`, http.StatusBadRequest},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				app := newApp(t)
				rec := send(t, app, http.MethodPatch, tt.target, tt.body)
				assert.Equal(t, tt.code, rec.Code)
				decodeError(t, rec)
			})
		}
	})

	t.Run("delete", func(t *testing.T) {
		app := newApp(t)
		rec := send(t, app, http.MethodDelete, "/api/v1/comments/1", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 7, countComments(t, app))
	})

	t.Run("delete unknown id", func(t *testing.T) {
		app := newApp(t)
		rec := send(t, app, http.MethodDelete, "/api/v1/comments/10", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		decodeError(t, rec)
		assert.Equal(t, 8, countComments(t, app))
	})

	t.Run("delete non-integer id", func(t *testing.T) {
		app := newApp(t)
		rec := send(t, app, http.MethodDelete, "/api/v1/comments/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Errors, "id")
	})
}

func TestRouter_Global(t *testing.T) {
	app := newMemoryApp(t)

	t.Run("health", func(t *testing.T) {
		rec := send(t, app, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		send(t, app, http.MethodGet, "/api/v1/comments", "")
		rec := send(t, app, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "movie_comments_http_requests_total")
	})

	t.Run("unknown route", func(t *testing.T) {
		rec := send(t, app, http.MethodGet, "/api/v1/nope", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		decodeError(t, rec)
	})

	t.Run("wrong method", func(t *testing.T) {
		rec := send(t, app, http.MethodPut, "/api/v1/comments/1", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
		decodeError(t, rec)
	})

	t.Run("panic is recovered and counted", func(t *testing.T) {
		store := newMemStore()
		repo := &repository.Repository{Movie: store, Comment: memComments{store}}
		router := Wiring(repo, store, cache.Noop{}, testConfig(), zap.NewNop()).Router
		router.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

		counter := middleware.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/boom", "500")
		before := testutil.ToFloat64(counter)

		rec := send(t, router, http.MethodGet, "/boom", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		decodeError(t, rec)
		assert.Equal(t, 1.0, testutil.ToFloat64(counter)-before)
	})

	t.Run("request id", func(t *testing.T) {
		rec := send(t, app, http.MethodGet, "/api/v1/comments", "")
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})
}

func TestComments_CachedListsFollowWrites(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	store := newMemStore()
	repo := &repository.Repository{Movie: store, Comment: memComments{store}}
	app := Wiring(repo, store, cache.NewRedisCache(client, time.Minute, zap.NewNop()), testConfig(), zap.NewNop()).Router

	assert.Equal(t, 8, countComments(t, app))
	assert.Len(t, listComments(t, app, "/api/v1/comments/boris"), 3)
	assert.True(t, mr.Exists("comments:lists"))

	rec := send(t, app, http.MethodPost, "/api/v1/comments",
		`{"movie_id":2,"user":"boris","title":"Again","contents":"Still great"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, 9, countComments(t, app))
	assert.Len(t, listComments(t, app, "/api/v1/comments/boris"), 4)

	rec = send(t, app, http.MethodDelete, "/api/v1/comments/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 8, countComments(t, app))
}
