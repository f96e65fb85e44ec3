package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenlens/autoposter/internal/models"
	"github.com/greenlens/autoposter/internal/transfer"
)

type memPostRepo struct {
	posts  map[int64]*models.Post
	nextID int64
}

func newMemPostRepo() *memPostRepo {
	return &memPostRepo{posts: make(map[int64]*models.Post)}
}

func (m *memPostRepo) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	m.nextID++
	p := *post
	p.ID = m.nextID
	p.Status = models.PostStatusPending
	m.posts[p.ID] = &p
	return &p, nil
}

func (m *memPostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	return m.posts[id], nil
}

func (m *memPostRepo) List(ctx context.Context) ([]*models.Post, error) {
	out := make([]*models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		out = append(out, p)
	}
	return out, nil
}

func (m *memPostRepo) GetDue(ctx context.Context) ([]*models.Post, error) { return nil, nil }

func (m *memPostRepo) UpdateStatus(ctx context.Context, id int64, status string, extra *transfer.PostStatusUpdate) error {
	m.posts[id].Status = status
	return nil
}

func (m *memPostRepo) Remove(ctx context.Context, id int64) (bool, error) {
	p, ok := m.posts[id]
	if !ok || p.Status != models.PostStatusPending {
		return false, nil
	}
	delete(m.posts, id)
	return true, nil
}

func newTestApp(repo *memPostRepo) *fiber.App {
	app := fiber.New()
	h := NewPostHandler(repo)
	api := app.Group("/api")
	api.Post("/posts", h.CreatePost)
	api.Get("/posts", h.ListPosts)
	api.Get("/posts/:id", h.GetPost)
	api.Delete("/posts/:id", h.DeletePost)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out), "body: %s", raw)
	return out
}

func TestCreatePost(t *testing.T) {
	repo := newMemPostRepo()
	app := newTestApp(repo)

	resp := postJSON(t, app, "/api/posts", transfer.PostCreation{
		Type:        models.PostKindCarousel,
		Caption:     "hello",
		MediaURLs:   []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
		ScheduledAt: "2026-09-01T09:00:00Z",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	post := decodeBody[models.Post](t, resp)
	assert.Equal(t, models.PostKindCarousel, post.Kind)
	assert.Equal(t, models.PostStatusPending, post.Status)
	assert.JSONEq(t, `["https://cdn.example.com/a.png","https://cdn.example.com/b.png"]`, post.MediaURLs)
	assert.Equal(t, 2026, post.ScheduledAt.Year())
}

func TestCreatePostValidation(t *testing.T) {
	app := newTestApp(newMemPostRepo())

	cases := map[string]transfer.PostCreation{
		"bad type": {
			Type: "story", MediaURLs: []string{"https://x/a.png"}, ScheduledAt: "2026-09-01T09:00:00Z",
		},
		"no media": {
			Type: models.PostKindImage, ScheduledAt: "2026-09-01T09:00:00Z",
		},
		"carousel too small": {
			Type: models.PostKindCarousel, MediaURLs: []string{"https://x/a.png"}, ScheduledAt: "2026-09-01T09:00:00Z",
		},
		"carousel too large": {
			Type: models.PostKindCarousel, MediaURLs: make([]string, 11), ScheduledAt: "2026-09-01T09:00:00Z",
		},
		"bad timestamp": {
			Type: models.PostKindImage, MediaURLs: []string{"https://x/a.png"}, ScheduledAt: "tomorrow",
		},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			resp := postJSON(t, app, "/api/posts", body)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestGetPost(t *testing.T) {
	repo := newMemPostRepo()
	app := newTestApp(repo)
	created, err := repo.Create(context.Background(), &models.Post{Kind: models.PostKindImage})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/posts/1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	post := decodeBody[models.Post](t, resp)
	assert.Equal(t, created.ID, post.ID)

	req = httptest.NewRequest(http.MethodGet, "/api/posts/99", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDeletePost(t *testing.T) {
	repo := newMemPostRepo()
	app := newTestApp(repo)
	_, err := repo.Create(context.Background(), &models.Post{Kind: models.PostKindImage})
	require.NoError(t, err)
	published, err := repo.Create(context.Background(), &models.Post{Kind: models.PostKindImage})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateStatus(context.Background(), published.ID, models.PostStatusPublished, nil))

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/1", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]any](t, resp)
	assert.Equal(t, true, body["success"])

	// A published post cannot be deleted.
	req = httptest.NewRequest(http.MethodDelete, "/api/posts/2", nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestListPosts(t *testing.T) {
	repo := newMemPostRepo()
	app := newTestApp(repo)
	_, err := repo.Create(context.Background(), &models.Post{Kind: models.PostKindImage})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	posts := decodeBody[[]models.Post](t, resp)
	assert.Len(t, posts, 1)
}
