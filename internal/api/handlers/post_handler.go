package handlers

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/greenlens/autoposter/internal/models"
	"github.com/greenlens/autoposter/internal/repository"
	"github.com/greenlens/autoposter/internal/transfer"
)

type PostHandler struct {
	posts repository.PostRepository
}

func NewPostHandler(posts repository.PostRepository) *PostHandler {
	return &PostHandler{posts: posts}
}

// CreatePost schedules a new post. Media must already be hosted publicly;
// use the upload endpoint first for local files.
func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var req transfer.PostCreation
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	switch req.Type {
	case models.PostKindImage, models.PostKindCarousel, models.PostKindReel:
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "type must be one of: image, carousel, reel",
		})
	}
	if len(req.MediaURLs) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "media_urls must not be empty",
		})
	}
	if req.Type == models.PostKindCarousel && (len(req.MediaURLs) < 2 || len(req.MediaURLs) > 10) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "a carousel needs between 2 and 10 media urls",
		})
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "scheduled_at must be an RFC 3339 timestamp",
		})
	}

	urlsJSON, err := json.Marshal(req.MediaURLs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	post, err := h.posts.Create(c.Context(), &models.Post{
		Kind:        req.Type,
		Caption:     req.Caption,
		MediaURLs:   string(urlsJSON),
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		slog.Error("failed to create post", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to create post",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	posts, err := h.posts.List(c.Context())
	if err != nil {
		slog.Error("failed to list posts", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}
	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	post, err := h.posts.GetByID(c.Context(), int64(id))
	if err != nil {
		slog.Error("failed to get post", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to get post",
		})
	}
	if post == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Post not found",
		})
	}
	return c.Status(fiber.StatusOK).JSON(post)
}

// DeletePost removes a post that has not started publishing yet.
func (h *PostHandler) DeletePost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid post id",
		})
	}

	removed, err := h.posts.Remove(c.Context(), int64(id))
	if err != nil {
		slog.Error("failed to delete post", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to delete post",
		})
	}
	if !removed {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No pending post with that id",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
	})
}
