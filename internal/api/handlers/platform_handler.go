package handlers

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/greenlens/autoposter/internal/service"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// PlatformHandler exposes the Instagram account helpers: quota inspection
// and media hosting for manually scheduled posts.
type PlatformHandler struct {
	ig       service.InstagramService
	uploader *service.R2Service
	tmpDir   string
}

func NewPlatformHandler(ig service.InstagramService, uploader *service.R2Service, tmpDir string) *PlatformHandler {
	return &PlatformHandler{ig: ig, uploader: uploader, tmpDir: tmpDir}
}

func (h *PlatformHandler) RateLimit(c *fiber.Ctx) error {
	limit, err := h.ig.CheckRateLimit(c.Context())
	if err != nil {
		slog.Error("rate limit check failed", "error", err)
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Unable to read publishing quota",
		})
	}
	return c.Status(fiber.StatusOK).JSON(limit)
}

// Upload accepts a multipart file, pushes it to public hosting, and returns
// the URL to use in a post's media_urls.
func (h *PlatformHandler) Upload(c *fiber.Ctx) error {
	if !h.uploader.IsConfigured() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Media hosting is not configured",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing file field",
		})
	}

	id, err := gonanoid.New()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	localPath := filepath.Join(h.tmpDir, id+filepath.Ext(fileHeader.Filename))
	if err := c.SaveFile(fileHeader, localPath); err != nil {
		slog.Error("failed to save upload", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to save uploaded file",
		})
	}
	defer os.Remove(localPath)

	url, err := h.uploader.Upload(c.Context(), localPath)
	if err != nil {
		slog.Error("failed to upload media", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to upload media",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"url": url,
	})
}

func (h *PlatformHandler) Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok",
	})
}
