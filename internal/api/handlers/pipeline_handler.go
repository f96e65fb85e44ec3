package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/greenlens/autoposter/configs"
	"github.com/greenlens/autoposter/internal/content"
	"github.com/greenlens/autoposter/internal/jobs"
	"github.com/greenlens/autoposter/internal/repository"
	"github.com/greenlens/autoposter/internal/service"
)

type PipelineHandler struct {
	cfg        config.Config
	trigger    *jobs.AutoPostJob
	researcher service.ResearcherService
	generator  service.GeneratorService
	logs       repository.PipelineLogRepository
}

func NewPipelineHandler(
	cfg config.Config,
	trigger *jobs.AutoPostJob,
	researcher service.ResearcherService,
	generator service.GeneratorService,
	logs repository.PipelineLogRepository) *PipelineHandler {
	return &PipelineHandler{
		cfg:        cfg,
		trigger:    trigger,
		researcher: researcher,
		generator:  generator,
		logs:       logs,
	}
}

// Generate kicks off one pipeline run in the background and returns
// immediately. The run shares the auto-post guard, so a manual request
// during a scheduled run is dropped; progress lands in the pipeline log.
func (h *PipelineHandler) Generate(c *fiber.Ctx) error {
	if !h.generator.IsConfigured() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Content generation is not configured, set OPENAI_API_KEY",
		})
	}

	evening := c.QueryBool("evening", time.Now().Hour() >= 14)
	go h.trigger.TriggerNow(evening)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Pipeline run started, check /api/pipeline/logs for progress",
	})
}

func (h *PipelineHandler) ListLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	entries, err := h.logs.GetRecent(c.Context(), limit)
	if err != nil {
		slog.Error("failed to list pipeline logs", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to list pipeline logs",
		})
	}
	return c.Status(fiber.StatusOK).JSON(entries)
}

// Status reports which external services are configured so the dashboard can
// explain why the pipeline is idle.
func (h *PipelineHandler) Status(c *fiber.Ctx) error {
	lastRun, err := h.logs.LastRunTime(c.Context())
	if err != nil {
		slog.Error("failed to read last run time", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to read pipeline status",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"generator_configured":  h.generator.IsConfigured(),
		"researcher_configured": h.researcher.IsConfigured(),
		"last_run_at":           lastRun,
		"morning_hour":          h.cfg.Pipeline.MorningHour,
		"evening_hour":          h.cfg.Pipeline.EveningHour,
		"timezone":              h.cfg.Pipeline.Timezone,
		"topic_count":           len(content.Topics),
	})
}

func (h *PipelineHandler) ListTopics(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(content.Topics)
}
