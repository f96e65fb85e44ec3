package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"time"

	config "github.com/greenlens/autoposter/configs"
	"github.com/greenlens/autoposter/internal/content"
	"github.com/greenlens/autoposter/internal/models"
	"github.com/greenlens/autoposter/internal/repository"
	"github.com/greenlens/autoposter/internal/transfer"
)

const (
	// maxDailyPosts stays conservatively under the platform's own 25/day cap.
	maxDailyPosts   = 20
	cooldownPeriod  = 5 * time.Minute
	recentTitleDays = 7
)

// SlideRenderer renders structured content into local image files, cover
// first, order preserved.
type SlideRenderer interface {
	Render(ctx context.Context, c *content.Generated, style, coverImagePath string) ([]string, error)
}

// MediaUploader pushes a local file to public hosting and returns its URL.
type MediaUploader interface {
	Upload(ctx context.Context, filePath string) (string, error)
	IsConfigured() bool
}

type PipelineResult struct {
	PostID  int64  `json:"post_id"`
	TopicID string `json:"topic_id"`
}

// PipelineService drives one end-to-end content run: research, generation,
// rendering, upload, publish, persistence. A run either fully succeeds (post
// row created and published, log completed) or fully fails (log failed, no
// post row).
type PipelineService interface {
	Run(ctx context.Context, forEvening bool) (*PipelineResult, error)
}

type pipelineService struct {
	cfg        config.Config
	posts      repository.PostRepository
	logs       repository.PipelineLogRepository
	researcher ResearcherService
	generator  GeneratorService
	cover      UnsplashService
	renderer   SlideRenderer
	uploader   MediaUploader
	ig         InstagramService
}

func NewPipelineService(
	cfg config.Config,
	posts repository.PostRepository,
	logs repository.PipelineLogRepository,
	researcher ResearcherService,
	generator GeneratorService,
	cover UnsplashService,
	renderer SlideRenderer,
	uploader MediaUploader,
	ig InstagramService) PipelineService {
	return &pipelineService{
		cfg:        cfg,
		posts:      posts,
		logs:       logs,
		researcher: researcher,
		generator:  generator,
		cover:      cover,
		renderer:   renderer,
		uploader:   uploader,
		ig:         ig,
	}
}

func (s *pipelineService) Run(ctx context.Context, forEvening bool) (*PipelineResult, error) {
	// Cooldown rejects before any external call or log row, so rapid
	// successive triggers (manual + scheduled racing) cannot double-post.
	lastRun, err := s.logs.LastRunTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last run time: %w", err)
	}
	if lastRun != nil {
		elapsed := time.Since(*lastRun)
		if elapsed < cooldownPeriod {
			waitSec := int(math.Ceil((cooldownPeriod - elapsed).Seconds()))
			return nil, fmt.Errorf("pipeline cooldown active, try again in %ds to prevent duplicate posts", waitSec)
		}
	}

	lastTopicID, err := s.logs.LastUsedTopicID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read last topic: %w", err)
	}
	topic := content.NextTopic(lastTopicID)
	archetype := content.PickArchetype(forEvening)
	style := archetype.PreferredStyles[rand.Intn(len(archetype.PreferredStyles))]

	slog.Info("starting carousel pipeline", "topic", topic.ID, "archetype", archetype.Name, "template", style)

	logID, err := s.logs.Create(ctx, topic.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline log: %w", err)
	}

	result, err := s.run(ctx, logID, topic, archetype, style)
	if err != nil {
		message := err.Error()
		failed := models.PipelineStatusFailed
		if logErr := s.logs.Update(ctx, logID, &transfer.PipelineLogUpdate{
			Status:       &failed,
			ErrorMessage: &message,
		}); logErr != nil {
			slog.Error("failed to mark pipeline log failed", "log_id", logID, "error", logErr)
		}
		return nil, err
	}
	return result, nil
}

func (s *pipelineService) run(ctx context.Context, logID int64, topic content.Topic,
	archetype content.Archetype, style string) (*PipelineResult, error) {

	research, err := s.researcher.Research(ctx, topic.Theme)
	if err != nil {
		return nil, fmt.Errorf("research failed: %w", err)
	}

	recent, err := s.logs.RecentTitles(ctx, recentTitleDays)
	if err != nil {
		return nil, fmt.Errorf("failed to read recent titles: %w", err)
	}
	if len(recent) > 0 {
		slog.Info("avoiding recent angles", "count", len(recent))
	}

	generated, err := s.generator.Generate(ctx, topic, recent, research, archetype)
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}
	slog.Info("content generated", "title", generated.CoverTitle, "slides", len(generated.Slides)+1)

	// Cover fetch is best-effort; the carousel renders without it.
	coverPath, err := s.cover.FetchCoverImage(ctx, topic.Theme)
	if err != nil {
		slog.Warn("cover image fetch failed, continuing without one", "error", err)
		coverPath = ""
	}

	slidePaths, err := s.renderer.Render(ctx, generated, style, coverPath)
	if err != nil {
		return nil, fmt.Errorf("slide rendering failed: %w", err)
	}
	defer cleanupFiles(append(slidePaths, coverPath))

	if !s.uploader.IsConfigured() {
		return nil, fmt.Errorf("media hosting is not configured, set the R2 credentials before publishing")
	}

	publicURLs := make([]string, 0, len(slidePaths))
	for i, path := range slidePaths {
		url, err := s.uploader.Upload(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("upload of slide %d/%d failed: %w", i+1, len(slidePaths), err)
		}
		publicURLs = append(publicURLs, url)
	}

	// Advisory gate: a failed check is warned and ignored, a reading at or
	// above the daily cap aborts before publishing.
	if limit, err := s.ig.CheckRateLimit(ctx); err != nil {
		slog.Warn("rate limit check failed, proceeding cautiously", "error", err)
	} else if limit.QuotaUsage >= maxDailyPosts {
		return nil, fmt.Errorf("daily post limit reached (%d/25), skipping publish to protect the account", limit.QuotaUsage)
	}

	mediaID, err := s.ig.PublishCarousel(ctx, publicURLs, generated.Caption)
	if err != nil {
		return nil, fmt.Errorf("carousel publish failed: %w", err)
	}
	slog.Info("carousel published", "media_id", mediaID)

	urlsJSON, err := json.Marshal(publicURLs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode media urls: %w", err)
	}
	post, err := s.posts.Create(ctx, &models.Post{
		Kind:        models.PostKindCarousel,
		Caption:     generated.Caption,
		MediaURLs:   string(urlsJSON),
		ScheduledAt: time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist post: %w", err)
	}
	if err := s.posts.UpdateStatus(ctx, post.ID, models.PostStatusPublished,
		&transfer.PostStatusUpdate{IGMediaID: &mediaID}); err != nil {
		return nil, fmt.Errorf("failed to mark post published: %w", err)
	}

	contentJSON, err := json.Marshal(generated)
	if err != nil {
		return nil, fmt.Errorf("failed to encode content snapshot: %w", err)
	}
	templateName := "carousel-" + style
	snapshot := string(contentJSON)
	completed := models.PipelineStatusCompleted
	if err := s.logs.Update(ctx, logID, &transfer.PipelineLogUpdate{
		TemplateName: &templateName,
		ContentJSON:  &snapshot,
		PostID:       &post.ID,
		Status:       &completed,
	}); err != nil {
		return nil, fmt.Errorf("failed to complete pipeline log: %w", err)
	}

	slog.Info("pipeline complete", "topic", topic.ID, "post_id", post.ID)
	return &PipelineResult{PostID: post.ID, TopicID: topic.ID}, nil
}

// cleanupFiles removes temporary render artifacts; failures are only logged
// at debug level.
func cleanupFiles(paths []string) {
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Debug("temp file cleanup failed", "path", path, "error", err)
		}
	}
}
