package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/greenlens/autoposter/internal/models"
	"github.com/greenlens/autoposter/internal/repository"
	"github.com/greenlens/autoposter/internal/service"
	"github.com/greenlens/autoposter/internal/transfer"
)

// SchedulerJob publishes posts whose scheduled time has arrived. Ticks that
// overlap a running sweep are dropped; the next tick picks the posts up
// again, so nothing is lost by skipping.
type SchedulerJob struct {
	posts   repository.PostRepository
	ig      service.InstagramService
	running atomic.Bool
	timeout time.Duration
}

func NewSchedulerJob(posts repository.PostRepository, ig service.InstagramService) *SchedulerJob {
	return &SchedulerJob{
		posts:   posts,
		ig:      ig,
		timeout: 20 * time.Minute,
	}
}

// Tick processes all currently due posts sequentially. One post failing does
// not stop the rest of the batch.
func (j *SchedulerJob) Tick() {
	if !j.running.CompareAndSwap(false, true) {
		return
	}
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	due, err := j.posts.GetDue(ctx)
	if err != nil {
		slog.Error("failed to fetch due posts", "error", err)
		return
	}
	if len(due) == 0 {
		return
	}
	slog.Info("processing due posts", "count", len(due))

	for _, post := range due {
		if err := j.publish(ctx, post); err != nil {
			slog.Error("post publish failed", "post_id", post.ID, "error", err)
			message := err.Error()
			if uerr := j.posts.UpdateStatus(ctx, post.ID, models.PostStatusFailed,
				&transfer.PostStatusUpdate{ErrorMessage: &message}); uerr != nil {
				slog.Error("failed to mark post failed", "post_id", post.ID, "error", uerr)
			}
		}
	}
}

func (j *SchedulerJob) publish(ctx context.Context, post *models.Post) error {
	// Claim before publishing so a crash mid-call leaves the post in
	// publishing, never double-published.
	if err := j.posts.UpdateStatus(ctx, post.ID, models.PostStatusPublishing, nil); err != nil {
		return fmt.Errorf("failed to claim post: %w", err)
	}

	var mediaURLs []string
	if err := json.Unmarshal([]byte(post.MediaURLs), &mediaURLs); err != nil {
		return fmt.Errorf("invalid media urls: %w", err)
	}
	if len(mediaURLs) == 0 {
		return fmt.Errorf("post has no media urls")
	}

	var (
		mediaID string
		err     error
	)
	switch post.Kind {
	case models.PostKindImage:
		mediaID, err = j.ig.PublishImage(ctx, mediaURLs[0], post.Caption)
	case models.PostKindCarousel:
		mediaID, err = j.ig.PublishCarousel(ctx, mediaURLs, post.Caption)
	case models.PostKindReel:
		mediaID, err = j.ig.PublishReel(ctx, mediaURLs[0], post.Caption)
	default:
		err = fmt.Errorf("unknown post kind %q", post.Kind)
	}
	if err != nil {
		return err
	}

	if err := j.posts.UpdateStatus(ctx, post.ID, models.PostStatusPublished,
		&transfer.PostStatusUpdate{IGMediaID: &mediaID}); err != nil {
		return fmt.Errorf("published but failed to record media id %s: %w", mediaID, err)
	}
	slog.Info("post published", "post_id", post.ID, "kind", post.Kind, "media_id", mediaID)
	return nil
}
