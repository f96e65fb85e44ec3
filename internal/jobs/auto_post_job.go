package jobs

import (
	"context"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/greenlens/autoposter/internal/service"
)

const maxJitter = 30 * time.Minute

// AutoPostJob fires the content pipeline at the scheduled morning and evening
// slots. Each trigger sleeps a random jitter first so the account does not
// post at the exact same minute every day.
type AutoPostJob struct {
	pipeline service.PipelineService
	running  atomic.Bool
	jitter   time.Duration // max random delay, overridable in tests
	timeout  time.Duration
}

func NewAutoPostJob(pipeline service.PipelineService) *AutoPostJob {
	return &AutoPostJob{
		pipeline: pipeline,
		jitter:   maxJitter,
		timeout:  30 * time.Minute,
	}
}

// Trigger runs one scheduled slot. A slot that fires while a previous run is
// still in flight is skipped, not queued.
func (j *AutoPostJob) Trigger(forEvening bool) {
	j.run(forEvening, j.jitter)
}

// TriggerNow runs the pipeline without jitter, for the manual generate
// endpoint. It shares the in-flight guard with the scheduled slots.
func (j *AutoPostJob) TriggerNow(forEvening bool) {
	j.run(forEvening, 0)
}

func (j *AutoPostJob) run(forEvening bool, jitter time.Duration) {
	if !j.running.CompareAndSwap(false, true) {
		slog.Warn("auto-post trigger skipped, previous run still in progress", "evening", forEvening)
		return
	}
	defer j.running.Store(false)

	if jitter > 0 {
		delay := time.Duration(rand.Int63n(int64(jitter)))
		slog.Info("auto-post slot fired, applying jitter", "evening", forEvening, "delay", delay.Round(time.Second))
		time.Sleep(delay)
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	result, err := j.pipeline.Run(ctx, forEvening)
	if err != nil {
		slog.Error("scheduled pipeline run failed", "evening", forEvening, "error", err)
		return
	}
	slog.Info("scheduled pipeline run finished", "evening", forEvening, "post_id", result.PostID, "topic", result.TopicID)
}
