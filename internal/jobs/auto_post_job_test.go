package jobs

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenlens/autoposter/internal/service"
)

type fakePipeline struct {
	evenings []bool
	err      error
}

func (f *fakePipeline) Run(ctx context.Context, forEvening bool) (*service.PipelineResult, error) {
	f.evenings = append(f.evenings, forEvening)
	if f.err != nil {
		return nil, f.err
	}
	return &service.PipelineResult{PostID: 1, TopicID: "t"}, nil
}

func TestTriggerRunsPipeline(t *testing.T) {
	pipeline := &fakePipeline{}
	job := NewAutoPostJob(pipeline)
	job.jitter = 0

	job.Trigger(false)
	job.Trigger(true)

	assert.Equal(t, []bool{false, true}, pipeline.evenings)
}

func TestTriggerNowSharesGuard(t *testing.T) {
	pipeline := &fakePipeline{}
	job := NewAutoPostJob(pipeline)
	job.running.Store(true)

	job.TriggerNow(true)
	assert.Empty(t, pipeline.evenings)

	job.running.Store(false)
	job.TriggerNow(true)
	assert.Equal(t, []bool{true}, pipeline.evenings)
}

func TestTriggerSkipsWhileRunInFlight(t *testing.T) {
	pipeline := &fakePipeline{}
	job := NewAutoPostJob(pipeline)
	job.jitter = 0
	job.running.Store(true)

	job.Trigger(false)

	assert.Empty(t, pipeline.evenings)
}

func TestTriggerSurvivesPipelineError(t *testing.T) {
	pipeline := &fakePipeline{err: fmt.Errorf("cooldown active")}
	job := NewAutoPostJob(pipeline)
	job.jitter = 0

	job.Trigger(false)
	// Guard released, the next slot fires normally.
	pipeline.err = nil
	job.Trigger(true)

	assert.Equal(t, []bool{false, true}, pipeline.evenings)
}
