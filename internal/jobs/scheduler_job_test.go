package jobs

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenlens/autoposter/internal/models"
	"github.com/greenlens/autoposter/internal/transfer"
)

type statusChange struct {
	postID int64
	status string
	extra  *transfer.PostStatusUpdate
}

type fakePostRepo struct {
	due      []*models.Post
	dueCalls int
	changes  []statusChange
}

func (f *fakePostRepo) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	return nil, nil
}
func (f *fakePostRepo) GetByID(ctx context.Context, id int64) (*models.Post, error) { return nil, nil }
func (f *fakePostRepo) List(ctx context.Context) ([]*models.Post, error)            { return nil, nil }
func (f *fakePostRepo) Remove(ctx context.Context, id int64) (bool, error)          { return false, nil }

func (f *fakePostRepo) GetDue(ctx context.Context) ([]*models.Post, error) {
	f.dueCalls++
	return f.due, nil
}

func (f *fakePostRepo) UpdateStatus(ctx context.Context, id int64, status string, extra *transfer.PostStatusUpdate) error {
	f.changes = append(f.changes, statusChange{postID: id, status: status, extra: extra})
	return nil
}

// statusesFor returns the ordered status transitions recorded for a post.
func (f *fakePostRepo) statusesFor(id int64) []string {
	var out []string
	for _, c := range f.changes {
		if c.postID == id {
			out = append(out, c.status)
		}
	}
	return out
}

type publishCall struct {
	kind string
	urls []string
}

type fakePublisher struct {
	calls   []publishCall
	mediaID string
	failFor map[string]error // keyed by first media URL
}

func (f *fakePublisher) publish(kind string, urls []string) (string, error) {
	f.calls = append(f.calls, publishCall{kind: kind, urls: urls})
	if err, ok := f.failFor[urls[0]]; ok {
		return "", err
	}
	return f.mediaID, nil
}

func (f *fakePublisher) PublishImage(ctx context.Context, imageURL, caption string) (string, error) {
	return f.publish(models.PostKindImage, []string{imageURL})
}

func (f *fakePublisher) PublishCarousel(ctx context.Context, mediaURLs []string, caption string) (string, error) {
	return f.publish(models.PostKindCarousel, mediaURLs)
}

func (f *fakePublisher) PublishReel(ctx context.Context, videoURL, caption string) (string, error) {
	return f.publish(models.PostKindReel, []string{videoURL})
}

func (f *fakePublisher) CheckRateLimit(ctx context.Context) (*transfer.RateLimit, error) {
	return &transfer.RateLimit{}, nil
}

func (f *fakePublisher) EnsurePageToken(ctx context.Context) error { return nil }

func duePost(id int64, kind string, urls string) *models.Post {
	return &models.Post{
		ID:        id,
		Kind:      kind,
		Caption:   "caption",
		MediaURLs: urls,
		Status:    models.PostStatusPending,
	}
}

func TestTickPublishesDuePosts(t *testing.T) {
	repo := &fakePostRepo{due: []*models.Post{
		duePost(1, models.PostKindImage, `["https://cdn.example.com/a.png"]`),
		duePost(2, models.PostKindCarousel, `["https://cdn.example.com/a.png","https://cdn.example.com/b.png"]`),
	}}
	ig := &fakePublisher{mediaID: "18000000000009"}

	NewSchedulerJob(repo, ig).Tick()

	require.Len(t, ig.calls, 2)
	assert.Equal(t, models.PostKindImage, ig.calls[0].kind)
	assert.Equal(t, publishCall{
		kind: models.PostKindCarousel,
		urls: []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
	}, ig.calls[1])

	for _, id := range []int64{1, 2} {
		assert.Equal(t, []string{models.PostStatusPublishing, models.PostStatusPublished}, repo.statusesFor(id))
	}
	last := repo.changes[len(repo.changes)-1]
	require.NotNil(t, last.extra)
	assert.Equal(t, "18000000000009", *last.extra.IGMediaID)
}

func TestTickReelUsesFirstURL(t *testing.T) {
	repo := &fakePostRepo{due: []*models.Post{
		duePost(5, models.PostKindReel, `["https://cdn.example.com/v.mp4"]`),
	}}
	ig := &fakePublisher{mediaID: "m"}

	NewSchedulerJob(repo, ig).Tick()

	require.Len(t, ig.calls, 1)
	assert.Equal(t, models.PostKindReel, ig.calls[0].kind)
	assert.Equal(t, []string{"https://cdn.example.com/v.mp4"}, ig.calls[0].urls)
}

func TestTickFailureDoesNotStopBatch(t *testing.T) {
	repo := &fakePostRepo{due: []*models.Post{
		duePost(1, models.PostKindImage, `["https://cdn.example.com/bad.png"]`),
		duePost(2, models.PostKindImage, `["https://cdn.example.com/ok.png"]`),
	}}
	ig := &fakePublisher{
		mediaID: "m",
		failFor: map[string]error{"https://cdn.example.com/bad.png": fmt.Errorf("media download failed")},
	}

	NewSchedulerJob(repo, ig).Tick()

	assert.Equal(t, []string{models.PostStatusPublishing, models.PostStatusFailed}, repo.statusesFor(1))
	assert.Equal(t, []string{models.PostStatusPublishing, models.PostStatusPublished}, repo.statusesFor(2))

	var failure *statusChange
	for i := range repo.changes {
		if repo.changes[i].postID == 1 && repo.changes[i].status == models.PostStatusFailed {
			failure = &repo.changes[i]
		}
	}
	require.NotNil(t, failure)
	require.NotNil(t, failure.extra.ErrorMessage)
	assert.Contains(t, *failure.extra.ErrorMessage, "media download failed")
}

func TestTickUnknownKindFails(t *testing.T) {
	repo := &fakePostRepo{due: []*models.Post{
		duePost(3, "story", `["https://cdn.example.com/a.png"]`),
	}}
	ig := &fakePublisher{mediaID: "m"}

	NewSchedulerJob(repo, ig).Tick()

	assert.Empty(t, ig.calls)
	assert.Equal(t, []string{models.PostStatusPublishing, models.PostStatusFailed}, repo.statusesFor(3))
}

func TestTickInvalidMediaURLsFails(t *testing.T) {
	repo := &fakePostRepo{due: []*models.Post{
		duePost(4, models.PostKindImage, `not-json`),
	}}
	ig := &fakePublisher{mediaID: "m"}

	NewSchedulerJob(repo, ig).Tick()

	assert.Empty(t, ig.calls)
	assert.Equal(t, []string{models.PostStatusPublishing, models.PostStatusFailed}, repo.statusesFor(4))
}

func TestTickSkipsWhileSweepInFlight(t *testing.T) {
	repo := &fakePostRepo{}
	job := NewSchedulerJob(repo, &fakePublisher{})
	job.running.Store(true)

	job.Tick()

	assert.Zero(t, repo.dueCalls)
}
