package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenlens/autoposter/internal/transfer"
)

func TestDueQueryFiltersAndOrders(t *testing.T) {
	assert.Contains(t, dueQuery, `status = 'pending'`)
	assert.Contains(t, dueQuery, `scheduled_at <= now()`)
	assert.Contains(t, dueQuery, `ORDER BY scheduled_at ASC`)
}

func TestRemoveQueryIsPendingOnly(t *testing.T) {
	assert.Contains(t, removeQuery, `status = 'pending'`)
}

func TestBuildStatusUpdateStatusOnly(t *testing.T) {
	query, args := buildStatusUpdate(7, "publishing", nil)
	assert.Equal(t, `UPDATE posts SET status = $1 WHERE id = $2`, query)
	assert.Equal(t, []any{"publishing", int64(7)}, args)
}

func TestBuildStatusUpdateWithMediaID(t *testing.T) {
	mediaID := "18000000000001"
	query, args := buildStatusUpdate(7, "published", &transfer.PostStatusUpdate{IGMediaID: &mediaID})
	assert.Contains(t, query, `ig_media_id = $2`)
	assert.True(t, strings.HasSuffix(query, `WHERE id = $3`))
	assert.Equal(t, []any{"published", mediaID, int64(7)}, args)
}

func TestBuildStatusUpdateWithErrorMessage(t *testing.T) {
	message := "media download failed"
	query, args := buildStatusUpdate(7, "failed", &transfer.PostStatusUpdate{ErrorMessage: &message})
	assert.Contains(t, query, `error_message = $2`)
	assert.True(t, strings.HasSuffix(query, `WHERE id = $3`))
	assert.Equal(t, []any{"failed", message, int64(7)}, args)
}

func TestBuildStatusUpdateWithBoth(t *testing.T) {
	mediaID := "18000000000001"
	message := "recorded late"
	query, args := buildStatusUpdate(7, "published", &transfer.PostStatusUpdate{
		IGMediaID:    &mediaID,
		ErrorMessage: &message,
	})
	assert.Contains(t, query, `ig_media_id = $2`)
	assert.Contains(t, query, `error_message = $3`)
	assert.True(t, strings.HasSuffix(query, `WHERE id = $4`))
	require.Len(t, args, 4)
}
