package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/greenlens/autoposter/internal/models"
	"github.com/greenlens/autoposter/internal/transfer"
)

type PipelineLogRepository interface {
	Create(ctx context.Context, topicID string) (int64, error)
	Update(ctx context.Context, id int64, updates *transfer.PipelineLogUpdate) error
	GetRecent(ctx context.Context, limit int) ([]*models.PipelineLogEntry, error)
	LastUsedTopicID(ctx context.Context) (string, error)
	RecentTitles(ctx context.Context, days int) ([]transfer.RecentTitle, error)
	LastRunTime(ctx context.Context) (*time.Time, error)
}

type pipelineLogRepository struct {
	db *sql.DB
}

func NewPipelineLogRepository(db *sql.DB) PipelineLogRepository {
	return &pipelineLogRepository{db: db}
}

func (r *pipelineLogRepository) Create(ctx context.Context, topicID string) (int64, error) {
	query := `INSERT INTO pipeline_log (topic_id) VALUES ($1) RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, topicID).Scan(&id); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return id, nil
}

func (r *pipelineLogRepository) Update(ctx context.Context, id int64, updates *transfer.PipelineLogUpdate) error {
	if updates == nil {
		return nil
	}

	var sets []string
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+itoa(len(args)))
	}

	if updates.TemplateName != nil {
		add("template_name", *updates.TemplateName)
	}
	if updates.ContentJSON != nil {
		add("content_json", *updates.ContentJSON)
	}
	if updates.PostID != nil {
		add("post_id", *updates.PostID)
	}
	if updates.Status != nil {
		add("status", *updates.Status)
	}
	if updates.ErrorMessage != nil {
		add("error_message", *updates.ErrorMessage)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := `UPDATE pipeline_log SET ` + strings.Join(sets, ", ") + ` WHERE id = $` + itoa(len(args))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

const logColumns = `id, topic_id, template_name, content_json, post_id, status, error_message, created_at`

func (r *pipelineLogRepository) GetRecent(ctx context.Context, limit int) ([]*models.PipelineLogEntry, error) {
	query := `SELECT ` + logColumns + ` FROM pipeline_log ORDER BY created_at DESC LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []*models.PipelineLogEntry
	for rows.Next() {
		var e models.PipelineLogEntry
		err := rows.Scan(&e.ID, &e.TopicID, &e.TemplateName, &e.ContentJSON,
			&e.PostID, &e.Status, &e.ErrorMessage, &e.CreatedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// LastUsedTopicID returns the topic of the most recent completed run. Failed
// runs are ignored so the rotation is not influenced by them.
func (r *pipelineLogRepository) LastUsedTopicID(ctx context.Context) (string, error) {
	query := `SELECT topic_id FROM pipeline_log WHERE status = 'completed' ORDER BY created_at DESC LIMIT 1`

	var topicID string
	if err := r.db.QueryRowContext(ctx, query).Scan(&topicID); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		slog.Info(err.Error())
		return "", err
	}
	return topicID, nil
}

// RecentTitles returns the cover titles of completed runs inside the trailing
// window, so content generation can avoid repeating recent angles.
func (r *pipelineLogRepository) RecentTitles(ctx context.Context, days int) ([]transfer.RecentTitle, error) {
	query := `SELECT topic_id, content_json FROM pipeline_log
		WHERE status = 'completed'
		  AND content_json IS NOT NULL
		  AND created_at >= now() - ($1 * INTERVAL '1 day')
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, days)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var titles []transfer.RecentTitle
	for rows.Next() {
		var topicID, contentJSON string
		if err := rows.Scan(&topicID, &contentJSON); err != nil {
			slog.Info(err.Error())
			return nil, err
		}

		var snapshot struct {
			CoverTitle string `json:"coverTitle"`
		}
		if err := json.Unmarshal([]byte(contentJSON), &snapshot); err != nil {
			continue
		}
		if snapshot.CoverTitle == "" {
			continue
		}
		titles = append(titles, transfer.RecentTitle{TopicID: topicID, Title: snapshot.CoverTitle})
	}
	return titles, rows.Err()
}

// LastRunTime returns the creation time of the most recent run regardless of
// outcome. Cooldown enforcement is based on this.
func (r *pipelineLogRepository) LastRunTime(ctx context.Context) (*time.Time, error) {
	query := `SELECT created_at FROM pipeline_log ORDER BY created_at DESC LIMIT 1`

	var t time.Time
	if err := r.db.QueryRowContext(ctx, query).Scan(&t); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return &t, nil
}
