package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/greenlens/autoposter/internal/models"
	"github.com/greenlens/autoposter/internal/transfer"
)

type PostRepository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id int64) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	GetDue(ctx context.Context) ([]*models.Post, error)
	UpdateStatus(ctx context.Context, id int64, status string, extra *transfer.PostStatusUpdate) error
	Remove(ctx context.Context, id int64) (bool, error)
}

type postRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) PostRepository {
	return &postRepository{db: db}
}

const postColumns = `id, kind, caption, media_urls, scheduled_at, status, ig_media_id, error_message, created_at`

func scanPost(row interface{ Scan(...any) error }) (*models.Post, error) {
	var post models.Post
	err := row.Scan(&post.ID, &post.Kind, &post.Caption, &post.MediaURLs,
		&post.ScheduledAt, &post.Status, &post.IGMediaID, &post.ErrorMessage, &post.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query := `
		INSERT INTO posts (kind, caption, media_urls, scheduled_at)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + postColumns

	created, err := scanPost(r.db.QueryRowContext(ctx, query,
		post.Kind, post.Caption, post.MediaURLs, post.ScheduledAt))
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	return created, nil
}

func (r *postRepository) GetByID(ctx context.Context, id int64) (*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts WHERE id = $1`
	post, err := scanPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	query := `SELECT ` + postColumns + ` FROM posts ORDER BY scheduled_at DESC`
	return r.queryPosts(ctx, query)
}

const dueQuery = `SELECT ` + postColumns + ` FROM posts
	WHERE status = 'pending' AND scheduled_at <= now()
	ORDER BY scheduled_at ASC`

// GetDue returns pending posts whose scheduled time has passed, oldest first
// so the backlog drains in order.
func (r *postRepository) GetDue(ctx context.Context) ([]*models.Post, error) {
	return r.queryPosts(ctx, dueQuery)
}

func (r *postRepository) queryPosts(ctx context.Context, query string, args ...any) ([]*models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// buildStatusUpdate assembles the partial UPDATE for a status transition;
// nil fields in extra are left untouched.
func buildStatusUpdate(id int64, status string, extra *transfer.PostStatusUpdate) (string, []any) {
	query := `UPDATE posts SET status = $1`
	args := []any{status}

	if extra != nil && extra.IGMediaID != nil {
		args = append(args, *extra.IGMediaID)
		query += `, ig_media_id = $2`
	}
	if extra != nil && extra.ErrorMessage != nil {
		args = append(args, *extra.ErrorMessage)
		query += `, error_message = $` + itoa(len(args))
	}
	args = append(args, id)
	query += ` WHERE id = $` + itoa(len(args))
	return query, args
}

func (r *postRepository) UpdateStatus(ctx context.Context, id int64, status string, extra *transfer.PostStatusUpdate) error {
	query, args := buildStatusUpdate(id, status, extra)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

const removeQuery = `DELETE FROM posts WHERE id = $1 AND status = 'pending'`

// Remove deletes a post only while it is still pending. The returned bool
// reports whether a row was actually removed.
func (r *postRepository) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, removeQuery, id)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
