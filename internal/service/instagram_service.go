package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	config "github.com/greenlens/autoposter/configs"
	"github.com/greenlens/autoposter/internal/repository"
	"github.com/greenlens/autoposter/internal/transfer"
)

const (
	reelPollInterval = 10 * time.Second
	reelPollAttempts = 30
)

// videoURLPattern classifies carousel media by file extension.
var videoURLPattern = regexp.MustCompile(`(?i)\.(mp4|mov|avi|webm)(\?|$)`)

// InstagramService wraps the Graph API container-publish protocol: create one
// or more media containers, wait for async processing where required, then
// publish and return the final media id.
type InstagramService interface {
	PublishImage(ctx context.Context, imageURL, caption string) (string, error)
	PublishCarousel(ctx context.Context, mediaURLs []string, caption string) (string, error)
	PublishReel(ctx context.Context, videoURL, caption string) (string, error)
	CheckRateLimit(ctx context.Context) (*transfer.RateLimit, error)
	EnsurePageToken(ctx context.Context) error
}

type instagramService struct {
	cfg        config.Config
	tokens     repository.TokenRepository
	httpClient *http.Client
	baseURL    string

	pollInterval time.Duration
	pollAttempts int

	mu          sync.Mutex
	cachedToken string
}

func NewInstagramService(cfg config.Config, tokens repository.TokenRepository) InstagramService {
	return &instagramService{
		cfg:          cfg,
		tokens:       tokens,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      cfg.GraphBaseURL,
		pollInterval: reelPollInterval,
		pollAttempts: reelPollAttempts,
	}
}

// EnsurePageToken resolves the page token once at startup so a bad
// ACCESS_TOKEN fails the process early instead of the first publish.
func (s *instagramService) EnsurePageToken(ctx context.Context) error {
	_, err := s.pageToken(ctx)
	return err
}

// pageToken returns the long-lived page token, resolving it in order from the
// in-memory cache, the store, and finally a fresh two-step exchange.
func (s *instagramService) pageToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cachedToken != "" {
		return s.cachedToken, nil
	}

	stored, err := s.tokens.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read stored page token: %w", err)
	}
	if stored != "" {
		s.cachedToken = stored
		return stored, nil
	}

	token, err := s.exchangePageToken(ctx)
	if err != nil {
		return "", err
	}
	if err := s.tokens.Save(ctx, token); err != nil {
		return "", fmt.Errorf("failed to persist page token: %w", err)
	}
	s.cachedToken = token
	return token, nil
}

// exchangePageToken swaps the configured short-lived token for a long-lived
// user token, then reads the page's non-expiring access token with it.
func (s *instagramService) exchangePageToken(ctx context.Context) (string, error) {
	slog.Info("exchanging token for a non-expiring page token")

	params := url.Values{
		"grant_type":        {"fb_exchange_token"},
		"client_id":         {s.cfg.MetaAppID},
		"client_secret":     {s.cfg.MetaAppSecret},
		"fb_exchange_token": {s.cfg.AccessToken},
	}
	var longLived struct {
		AccessToken string `json:"access_token"`
	}
	if err := s.getJSON(ctx, "oauth/access_token", params, &longLived); err != nil {
		return "", fmt.Errorf("failed to get long-lived token: %w", err)
	}
	if longLived.AccessToken == "" {
		return "", fmt.Errorf("token exchange returned no access_token")
	}

	params = url.Values{
		"fields":       {"access_token"},
		"access_token": {longLived.AccessToken},
	}
	var page struct {
		AccessToken string `json:"access_token"`
	}
	if err := s.getJSON(ctx, s.cfg.FacebookPageID, params, &page); err != nil {
		return "", fmt.Errorf("failed to get page token: %w", err)
	}
	if page.AccessToken == "" {
		return "", fmt.Errorf("page token response has no access_token")
	}
	return page.AccessToken, nil
}

func (s *instagramService) PublishImage(ctx context.Context, imageURL, caption string) (string, error) {
	containerID, err := s.createContainer(ctx, map[string]any{
		"image_url": imageURL,
		"caption":   caption,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create image container: %w", err)
	}
	return s.publishContainer(ctx, containerID)
}

// PublishCarousel creates one child container per media URL in input order,
// then a parent CAROUSEL container referencing all children, then publishes
// the parent. Any child failure aborts the whole publish.
func (s *instagramService) PublishCarousel(ctx context.Context, mediaURLs []string, caption string) (string, error) {
	childIDs := make([]string, 0, len(mediaURLs))
	for _, mediaURL := range mediaURLs {
		payload := map[string]any{"is_carousel_item": true}
		if videoURLPattern.MatchString(mediaURL) {
			payload["media_type"] = "VIDEO"
			payload["video_url"] = mediaURL
		} else {
			payload["image_url"] = mediaURL
		}

		id, err := s.createContainer(ctx, payload)
		if err != nil {
			return "", fmt.Errorf("failed to create carousel item for %s: %w", mediaURL, err)
		}
		childIDs = append(childIDs, id)
	}

	parentID, err := s.createContainer(ctx, map[string]any{
		"media_type": "CAROUSEL",
		"children":   strings.Join(childIDs, ","),
		"caption":    caption,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create carousel container: %w", err)
	}
	return s.publishContainer(ctx, parentID)
}

// PublishReel creates a video container and polls its processing status on a
// fixed cadence before publishing. Only the poll retries; a failed publish is
// not re-attempted.
func (s *instagramService) PublishReel(ctx context.Context, videoURL, caption string) (string, error) {
	containerID, err := s.createContainer(ctx, map[string]any{
		"media_type": "REELS",
		"video_url":  videoURL,
		"caption":    caption,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create reel container: %w", err)
	}

	for i := 0; i < s.pollAttempts; i++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.pollInterval):
		}

		status, err := s.containerStatus(ctx, containerID)
		if err != nil {
			return "", err
		}
		switch status {
		case "FINISHED":
			return s.publishContainer(ctx, containerID)
		case "ERROR":
			return "", fmt.Errorf("reel container %s failed processing", containerID)
		}
	}

	return "", fmt.Errorf("reel container %s timed out after %s",
		containerID, time.Duration(s.pollAttempts)*s.pollInterval)
}

func (s *instagramService) CheckRateLimit(ctx context.Context) (*transfer.RateLimit, error) {
	token, err := s.pageToken(ctx)
	if err != nil {
		return nil, err
	}

	params := url.Values{
		"fields":       {"quota_usage,config"},
		"access_token": {token},
	}
	var result struct {
		Data []transfer.RateLimit `json:"data"`
	}
	path := fmt.Sprintf("%s/content_publishing_limit", s.cfg.InstagramAccountID)
	if err := s.getJSON(ctx, path, params, &result); err != nil {
		return nil, fmt.Errorf("failed to read publishing limit: %w", err)
	}
	if len(result.Data) == 0 {
		return &transfer.RateLimit{}, nil
	}
	return &result.Data[0], nil
}

// createContainer posts to /{account}/media and returns the container id.
func (s *instagramService) createContainer(ctx context.Context, payload map[string]any) (string, error) {
	return s.postForID(ctx, fmt.Sprintf("%s/media", s.cfg.InstagramAccountID), payload)
}

func (s *instagramService) publishContainer(ctx context.Context, containerID string) (string, error) {
	id, err := s.postForID(ctx, fmt.Sprintf("%s/media_publish", s.cfg.InstagramAccountID), map[string]any{
		"creation_id": containerID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to publish container %s: %w", containerID, err)
	}
	slog.Info("container published", "container_id", containerID, "media_id", id)
	return id, nil
}

func (s *instagramService) containerStatus(ctx context.Context, containerID string) (string, error) {
	token, err := s.pageToken(ctx)
	if err != nil {
		return "", err
	}

	params := url.Values{
		"fields":       {"status_code"},
		"access_token": {token},
	}
	var status struct {
		StatusCode string `json:"status_code"`
	}
	if err := s.getJSON(ctx, containerID, params, &status); err != nil {
		return "", fmt.Errorf("failed to check container %s status: %w", containerID, err)
	}
	return status.StatusCode, nil
}

// postForID sends an authorized JSON POST and returns the id field of the
// response. Graph error bodies are carried into the returned error.
func (s *instagramService) postForID(ctx context.Context, path string, payload map[string]any) (string, error) {
	token, err := s.pageToken(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/"+path, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if err := graphError(resp.StatusCode, respBody); err != nil {
		return "", err
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w (body: %s)", err, respBody)
	}
	if result.ID == "" {
		return "", fmt.Errorf("no id returned from Graph API (body: %s)", respBody)
	}
	return result.ID, nil
}

func (s *instagramService) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/"+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading response body: %w", err)
	}
	if err := graphError(resp.StatusCode, respBody); err != nil {
		return err
	}
	return json.Unmarshal(respBody, out)
}

// graphError extracts the Graph API error envelope when present, falling back
// to the raw body on non-200 responses.
func graphError(statusCode int, body []byte) error {
	var envelope transfer.GraphError
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("Graph API error: %s (type: %s, code: %d)",
			envelope.Error.Message, envelope.Error.Type, envelope.Error.Code)
	}
	if statusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from Graph API: %s", statusCode, body)
	}
	return nil
}
