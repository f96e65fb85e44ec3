package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	config "github.com/greenlens/autoposter/configs"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UnsplashService fetches a cover background photo for a topic and downloads
// it into the tmp dir. Failures here are tolerated by the pipeline.
type UnsplashService interface {
	FetchCoverImage(ctx context.Context, query string) (string, error)
}

type unsplashService struct {
	cfg        config.Config
	httpClient *http.Client
	baseURL    string
}

func NewUnsplashService(cfg config.Config) UnsplashService {
	return &unsplashService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Minute},
		baseURL:    "https://api.unsplash.com",
	}
}

func (s *unsplashService) FetchCoverImage(ctx context.Context, query string) (string, error) {
	if s.cfg.UnsplashAccessKey == "" {
		return "", fmt.Errorf("UNSPLASH_ACCESS_KEY is not set")
	}

	searchTerms := query + " nature environment"
	if len(searchTerms) > 100 {
		searchTerms = searchTerms[:100]
	}

	params := url.Values{
		"query":          {searchTerms},
		"orientation":    {"portrait"},
		"content_filter": {"high"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.baseURL+"/photos/random?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+s.cfg.UnsplashAccessKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Unsplash API error (%d): %s", resp.StatusCode, body)
	}

	var photo struct {
		URLs struct {
			Regular string `json:"regular"`
			Full    string `json:"full"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(body, &photo); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}

	imageURL := photo.URLs.Regular
	if imageURL == "" {
		imageURL = photo.URLs.Full
	}
	if imageURL == "" {
		return "", fmt.Errorf("no image URL returned from Unsplash")
	}

	path, err := s.download(ctx, imageURL+"&w=1080&h=1350&fit=crop&crop=entropy")
	if err != nil {
		return "", err
	}
	slog.Info("cover image downloaded", "photographer", photo.User.Name)
	return path, nil
}

func (s *unsplashService) download(ctx context.Context, imageURL string) (string, error) {
	if err := os.MkdirAll(s.cfg.TmpDir, 0o755); err != nil {
		return "", fmt.Errorf("error creating tmp dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image download failed: HTTP %d", resp.StatusCode)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.cfg.TmpDir, "cover-"+id+".jpg")

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("error creating file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("error writing image: %w", err)
	}
	return path, nil
}
