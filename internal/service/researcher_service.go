package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	config "github.com/greenlens/autoposter/configs"
)

// ResearcherService produces a factual research brief for a topic theme,
// used to ground content generation in real data.
type ResearcherService interface {
	Research(ctx context.Context, theme string) (string, error)
	IsConfigured() bool
}

type researcherService struct {
	cfg        config.Config
	httpClient *http.Client
	baseURL    string
}

func NewResearcherService(cfg config.Config) ResearcherService {
	return &researcherService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    "https://api.perplexity.ai",
	}
}

func (s *researcherService) IsConfigured() bool {
	return s.cfg.PerplexityAPIKey != ""
}

func (s *researcherService) Research(ctx context.Context, theme string) (string, error) {
	if !s.IsConfigured() {
		return "", fmt.Errorf("PERPLEXITY_API_KEY is not set")
	}

	currentYear := time.Now().Year()
	systemPrompt := fmt.Sprintf(
		"You are a climate research assistant. Provide factual, data-rich research briefs with specific numbers, "+
			"company names, and citations. Focus on the most recent data (%d and %d). "+
			"Always include the source and year for every statistic.",
		currentYear, currentYear-1)
	userPrompt := fmt.Sprintf(`Research the latest data, news, and statistics on this climate topic: %q

Provide:
1. The most recent statistics and data points (with exact numbers and sources)
2. Specific companies, people, or organizations involved
3. Any recent news, reports, or scandals from %d or %d
4. Key comparisons or contrasts that would be visually compelling
5. Source names and years for every fact

Be specific — real names, real numbers, real sources. No vague claims.`,
		theme, currentYear, currentYear-1)

	payload := map[string]any{
		"model": "sonar",
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": userPrompt},
		},
	}

	content, err := chatCompletion(ctx, s.httpClient, s.baseURL, s.cfg.PerplexityAPIKey, payload)
	if err != nil {
		return "", fmt.Errorf("research request failed: %w", err)
	}
	if content == "" {
		return "", fmt.Errorf("empty response from Perplexity")
	}

	slog.Info("research brief gathered", "chars", len(content))
	return content, nil
}

// chatCompletion calls an OpenAI-compatible chat completions endpoint and
// returns the first choice's message content, trimmed.
func chatCompletion(ctx context.Context, client *http.Client, baseURL, apiKey string, payload map[string]any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("error marshalling payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request error: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, respBody)
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("error parsing response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
