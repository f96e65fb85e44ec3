package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	config "github.com/greenlens/autoposter/configs"
	"github.com/greenlens/autoposter/internal/content"
	"github.com/greenlens/autoposter/internal/transfer"
)

// GeneratorService turns a topic, a research brief, and an archetype into
// structured carousel content.
type GeneratorService interface {
	Generate(ctx context.Context, topic content.Topic, recent []transfer.RecentTitle,
		research string, archetype content.Archetype) (*content.Generated, error)
	IsConfigured() bool
}

type generatorService struct {
	cfg        config.Config
	httpClient *http.Client
	baseURL    string
}

func NewGeneratorService(cfg config.Config) GeneratorService {
	return &generatorService{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		baseURL:    "https://api.openai.com/v1",
	}
}

func (s *generatorService) IsConfigured() bool {
	return s.cfg.OpenAIAPIKey != ""
}

func (s *generatorService) Generate(ctx context.Context, topic content.Topic, recent []transfer.RecentTitle,
	research string, archetype content.Archetype) (*content.Generated, error) {

	if !s.IsConfigured() {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}

	payload := map[string]any{
		"model": "gpt-4o",
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt(archetype)},
			{"role": "user", "content": userPrompt(topic, recent, research, archetype)},
		},
		"temperature": 0.7,
		"max_tokens":  2500,
	}

	raw, err := chatCompletion(ctx, s.httpClient, s.baseURL, s.cfg.OpenAIAPIKey, payload)
	if err != nil {
		return nil, fmt.Errorf("content generation failed: %w", err)
	}
	if raw == "" {
		return nil, fmt.Errorf("empty response from content model")
	}

	generated, err := parseGenerated(raw)
	if err != nil {
		return nil, err
	}
	return generated, nil
}

// parseGenerated decodes the model output, falling back to the outermost JSON
// object when the model wraps it in prose or code fences.
func parseGenerated(raw string) (*content.Generated, error) {
	var generated content.Generated
	if err := json.Unmarshal([]byte(raw), &generated); err != nil {
		extracted := extractJSONObject(raw)
		if extracted == "" {
			return nil, fmt.Errorf("failed to parse generated content: %w", err)
		}
		if err := json.Unmarshal([]byte(extracted), &generated); err != nil {
			return nil, fmt.Errorf("failed to parse generated content: %w", err)
		}
	}

	if generated.CoverTitle == "" || len(generated.Slides) == 0 || generated.Caption == "" {
		return nil, fmt.Errorf("generated content is missing required fields")
	}
	return &generated, nil
}

// extractJSONObject returns the substring from the first '{' to the last '}',
// or "" when no object is present.
func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return ""
	}
	return raw[start : end+1]
}

func systemPrompt(archetype content.Archetype) string {
	return "You are a climate change investigative journalist creating Instagram carousel explainers.\n" +
		"You focus on corporate accountability, naming specific companies, CEOs, and industry leaders responsible for climate damage.\n" +
		"You have been provided with LIVE WEB RESEARCH data below — use ONLY the facts, statistics, and sources from that research. " +
		"Do NOT make up or hallucinate any numbers. If something is not in the research, do not invent it.\n" +
		"Tone directive: " + archetype.ToneDirective
}

func userPrompt(topic content.Topic, recent []transfer.RecentTitle, research string, archetype content.Archetype) string {
	currentYear := time.Now().Year()

	var b strings.Builder
	fmt.Fprintf(&b, "Create a 4-slide Instagram carousel explainer.\n\nTheme: %s\n", topic.Theme)

	if research != "" {
		fmt.Fprintf(&b, "\n=== LIVE WEB RESEARCH (use these facts and sources) ===\n%s\n=== END RESEARCH ===\n", research)
	}
	if len(recent) > 0 {
		b.WriteString("\nDO NOT repeat any of these angles — they were already posted in the last 7 days:\n")
		for _, r := range recent {
			fmt.Fprintf(&b, "- %q\n", r.Title)
		}
		b.WriteString("Pick a COMPLETELY DIFFERENT angle, fact, or story.\n")
	}

	fmt.Fprintf(&b, "\nCover format: %s\n\nSlide structure:\n%s\n", archetype.CoverPrompt, archetype.SlidePrompt)

	fmt.Fprintf(&b, `
IMPORTANT RULES:
1. Every slide MUST have a "source" field with a REAL, SPECIFIC data source AND year from the research (e.g., "IEA World Energy Outlook %d").
2. Every slide MUST have a primary stat and a secondary stat — taken directly from the research data.
3. Every slide MUST have exactly ONE chart ("chartType" of bars, donut, compare, or ranked with the matching array). Use a DIFFERENT chart type for each slide.

Respond in this exact JSON format (no markdown, no code fences, just raw JSON):
{
  "coverTitle": "Bold title (max 8 words)",
  "coverSubtitle": "Hook that makes people swipe (max 15 words)",
  "slides": [
    {
      "heading": "Heading (max 6 words)",
      "body": "2-3 sentences with specific names and data.",
      "stat": "Primary number",
      "statLabel": "What it represents",
      "secondaryStat": "Secondary number",
      "secondaryStatLabel": "What it means",
      "chartType": "one of: bars, donut, compare, ranked",
      "bars or donut or compare or ranked": "array matching the chosen chartType",
      "source": "Specific data source with year"
    }
  ],
  "ctaText": %q,
  "source": "Overall sources",
  "caption": "Engaging 3-4 sentence caption. Start with 'Swipe to learn more'. End with 10-12 hashtags.",
  "imagePrompt": ""
}`, currentYear, archetype.LastSlideCTA)

	return b.String()
}
