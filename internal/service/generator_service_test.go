package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/greenlens/autoposter/configs"
	"github.com/greenlens/autoposter/internal/content"
	"github.com/greenlens/autoposter/internal/transfer"
)

const generatedJSON = `{
  "coverTitle": "77%",
  "coverSubtitle": "of emissions come from 100 companies",
  "slides": [
    {"heading": "Context", "body": "b", "stat": "77%", "chartType": "donut", "source": "CDP 2025"},
    {"heading": "Save This.", "body": "b", "stat": "100", "chartType": "bars", "source": "CDP 2025"}
  ],
  "ctaText": "Save This.",
  "caption": "Swipe to learn more. #climate"
}`

func TestParseGeneratedRawJSON(t *testing.T) {
	g, err := parseGenerated(generatedJSON)
	require.NoError(t, err)
	assert.Equal(t, "77%", g.CoverTitle)
	assert.Len(t, g.Slides, 2)
	assert.Equal(t, "donut", g.Slides[0].ChartType)
}

func TestParseGeneratedStripsCodeFence(t *testing.T) {
	g, err := parseGenerated("```json\n" + generatedJSON + "\n```")
	require.NoError(t, err)
	assert.Equal(t, "77%", g.CoverTitle)
}

func TestParseGeneratedStripsProse(t *testing.T) {
	g, err := parseGenerated("Here is your carousel:\n" + generatedJSON + "\nHope this helps!")
	require.NoError(t, err)
	assert.Equal(t, "77%", g.CoverTitle)
}

func TestParseGeneratedRejectsMissingFields(t *testing.T) {
	for name, raw := range map[string]string{
		"no title":  `{"slides":[{"heading":"h"}],"caption":"c"}`,
		"no slides": `{"coverTitle":"t","slides":[],"caption":"c"}`,
		"no caption": `{"coverTitle":"t","slides":[{"heading":"h"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := parseGenerated(raw)
			assert.Error(t, err)
		})
	}
}

func TestParseGeneratedRejectsGarbage(t *testing.T) {
	_, err := parseGenerated("the model refused to answer")
	assert.Error(t, err)
}

func TestGenerateSendsResearchAndRecentTitles(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": generatedJSON}},
			},
		})
	}))
	defer srv.Close()

	s := &generatorService{
		cfg:        config.Config{OpenAIAPIKey: "sk-test"},
		httpClient: srv.Client(),
		baseURL:    srv.URL,
	}

	g, err := s.Generate(context.Background(),
		content.Topics[0],
		[]transfer.RecentTitle{{TopicID: "x", Title: "Old Angle Title"}},
		"research brief body",
		content.Archetypes[0])
	require.NoError(t, err)
	assert.Equal(t, "77%", g.CoverTitle)

	assert.Equal(t, "gpt-4o", payload["model"])
	messages := payload["messages"].([]any)
	require.Len(t, messages, 2)
	user := messages[1].(map[string]any)["content"].(string)
	assert.Contains(t, user, "research brief body")
	assert.Contains(t, user, "Old Angle Title")
	assert.Contains(t, user, content.Topics[0].Theme)
}

func TestGenerateRequiresAPIKey(t *testing.T) {
	s := &generatorService{cfg: config.Config{}}
	_, err := s.Generate(context.Background(), content.Topics[0], nil, "", content.Archetypes[0])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}
