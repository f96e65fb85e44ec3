package infographic

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"os"
	"strings"

	"github.com/greenlens/autoposter/internal/content"
)

// palette is one visual style for a carousel. Styles are referenced by name
// from archetype preferences and recorded in the pipeline log.
type palette struct {
	Background string
	Surface    string
	Ink        string
	Muted      string
	Accent     string
	Font       string
}

var palettes = map[string]palette{
	"clean": {
		Background: "#f7f5f0",
		Surface:    "#ffffff",
		Ink:        "#1a1a1a",
		Muted:      "#6b6b6b",
		Accent:     "#1b7a43",
		Font:       "'Helvetica Neue', Arial, sans-serif",
	},
	"noir": {
		Background: "#0d0d0d",
		Surface:    "#1a1a1a",
		Ink:        "#f2f2f2",
		Muted:      "#8a8a8a",
		Accent:     "#e8452c",
		Font:       "'Helvetica Neue', Arial, sans-serif",
	},
	"editorial": {
		Background: "#fffdf8",
		Surface:    "#f4efe6",
		Ink:        "#14211a",
		Muted:      "#5c6b60",
		Accent:     "#b03a2e",
		Font:       "Georgia, 'Times New Roman', serif",
	},
}

// StyleNames lists the known template styles.
func StyleNames() []string {
	return []string{"clean", "noir", "editorial"}
}

type slideData struct {
	Palette    palette
	Index      int
	Total      int
	IsCover    bool
	CoverImage template.URL

	Title    string
	Subtitle string
	Slide    *content.Slide
	CTAText  string

	DonutGradient template.CSS
}

var slideTemplate = template.Must(template.New("slide").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  * { margin: 0; padding: 0; box-sizing: border-box; }
  html, body { width: 1080px; height: 1080px; overflow: hidden; }
  body {
    font-family: {{.Palette.Font}};
    background: {{.Palette.Background}};
    color: {{.Palette.Ink}};
    display: flex; flex-direction: column; justify-content: space-between;
    padding: 72px;
  }
  {{if .CoverImage}}
  body {
    background-image: linear-gradient(rgba(0,0,0,0.45), rgba(0,0,0,0.75)), url('{{.CoverImage}}');
    background-size: cover; background-position: center;
    color: #ffffff;
  }
  {{end}}
  .kicker { font-size: 26px; letter-spacing: 4px; text-transform: uppercase; color: {{.Palette.Accent}}; }
  h1 { font-size: 92px; line-height: 1.05; margin-top: 28px; }
  .subtitle { font-size: 40px; line-height: 1.3; margin-top: 32px; color: {{if .CoverImage}}#e6e6e6{{else}}{{.Palette.Muted}}{{end}}; }
  h2 { font-size: 64px; line-height: 1.1; }
  .body { font-size: 34px; line-height: 1.45; margin-top: 28px; }
  .stats { display: flex; gap: 48px; margin-top: 40px; }
  .stat .number { font-size: 72px; font-weight: 700; color: {{.Palette.Accent}}; }
  .stat .label { font-size: 26px; margin-top: 6px; color: {{.Palette.Muted}}; }
  .chart { margin-top: 44px; }
  .bar-row { display: flex; align-items: center; gap: 18px; margin-top: 18px; }
  .bar-label { width: 260px; font-size: 26px; }
  .bar-track { flex: 1; background: {{.Palette.Surface}}; border-radius: 8px; height: 44px; }
  .bar-fill { background: {{.Palette.Accent}}; border-radius: 8px; height: 44px;
    display: flex; align-items: center; justify-content: flex-end; padding-right: 14px;
    color: #fff; font-size: 24px; }
  .donut-wrap { display: flex; align-items: center; gap: 48px; }
  .donut { width: 300px; height: 300px; border-radius: 50%; background: {{.DonutGradient}}; }
  .legend div { font-size: 26px; margin-top: 12px; }
  .swatch { display: inline-block; width: 22px; height: 22px; border-radius: 4px; margin-right: 12px; vertical-align: middle; }
  .compare { display: flex; gap: 32px; }
  .compare-card { flex: 1; background: {{.Palette.Surface}}; border-radius: 16px; padding: 36px; }
  .compare-card .value { font-size: 56px; font-weight: 700; color: {{.Palette.Accent}}; margin-top: 14px; }
  .compare-card .desc { font-size: 24px; color: {{.Palette.Muted}}; margin-top: 10px; }
  .ranked-row { display: flex; align-items: baseline; gap: 24px; margin-top: 20px; font-size: 32px; }
  .ranked-row .rank { font-size: 44px; font-weight: 700; color: {{.Palette.Accent}}; width: 64px; }
  .ranked-row .value { margin-left: auto; font-weight: 700; }
  footer { display: flex; justify-content: space-between; font-size: 24px; color: {{if .CoverImage}}#d0d0d0{{else}}{{.Palette.Muted}}{{end}}; }
</style>
</head>
<body>
{{if .IsCover}}
  <div>
    <div class="kicker">Climate Brief</div>
    <h1>{{.Title}}</h1>
    <div class="subtitle">{{.Subtitle}}</div>
  </div>
  <footer><span>Swipe &rarr;</span><span>{{.Index}}/{{.Total}}</span></footer>
{{else}}
  <div>
    <h2>{{.Slide.Heading}}</h2>
    <div class="body">{{.Slide.Body}}</div>
    <div class="stats">
      <div class="stat">
        <div class="number">{{.Slide.Stat}}</div>
        <div class="label">{{.Slide.StatLabel}}</div>
      </div>
      {{if .Slide.SecondaryStat}}
      <div class="stat">
        <div class="number">{{.Slide.SecondaryStat}}</div>
        <div class="label">{{.Slide.SecondaryStatLabel}}</div>
      </div>
      {{end}}
    </div>
    <div class="chart">
      {{if eq .Slide.ChartType "bars"}}
        {{range .Slide.Bars}}
        <div class="bar-row">
          <div class="bar-label">{{.Label}}</div>
          <div class="bar-track"><div class="bar-fill" style="width: {{printf "%.0f" .Value}}%">{{.DisplayValue}}</div></div>
        </div>
        {{end}}
      {{else if eq .Slide.ChartType "donut"}}
        <div class="donut-wrap">
          <div class="donut"></div>
          <div class="legend">
            {{range .Slide.Donut}}<div><span class="swatch" style="background: {{if .Highlight}}{{$.Palette.Accent}}{{else}}{{$.Palette.Muted}}{{end}}"></span>{{.Label}} — {{printf "%.0f" .Percent}}%</div>{{end}}
          </div>
        </div>
      {{else if eq .Slide.ChartType "compare"}}
        <div class="compare">
          {{range .Slide.Compare}}
          <div class="compare-card">
            <div>{{.Label}}</div>
            <div class="value">{{.Value}}</div>
            <div class="desc">{{.Description}}</div>
          </div>
          {{end}}
        </div>
      {{else if eq .Slide.ChartType "ranked"}}
        {{range .Slide.Ranked}}
        <div class="ranked-row">
          <div class="rank">{{.Rank}}</div>
          <div>{{.Label}}</div>
          <div class="value">{{.Value}}</div>
        </div>
        {{end}}
      {{end}}
    </div>
  </div>
  <footer><span>{{.Slide.Source}}</span><span>{{.Index}}/{{.Total}}</span></footer>
{{end}}
</body>
</html>`))

// BuildSlides renders the cover plus one HTML document per content slide, in
// swipe order.
func BuildSlides(c *content.Generated, style, coverImagePath string) ([]string, error) {
	pal, ok := palettes[style]
	if !ok {
		pal = palettes["clean"]
	}

	total := len(c.Slides) + 1
	htmls := make([]string, 0, total)

	coverImage, err := inlineImage(coverImagePath)
	if err != nil {
		return nil, err
	}

	cover := slideData{
		Palette:    pal,
		Index:      1,
		Total:      total,
		IsCover:    true,
		CoverImage: coverImage,
		Title:      c.CoverTitle,
		Subtitle:   c.CoverSubtitle,
	}
	html, err := renderTemplate(cover)
	if err != nil {
		return nil, err
	}
	htmls = append(htmls, html)

	for i := range c.Slides {
		slide := &c.Slides[i]
		data := slideData{
			Palette:       pal,
			Index:         i + 2,
			Total:         total,
			Slide:         slide,
			CTAText:       c.CTAText,
			DonutGradient: donutGradient(pal, slide.Donut),
		}
		html, err := renderTemplate(data)
		if err != nil {
			return nil, err
		}
		htmls = append(htmls, html)
	}
	return htmls, nil
}

func renderTemplate(data slideData) (string, error) {
	var b strings.Builder
	if err := slideTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("error rendering slide template: %w", err)
	}
	return b.String(), nil
}

// inlineImage embeds the cover photo as a data URI so the rendered document
// has no file dependencies.
func inlineImage(path string) (template.URL, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("error reading cover image: %w", err)
	}
	return template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)), nil
}

// donutGradient builds a conic-gradient with the highlighted segment in the
// accent color and the rest in shades of the muted color.
func donutGradient(pal palette, segments []content.DonutSegment) template.CSS {
	if len(segments) == 0 {
		return ""
	}

	shades := []string{pal.Muted, pal.Surface, pal.Ink, pal.Background}
	var parts []string
	angle := 0.0
	shade := 0
	for _, seg := range segments {
		color := shades[shade%len(shades)]
		if seg.Highlight {
			color = pal.Accent
		} else {
			shade++
		}
		next := angle + seg.Percent*3.6
		parts = append(parts, fmt.Sprintf("%s %.1fdeg %.1fdeg", color, angle, next))
		angle = next
	}
	return template.CSS("conic-gradient(" + strings.Join(parts, ", ") + ")")
}
