package content

// Structured carousel content as returned by the generation model. The JSON
// tags match the format the model is instructed to emit, and the snapshot
// stored in pipeline_log.content_json.

type BarItem struct {
	Label        string  `json:"label"`
	Value        float64 `json:"value"` // 0-100 bar width
	DisplayValue string  `json:"displayValue"`
}

type DonutSegment struct {
	Label     string  `json:"label"`
	Percent   float64 `json:"percent"`
	Highlight bool    `json:"highlight,omitempty"`
}

type CompareItem struct {
	Label       string `json:"label"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

type RankedItem struct {
	Rank  int    `json:"rank"`
	Label string `json:"label"`
	Value string `json:"value"`
}

type Slide struct {
	Heading            string         `json:"heading"`
	Body               string         `json:"body"`
	Stat               string         `json:"stat"`
	StatLabel          string         `json:"statLabel"`
	SecondaryStat      string         `json:"secondaryStat,omitempty"`
	SecondaryStatLabel string         `json:"secondaryStatLabel,omitempty"`
	ChartType          string         `json:"chartType,omitempty"` // bars, donut, compare, ranked
	Bars               []BarItem      `json:"bars,omitempty"`
	Donut              []DonutSegment `json:"donut,omitempty"`
	Compare            []CompareItem  `json:"compare,omitempty"`
	Ranked             []RankedItem   `json:"ranked,omitempty"`
	Source             string         `json:"source"`
}

type Generated struct {
	CoverTitle    string  `json:"coverTitle"`
	CoverSubtitle string  `json:"coverSubtitle"`
	Slides        []Slide `json:"slides"`
	CTAText       string  `json:"ctaText"`
	Caption       string  `json:"caption"`
	ImagePrompt   string  `json:"imagePrompt"`
	Source        string  `json:"source"`
}
