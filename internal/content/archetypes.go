package content

import "time"

// Archetype describes one carousel format: what the cover looks like, how the
// slides are structured, and which visual templates suit it.
type Archetype struct {
	ID              string
	Name            string
	Goal            string
	PreferredStyles []string
	CoverPrompt     string
	SlidePrompt     string
	ToneDirective   string
	LastSlideCTA    string
}

var Archetypes = []Archetype{
	{
		ID:              "brutal-stat",
		Name:            "The Brutal Stat",
		Goal:            "Saves + shares",
		PreferredStyles: []string{"noir", "editorial"},
		CoverPrompt: `Cover MUST be a single massive statistic as the title — just the number (e.g. "77%") ` +
			`with a short subtitle explaining it. Make it punchy and impossible to scroll past.`,
		SlidePrompt: `Structure:
- Slide 1: CONTEXT — explain where this number comes from and why most people don't know it. Use global data.
- Slide 2: COMPARISON — compare between countries or regions. Think Global North vs Global South.
- Slide 3: HUMAN COST — who suffers globally because of this. Use numbers: deaths, displacement, economic losses.
- Slide 4: Make the heading "Save This." and write a 2-sentence summary of why this matters. Include a final powerful stat.`,
		ToneDirective: "Bold, punchy, no fluff. Short sentences. Every word must hit hard.",
		LastSlideCTA:  "Save This.",
	},
	{
		ID:              "this-affects-you",
		Name:            `The "This Affects You"`,
		Goal:            "Personal relevance + comments",
		PreferredStyles: []string{"clean", "editorial"},
		CoverPrompt: `Cover title must use SECOND PERSON — address the reader directly. ` +
			`Format: "How [climate topic] will affect your [everyday thing]". Make it universally relevant, not country-specific.`,
		SlidePrompt: `Structure (use "you/your" throughout — speak to a GLOBAL audience):
- Slide 1: Explain how this impacts everyday life WORLDWIDE. Use data from multiple countries.
- Slide 2: Show the data — frame it as "This means you will..." with global examples.
- Slide 3: What's already happening — real examples from different continents.
- Slide 4: End with a provocative QUESTION as the heading. The body should challenge the reader to think or act.`,
		ToneDirective: "Second person throughout. Personal, relatable, conversational. Globally relevant.",
	},
	{
		ID:              "myth-vs-reality",
		Name:            "Myth vs Reality",
		Goal:            "Shareability",
		PreferredStyles: []string{"editorial", "clean"},
		CoverPrompt: `Cover title must start with "Myth:" followed by a common climate misconception. ` +
			`Subtitle should hint at the reality.`,
		SlidePrompt: `Structure:
- Slide 1: "Reality:" as the heading — state the truth clearly with data that demolishes the myth.
- Slide 2: EVIDENCE — the strongest supporting data, studies, or examples.
- Slide 3: WHY THE MYTH EXISTS — who benefits from this misconception.
- Slide 4: Heading should be "Share This With Someone Who Needs To Know." Brief summary + the single most powerful counter-stat.`,
		ToneDirective: "Myth-busting, authoritative, slightly confrontational.",
		LastSlideCTA:  "Share This.",
	},
	{
		ID:              "localized-impact",
		Name:            "The Country Spotlight",
		Goal:            "Shareability + saves",
		PreferredStyles: []string{"editorial", "clean"},
		CoverPrompt: `Cover title must mention a SPECIFIC COUNTRY facing major climate impacts. ` +
			`Pick a Global South country currently experiencing severe consequences. Subtitle should name the specific threat.`,
		SlidePrompt: `Structure (COUNTRY-LEVEL — all data must be about this ONE country):
- Slide 1: THE THREAT — what climate danger this country faces. Use national-level data.
- Slide 2: THE SCALE — how many millions affected, GDP losses, infrastructure damage.
- Slide 3: THE CONTRAST — compare this country's per-capita emissions to the Global North nations causing the crisis.
- Slide 4: Heading should be "Tag Someone From [Country Name]." Summarize the urgency.`,
		ToneDirective: "Country-specific, data-driven, globally conscious.",
		LastSlideCTA:  "Tag Someone From Here.",
	},
	{
		ID:              "policy-breakdown",
		Name:            "The Policy Breakdown",
		Goal:            "Intelligent discussion",
		PreferredStyles: []string{"clean", "editorial"},
		CoverPrompt: `Cover title must reference a specific POLICY, AGREEMENT, or REGULATION. ` +
			`Subtitle should pose the key question.`,
		SlidePrompt: `Structure (ANALYTICAL):
- Slide 1: THE GOAL — what the policy aims to achieve. Original targets, commitments, deadlines.
- Slide 2: CURRENT PROGRESS — where we actually stand.
- Slide 3: THE GAP — the difference between what was promised and what's happening.
- Slide 4: DISCUSSION QUESTION — heading should be a thought-provoking question. Present both sides briefly.`,
		ToneDirective: "Analytical, balanced, intelligent. Let the data speak.",
	},
}

// weekdaySchedule maps day-of-week (Sunday = 0) to the morning and evening
// archetype for that day.
var weekdaySchedule = [7][2]string{
	{"localized-impact", "this-affects-you"},
	{"brutal-stat", "policy-breakdown"},
	{"myth-vs-reality", "policy-breakdown"},
	{"localized-impact", "myth-vs-reality"},
	{"this-affects-you", "brutal-stat"},
	{"brutal-stat", "myth-vs-reality"},
	{"myth-vs-reality", "localized-impact"},
}

// PickArchetype selects the archetype for the current day and slot.
func PickArchetype(forEvening bool) Archetype {
	slot := 0
	if forEvening {
		slot = 1
	}
	id := weekdaySchedule[int(time.Now().Weekday())][slot]
	return ArchetypeByID(id)
}

// ArchetypeByID falls back to the first archetype for unknown ids.
func ArchetypeByID(id string) Archetype {
	for _, a := range Archetypes {
		if a.ID == id {
			return a
		}
	}
	return Archetypes[0]
}
