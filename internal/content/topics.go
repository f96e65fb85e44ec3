package content

// Topic is one entry in the static rotation the pipeline cycles through.
type Topic struct {
	ID          string `json:"id"`
	Theme       string `json:"theme"`
	Description string `json:"description"`
}

var Topics = []Topic{
	{
		ID:          "fossil-fuel-giants",
		Theme:       "Fossil fuel corporations and their role in global emissions",
		Description: "ExxonMobil, Shell, BP, Chevron, Saudi Aramco, ConocoPhillips, TotalEnergies — who profits, who knew, who lied",
	},
	{
		ID:          "billionaire-carbon",
		Theme:       "Billionaire lifestyles and their outsized carbon footprints",
		Description: "Private jets, superyachts, luxury real estate, space tourism — the ultra-wealthy vs the average person",
	},
	{
		ID:          "water-privatization",
		Theme:       "Corporate water privatization and freshwater depletion",
		Description: "Nestlé, Coca-Cola, Danone, industrial agriculture draining aquifers and bottling public water for profit",
	},
	{
		ID:          "big-meat-industry",
		Theme:       "The meat and dairy industry's climate impact",
		Description: "JBS, Tyson, Cargill, Dairy Farmers of America — emissions, deforestation, methane, lobbying",
	},
	{
		ID:          "big-tech-energy",
		Theme:       "Big tech companies and their massive energy consumption",
		Description: "Google, Microsoft, Amazon, Meta — data centers, AI training, crypto mining, carbon offset games",
	},
	{
		ID:          "plastic-producers",
		Theme:       "Corporations behind the global plastic crisis",
		Description: "Coca-Cola, PepsiCo, Nestlé, Unilever, petrochemical companies — production, pollution, recycling myth",
	},
	{
		ID:          "greenwashing-exposed",
		Theme:       "Corporate greenwashing and false climate promises",
		Description: "Shell, BP, TotalEnergies, airlines, car companies — green marketing vs actual climate action",
	},
	{
		ID:          "banking-fossil-fuels",
		Theme:       "Banks and financial institutions funding fossil fuels",
		Description: "JPMorgan Chase, Citi, Bank of America, HSBC, BlackRock, Vanguard — trillions flowing into fossil fuels",
	},
	{
		ID:          "lobbying-machine",
		Theme:       "Fossil fuel lobbying and climate denial funding",
		Description: "Koch network, ExxonMobil, API, dark money think tanks — blocking climate policy for decades",
	},
	{
		ID:          "auto-industry-delay",
		Theme:       "How the auto industry delayed clean transportation",
		Description: "GM, Toyota, Volkswagen — killed EVs, rigged emissions, lobbied against efficiency standards",
	},
}

// NextTopic advances the rotation round-robin from the last used topic.
// An empty or unknown lastUsedID starts the rotation at the first topic.
func NextTopic(lastUsedID string) Topic {
	if lastUsedID == "" {
		return Topics[0]
	}
	lastIndex := -1
	for i, t := range Topics {
		if t.ID == lastUsedID {
			lastIndex = i
			break
		}
	}
	return Topics[(lastIndex+1)%len(Topics)]
}
