package coingecko

// AssetSummary is one row of the /coins/markets listing. Prices and market
// figures are expressed in the currency the listing was requested in.
//
// Nullable upstream fields are pointers; a nil value means the service
// reported no figure (for example an uncapped supply).
type AssetSummary struct {
	ID                           string   `json:"id"`
	Symbol                       string   `json:"symbol"`
	Name                         string   `json:"name"`
	Image                        string   `json:"image"`
	CurrentPrice                 float64  `json:"current_price"`
	MarketCap                    float64  `json:"market_cap"`
	MarketCapRank                int      `json:"market_cap_rank"`
	FullyDilutedValuation        *float64 `json:"fully_diluted_valuation"`
	TotalVolume                  float64  `json:"total_volume"`
	High24h                      float64  `json:"high_24h"`
	Low24h                       float64  `json:"low_24h"`
	PriceChange24h               float64  `json:"price_change_24h"`
	PriceChangePercentage24h     float64  `json:"price_change_percentage_24h"`
	MarketCapChange24h           float64  `json:"market_cap_change_24h"`
	MarketCapChangePercentage24h float64  `json:"market_cap_change_percentage_24h"`
	CirculatingSupply            float64  `json:"circulating_supply"`
	TotalSupply                  *float64 `json:"total_supply"`
	MaxSupply                    *float64 `json:"max_supply"`
	ATH                          float64  `json:"ath"`
	ATHChangePercentage          float64  `json:"ath_change_percentage"`
	ATHDate                      string   `json:"ath_date"`
	ATL                          float64  `json:"atl"`
	ATLChangePercentage          float64  `json:"atl_change_percentage"`
	ATLDate                      string   `json:"atl_date"`
	LastUpdated                  string   `json:"last_updated"`
}

// AssetDetail is the /coins/{id} document with market data for every
// supported quote currency.
type AssetDetail struct {
	ID                           string      `json:"id"`
	Symbol                       string      `json:"symbol"`
	Name                         string      `json:"name"`
	Image                        Image       `json:"image"`
	Description                  Description `json:"description"`
	Links                        Links       `json:"links"`
	Categories                   []string    `json:"categories"`
	MarketCapRank                int         `json:"market_cap_rank"`
	SentimentVotesUpPercentage   float64     `json:"sentiment_votes_up_percentage"`
	SentimentVotesDownPercentage float64     `json:"sentiment_votes_down_percentage"`
	MarketData                   MarketData  `json:"market_data"`
	LastUpdated                  string      `json:"last_updated"`
}

// Image holds the asset logo in three sizes.
type Image struct {
	Thumb string `json:"thumb"`
	Small string `json:"small"`
	Large string `json:"large"`
}

// Description holds the English project description (may contain HTML).
type Description struct {
	EN string `json:"en"`
}

// Links groups the project's external links. Slots the service leaves empty
// come back as empty strings inside the slices.
type Links struct {
	Homepage          []string `json:"homepage"`
	BlockchainSite    []string `json:"blockchain_site"`
	OfficialForumURL  []string `json:"official_forum_url"`
	SubredditURL      string   `json:"subreddit_url"`
	TwitterScreenName string   `json:"twitter_screen_name"`
	ReposURL          Repos    `json:"repos_url"`
}

// Repos lists source repositories.
type Repos struct {
	GitHub []string `json:"github"`
}

// MarketData holds per-currency figures keyed by lower-case currency code.
type MarketData struct {
	CurrentPrice                       map[string]float64 `json:"current_price"`
	MarketCap                          map[string]float64 `json:"market_cap"`
	TotalVolume                        map[string]float64 `json:"total_volume"`
	High24h                            map[string]float64 `json:"high_24h"`
	Low24h                             map[string]float64 `json:"low_24h"`
	ATH                                map[string]float64 `json:"ath"`
	ATL                                map[string]float64 `json:"atl"`
	PriceChangePercentage24h           float64            `json:"price_change_percentage_24h"`
	PriceChangePercentage7d            float64            `json:"price_change_percentage_7d"`
	PriceChangePercentage30d           float64            `json:"price_change_percentage_30d"`
	PriceChangePercentage24hInCurrency map[string]float64 `json:"price_change_percentage_24h_in_currency"`
	CirculatingSupply                  float64            `json:"circulating_supply"`
	TotalSupply                        *float64           `json:"total_supply"`
	MaxSupply                          *float64           `json:"max_supply"`
}

// Summary projects the detail onto the listing shape for one currency.
// Figures missing for that currency are zero. Fields the detail view never
// shows (24h range, ATH/ATL, rank changes) are left empty.
func (d *AssetDetail) Summary(currency string) AssetSummary {
	md := d.MarketData
	return AssetSummary{
		ID:                       d.ID,
		Symbol:                   d.Symbol,
		Name:                     d.Name,
		Image:                    d.Image.Large,
		CurrentPrice:             md.CurrentPrice[currency],
		MarketCap:                md.MarketCap[currency],
		MarketCapRank:            d.MarketCapRank,
		TotalVolume:              md.TotalVolume[currency],
		PriceChangePercentage24h: md.PriceChangePercentage24h,
		CirculatingSupply:        md.CirculatingSupply,
		TotalSupply:              md.TotalSupply,
		MaxSupply:                md.MaxSupply,
		LastUpdated:              d.LastUpdated,
	}
}

// Homepage returns the first non-empty homepage link, or "".
func (d *AssetDetail) Homepage() string {
	for _, u := range d.Links.Homepage {
		if u != "" {
			return u
		}
	}
	return ""
}

// SearchResult is the /search response. Only coin matches are kept.
type SearchResult struct {
	Coins []SearchCoin `json:"coins"`
}

// SearchCoin is a single coin match. MarketCapRank is nil for unranked coins.
type SearchCoin struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	MarketCapRank *int   `json:"market_cap_rank"`
	Thumb         string `json:"thumb"`
	Large         string `json:"large"`
}
