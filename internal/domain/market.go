package domain

// Market is the canonical shape every raw listing is normalized into.
type Market struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Question    string    `json:"question"`
	Active      bool      `json:"active"`
	Closed      bool      `json:"closed"`
	EndDate     *string   `json:"endDate"`
	ConditionID *string   `json:"conditionId"`
	TokenID     *string   `json:"tokenId"`
	Volume      float64   `json:"volume"`
	Liquidity   float64   `json:"liquidity"`
	Raw         RawMarket `json:"raw"`
}

// Tradable reports whether the market survives the scan filter.
func (m Market) Tradable() bool {
	return m.Active && !m.Closed
}

// ScoredMarket is a Market decorated with ranking metrics for display.
type ScoredMarket struct {
	Market
	Score       float64     `json:"score"`
	Spread      *float64    `json:"spread"`
	Midpoint    *float64    `json:"midpoint"`
	DepthSource DepthSource `json:"depthSource"`
	MarketURL   *string     `json:"marketUrl"`
}
