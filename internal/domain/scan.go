package domain

import "time"

// ListSource records where the market list of a scan came from.
type ListSource string

const (
	ListLive ListSource = "live"
	ListMock ListSource = "mock"
)

// Sort keys accepted by a scan.
const (
	SortByScore     = "score"
	SortByLiquidity = "liquidity"
	SortByVolume    = "volume"
	SortBySpread    = "spread"
	SortByMidpoint  = "midpoint"

	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// ScanRequest carries already validated scan parameters.
type ScanRequest struct {
	Search string `json:"search"`
	Limit  int    `json:"limit"`
	Enrich bool   `json:"enrich"`
	SortBy string `json:"sortBy"`
	Order  string `json:"order"`
}

// ScanResult is the ranked output of one scan.
type ScanResult struct {
	ScanID      string         `json:"scanId,omitempty"`
	Source      ListSource     `json:"source"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Markets     []ScoredMarket `json:"markets"`
}

// ScanSummary is the compact form of a ScanResult pushed to subscribers.
type ScanSummary struct {
	ScanID      string     `json:"scanId"`
	Source      ListSource `json:"source"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Count       int        `json:"count"`
	TopID       string     `json:"topId,omitempty"`
	TopQuestion string     `json:"topQuestion,omitempty"`
	TopScore    float64    `json:"topScore"`
	LiveDepth   int        `json:"liveDepth"`
}

// Summary condenses r for broadcast.
func (r ScanResult) Summary() ScanSummary {
	s := ScanSummary{
		ScanID:      r.ScanID,
		Source:      r.Source,
		GeneratedAt: r.GeneratedAt,
		Count:       len(r.Markets),
	}
	if len(r.Markets) > 0 {
		s.TopID = r.Markets[0].ID
		s.TopQuestion = r.Markets[0].Question
		s.TopScore = r.Markets[0].Score
	}
	for _, m := range r.Markets {
		if m.DepthSource == DepthLive {
			s.LiveDepth++
		}
	}
	return s
}
