package domain

// DepthSource records which tier produced a depth quote.
type DepthSource string

const (
	DepthLive        DepthSource = "live"
	DepthMock        DepthSource = "mock"
	DepthMarket      DepthSource = "market"
	DepthUnavailable DepthSource = "unavailable"
	DepthNone        DepthSource = "none"
)

// DepthQuote is a midpoint/spread pair. Nil fields were not resolved.
type DepthQuote struct {
	Midpoint *float64    `json:"midpoint"`
	Spread   *float64    `json:"spread"`
	Source   DepthSource `json:"source"`
}

// NoDepth returns an empty quote with the given provenance.
func NoDepth(src DepthSource) DepthQuote {
	return DepthQuote{Source: src}
}

// Empty reports whether neither field is resolved.
func (q DepthQuote) Empty() bool {
	return q.Midpoint == nil && q.Spread == nil
}

// Float returns a pointer to a copy of v.
func Float(v float64) *float64 {
	return &v
}
