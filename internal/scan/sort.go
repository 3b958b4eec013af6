package scan

import (
	"math"
	"slices"
	"strings"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

var sortKeys = map[string]func(domain.ScoredMarket) *float64{
	domain.SortByScore:     func(m domain.ScoredMarket) *float64 { return &m.Score },
	domain.SortByLiquidity: func(m domain.ScoredMarket) *float64 { return &m.Liquidity },
	domain.SortByVolume:    func(m domain.ScoredMarket) *float64 { return &m.Volume },
	domain.SortBySpread:    func(m domain.ScoredMarket) *float64 { return m.Spread },
	domain.SortByMidpoint:  func(m domain.ScoredMarket) *float64 { return m.Midpoint },
}

// NormalizeSort maps arbitrary input onto a supported key and direction.
func NormalizeSort(sortBy, order string) (string, string) {
	key := strings.ToLower(strings.TrimSpace(sortBy))
	if _, ok := sortKeys[key]; !ok {
		key = domain.SortByScore
	}
	dir := domain.OrderDesc
	if strings.EqualFold(strings.TrimSpace(order), domain.OrderAsc) {
		dir = domain.OrderAsc
	}
	return key, dir
}

// SortMarkets returns a sorted copy of rows. Rows lacking a finite value for
// the key always come last, whichever the direction; ties keep input order.
func SortMarkets(rows []domain.ScoredMarket, sortBy, order string) []domain.ScoredMarket {
	key, dir := NormalizeSort(sortBy, order)
	valueOf := sortKeys[key]

	out := slices.Clone(rows)
	slices.SortStableFunc(out, func(a, b domain.ScoredMarket) int {
		va, okA := sortValue(valueOf(a))
		vb, okB := sortValue(valueOf(b))
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return 1
		case !okB:
			return -1
		}
		c := 0
		if va < vb {
			c = -1
		} else if va > vb {
			c = 1
		}
		if dir == domain.OrderDesc {
			c = -c
		}
		return c
	})
	return out
}

func sortValue(v *float64) (float64, bool) {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0, false
	}
	return *v, true
}
