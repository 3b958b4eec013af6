// Package scan implements the radar pipeline: normalize raw listings, resolve
// order-book depth across the live, mock and market-derived tiers, score the
// result and rank it.
package scan

import (
	"encoding/json"
	"strings"

	"github.com/alanyoungcy/polyradar/internal/domain"
)

const (
	unknownID       = "unknown"
	untitledMarket  = "Untitled market"
	tokenListPrefix = "["
)

// Accessor candidates per logical field, evaluated first-present.
var (
	tokenListKeys   = []string{"clob_token_ids", "clobTokenIds"}
	tokenObjectKeys = []string{"token_id", "tokenId", "clob_token_id", "clobTokenId", "id"}
	tokenScalarKeys = []string{"token_id", "tokenId"}

	volumeKeys    = []string{"volume_num", "volumeNum", "volume", "event_volume", "eventVolume"}
	liquidityKeys = []string{"liquidity_num", "liquidityNum", "liquidity", "depth"}
	questionKeys  = []string{"question", "title", "market_question", "slug"}
	endDateKeys   = []string{"end_date", "endDate"}
	conditionKeys = []string{"condition_id", "conditionId"}
)

// Normalize converts an arbitrary raw record into a Market. It never fails.
func Normalize(raw domain.RawMarket) domain.Market {
	if raw == nil {
		raw = domain.RawMarket{}
	}
	tokenID := ExtractTokenID(raw)

	closed := boolField(raw, false, "closed")
	m := domain.Market{
		Slug:        slugField(raw),
		Question:    stringField(raw, untitledMarket, questionKeys...),
		Closed:      closed,
		Active:      boolField(raw, !closed, "active"),
		EndDate:     optionalString(raw, endDateKeys...),
		ConditionID: optionalString(raw, conditionKeys...),
		TokenID:     tokenID,
		Volume:      nonNegative(numberField(raw, volumeKeys...)),
		Liquidity:   nonNegative(numberField(raw, liquidityKeys...)),
		Raw:         raw,
	}

	m.ID = stringField(raw, "", "id", "market_id", "slug")
	if m.ID == "" && tokenID != nil {
		m.ID = *tokenID
	}
	if m.ID == "" {
		m.ID = unknownID
	}
	return m
}

// ExtractTokenID returns the first token id found on raw, or nil.
func ExtractTokenID(raw domain.RawMarket) *string {
	ids := ExtractTokenIDs(raw)
	if len(ids) == 0 {
		return nil
	}
	return &ids[0]
}

// ExtractTokenIDs collects every token id on raw in discovery order with
// duplicates removed. Sources are, in order: the token-id lists, the token
// sub-objects, then the scalar token-id fields.
func ExtractTokenIDs(raw domain.RawMarket) []string {
	c := tokenCollector{seen: map[string]bool{}}

	for _, k := range tokenListKeys {
		c.addList(raw[k])
	}

	if tokens, ok := raw["tokens"].([]any); ok {
		for _, t := range tokens {
			obj, ok := t.(map[string]any)
			if !ok {
				continue
			}
			for _, k := range tokenObjectKeys {
				c.push(obj[k])
			}
		}
	}

	for _, k := range tokenScalarKeys {
		c.push(raw[k])
	}
	return c.ids
}

type tokenCollector struct {
	seen map[string]bool
	ids  []string
}

func (c *tokenCollector) push(v any) {
	if v == nil {
		return
	}
	s, ok := domain.ToString(v)
	if !ok {
		return
	}
	s = strings.TrimSpace(s)
	if s == "" || c.seen[s] {
		return
	}
	c.seen[s] = true
	c.ids = append(c.ids, s)
}

// addList accepts an array, a JSON-encoded array string or a comma-separated
// string. A bracketed string that is not valid JSON is comma-split as is.
func (c *tokenCollector) addList(v any) {
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			c.push(item)
		}
	case []string:
		for _, item := range x {
			c.push(item)
		}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return
		}
		if strings.HasPrefix(s, tokenListPrefix) {
			var parsed []any
			dec := json.NewDecoder(strings.NewReader(s))
			dec.UseNumber()
			if err := dec.Decode(&parsed); err == nil && !dec.More() {
				for _, item := range parsed {
					c.push(item)
				}
				return
			}
		}
		for _, part := range strings.Split(s, ",") {
			c.push(part)
		}
	}
}

// stringField returns the first present candidate that renders as a
// non-blank string.
func stringField(raw domain.RawMarket, fallback string, keys ...string) string {
	for _, k := range keys {
		s, ok := domain.ToString(raw[k])
		if ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return fallback
}

// slugField falls back to id only when slug is absent. An explicit empty
// slug stays empty so no market link is built from the id.
func slugField(raw domain.RawMarket) string {
	v, ok := raw.First("slug", "id")
	if !ok {
		return ""
	}
	s, _ := domain.ToString(v)
	return s
}

func optionalString(raw domain.RawMarket, keys ...string) *string {
	v, ok := raw.First(keys...)
	if !ok {
		return nil
	}
	s, ok := domain.ToString(v)
	if !ok {
		return nil
	}
	return &s
}

func boolField(raw domain.RawMarket, fallback bool, keys ...string) bool {
	v, ok := raw.First(keys...)
	if !ok {
		return fallback
	}
	b, ok := domain.ToBool(v)
	if !ok {
		return fallback
	}
	return b
}

// numberField coerces the first present candidate. A present but invalid
// value yields 0 rather than moving on to the next key.
func numberField(raw domain.RawMarket, keys ...string) float64 {
	v, _ := raw.First(keys...)
	return domain.ToNumber(v, 0)
}

func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
