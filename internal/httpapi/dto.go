package httpapi

import (
	"github.com/xtding233/gacha-sim/internal/gacha"
	"github.com/xtding233/gacha-sim/internal/session"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type DrawResultResp struct {
	Item        string     `json:"item"`
	Tier        gacha.Tier `json:"tier"`
	Stars       int        `json:"stars"`
	Guaranteed  bool       `json:"guaranteed"`
	Sequence    int        `json:"sequence"`
	Placeholder bool       `json:"placeholder,omitempty"`
	Title       string     `json:"title,omitempty"`
	Flavor      string     `json:"flavor,omitempty"`
}

type DrawResponse struct {
	Results []DrawResultResp `json:"results"`
	Cost    int              `json:"cost"`
	Status  session.Status   `json:"status"`
}

type HistoryResponse struct {
	Results []DrawResultResp `json:"results"`
}

type SummaryResponse struct {
	Summary map[gacha.Tier]map[string]int `json:"summary"`
}

type PityRequest struct {
	Hard       int     `json:"hard"`
	SoftStart  int     `json:"soft_start"`
	Multiplier float64 `json:"multiplier"`
}

// GuaranteedRequest selects by name when Name is set, else by Index among
// the top-tier items.
type GuaranteedRequest struct {
	Name  string `json:"name,omitempty"`
	Index *int   `json:"index,omitempty"`
}

type TierResp struct {
	Tier   gacha.Tier   `json:"tier"`
	Rate   float64      `json:"rate"`
	Weight float64      `json:"weight"`
	Items  []gacha.Item `json:"items"`
}

type CatalogResponse struct {
	Banner     string           `json:"banner"`
	Title      string           `json:"title,omitempty"`
	Version    string           `json:"version,omitempty"`
	Tiers      []TierResp       `json:"tiers"`
	Pity       gacha.PityConfig `json:"pity"`
	Guaranteed string           `json:"guaranteed"`
}

type SimulateResponse struct {
	Banner string          `json:"banner"`
	Goal   gacha.TrialGoal `json:"goal"`
	Stats  gacha.Stats     `json:"stats"`
}

func toResults(e *gacha.Engine, rs []gacha.DrawResult) []DrawResultResp {
	out := make([]DrawResultResp, len(rs))
	for i, r := range rs {
		out[i] = DrawResultResp{
			Item:        r.Item,
			Tier:        r.Tier,
			Stars:       r.Tier.Stars(),
			Guaranteed:  r.Guaranteed,
			Sequence:    r.Sequence,
			Placeholder: r.Placeholder,
		}
		if it, ok := e.Lookup(r.Item); ok && !r.Placeholder {
			out[i].Title = it.Title
			out[i].Flavor = it.Flavor
		}
	}
	return out
}
