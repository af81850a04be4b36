package gacha

// DrawResult is one resolved draw.
type DrawResult struct {
	Item        string `json:"item"`
	Tier        Tier   `json:"tier"`
	Guaranteed  bool   `json:"guaranteed"`            // true only when hard pity fired
	Sequence    int    `json:"sequence"`              // draw count when resolved, before any reset
	Placeholder bool   `json:"placeholder,omitempty"` // tier had no items
}

// Draw performs one draw.
// - Count increments first; reaching HardThreshold yields the guaranteed item.
// - Otherwise the tier is rolled with the soft-pity boost, then the item by weight.
// - Any top-tier result resets the count to 0.
// The only error is ErrNoTopTierItem, returned before any state changes.
func (e *Engine) Draw() (DrawResult, error) {
	if err := e.Ready(); err != nil {
		return DrawResult{}, err
	}
	return e.draw(), nil
}

// batchPrealloc bounds the up-front allocation of DrawMany; larger batches
// grow by append.
const batchPrealloc = 128

// DrawMany performs n sequential draws and returns them in call order.
// Memory grows with n; transports cap n before calling.
func (e *Engine) DrawMany(n int) ([]DrawResult, error) {
	if n <= 0 {
		return []DrawResult{}, nil
	}
	if err := e.Ready(); err != nil {
		return nil, err
	}
	out := make([]DrawResult, 0, min(n, batchPrealloc))
	for i := 0; i < n; i++ {
		out = append(out, e.draw())
	}
	return out, nil
}

func (e *Engine) draw() DrawResult {
	e.count++

	// hard pity short-circuits all probability math
	if e.count >= e.pity.HardThreshold {
		it := e.cat.byTier[TopTier][e.guaranteed]
		res := DrawResult{Item: it.Name, Tier: TopTier, Guaranteed: true, Sequence: e.count}
		e.count = 0
		e.history = append(e.history, res)
		return res
	}

	tier := rollTier(e.chances(e.count), unit(e.rng))
	res := DrawResult{Tier: tier, Sequence: e.count}
	if items := e.cat.byTier[tier]; len(items) == 0 {
		res.Item = placeholderName(tier)
		res.Placeholder = true
	} else {
		res.Item = pickItem(items, unit(e.rng)).Name
	}

	if tier == TopTier {
		e.count = 0
	}
	e.history = append(e.history, res)
	return res
}
