package gacha

import "fmt"

// Engine owns a catalog, the tier rates, the pity counter and the draw
// history. It is not safe for concurrent use; callers that share an engine
// must serialize access themselves.
type Engine struct {
	rng        RandomSource
	rates      map[Tier]float64
	cat        catalog
	pity       PityConfig
	count      int
	guaranteed int // index into cat.byTier[TopTier]
	history    []DrawResult
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithRNG sets the random source. It cannot be replaced afterwards.
func WithRNG(rng RandomSource) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// New returns an engine with default rates and pity and an empty catalog.
func New(opts ...Option) *Engine {
	e := &Engine{
		rng:   DefaultRNG(),
		rates: DefaultRates(),
		cat:   newCatalog(),
		pity:  DefaultPity(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Clone copies catalog, rates, pity config and guaranteed item into a fresh
// engine with zeroed counters and empty history.
func (e *Engine) Clone(rng RandomSource) *Engine {
	if rng == nil {
		rng = DefaultRNG()
	}
	rates := make(map[Tier]float64, len(e.rates))
	for t, r := range e.rates {
		rates[t] = r
	}
	return &Engine{
		rng:        rng,
		rates:      rates,
		cat:        e.cat.clone(),
		pity:       e.pity,
		guaranteed: e.guaranteed,
	}
}

// AddItem appends it to the catalog. Duplicate names are allowed and stay
// independently drawable. The first top-tier item becomes the guaranteed
// item until SetGuaranteedItem says otherwise.
func (e *Engine) AddItem(it Item) error {
	if !it.Tier.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTier, it.Tier)
	}
	if err := validateWeight(it.Weight); err != nil {
		return fmt.Errorf("item %q: %w", it.Name, err)
	}
	e.cat.add(it)
	return nil
}

// Items returns the whole catalog in insertion order.
func (e *Engine) Items() []Item {
	return append([]Item(nil), e.cat.items...)
}

// ItemsByTier returns the items of one tier in insertion order.
func (e *Engine) ItemsByTier(t Tier) []Item {
	return append([]Item(nil), e.cat.byTier[t]...)
}

// TierWeight is the cached weight sum of a tier. Informational only.
func (e *Engine) TierWeight(t Tier) float64 {
	return e.cat.weights[t]
}

// Lookup returns the first item named name.
func (e *Engine) Lookup(name string) (Item, bool) {
	for _, it := range e.cat.items {
		if it.Name == name {
			return it, true
		}
	}
	return Item{}, false
}

// SetGuaranteedItem selects the hard-pity item by its index among the
// top-tier items.
func (e *Engine) SetGuaranteedItem(index int) error {
	if index < 0 || index >= len(e.cat.byTier[TopTier]) {
		return fmt.Errorf("%w: top-tier index %d", ErrItemNotFound, index)
	}
	e.guaranteed = index
	return nil
}

// SetGuaranteedItemByName selects the first top-tier item named name.
func (e *Engine) SetGuaranteedItemByName(name string) error {
	for i, it := range e.cat.byTier[TopTier] {
		if it.Name == name {
			e.guaranteed = i
			return nil
		}
	}
	if _, ok := e.Lookup(name); ok {
		return fmt.Errorf("%w: %q", ErrNotTopTier, name)
	}
	return fmt.Errorf("%w: %q", ErrItemNotFound, name)
}

// GuaranteedItem reports the item hard pity will produce.
func (e *Engine) GuaranteedItem() (Item, bool) {
	top := e.cat.byTier[TopTier]
	if len(top) == 0 {
		return Item{}, false
	}
	return top[e.guaranteed], true
}

// GuaranteedIndex is the position of the guaranteed item among the top-tier
// items, or -1 when there are none.
func (e *Engine) GuaranteedIndex() int {
	if len(e.cat.byTier[TopTier]) == 0 {
		return -1
	}
	return e.guaranteed
}

// SetTierRate changes the base rate of one tier. Rates need not sum to 1.
func (e *Engine) SetTierRate(t Tier, rate float64) error {
	if !t.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownTier, t)
	}
	if err := validateRate(rate); err != nil {
		return fmt.Errorf("tier %s: %w", t, err)
	}
	next := make(map[Tier]float64, len(e.rates))
	for tt, r := range e.rates {
		next[tt] = r
	}
	next[t] = rate
	var total float64
	for _, r := range next {
		total += r
	}
	if total <= 0 {
		return ErrZeroRates
	}
	if !finite(boostedTotal(next, e.pity.SoftMultiplier)) {
		return fmt.Errorf("tier %s: %w: rate total overflows under soft pity", t, ErrInvalidRate)
	}
	e.rates = next
	return nil
}

// TierRate returns the base rate of t, or 0 for an unknown tier.
func (e *Engine) TierRate(t Tier) float64 {
	return e.rates[t]
}

// Ready reports whether draws can be resolved.
func (e *Engine) Ready() error {
	if len(e.cat.byTier[TopTier]) == 0 {
		return ErrNoTopTierItem
	}
	return nil
}

// History returns every result so far, oldest first.
func (e *Engine) History() []DrawResult {
	return append([]DrawResult(nil), e.history...)
}

// HistorySummary counts results per tier and item name.
func (e *Engine) HistorySummary() map[Tier]map[string]int {
	out := make(map[Tier]map[string]int)
	for _, r := range e.history {
		m, ok := out[r.Tier]
		if !ok {
			m = make(map[string]int)
			out[r.Tier] = m
		}
		m[r.Item]++
	}
	return out
}
