package gacha

// Item is one drawable entry. Weight is relative to the other items of the
// same tier.
type Item struct {
	Name   string  `json:"name" yaml:"name"`
	Tier   Tier    `json:"tier" yaml:"tier"`
	Weight float64 `json:"weight" yaml:"weight"`
	Title  string  `json:"title,omitempty" yaml:"title,omitempty"`
	Flavor string  `json:"flavor,omitempty" yaml:"flavor,omitempty"`
}

// catalog keeps insertion order globally and per tier, plus a cached weight
// sum per tier for rate reporting.
type catalog struct {
	items   []Item
	byTier  map[Tier][]Item
	weights map[Tier]float64
}

func newCatalog() catalog {
	return catalog{
		byTier:  make(map[Tier][]Item),
		weights: make(map[Tier]float64),
	}
}

func (c *catalog) add(it Item) {
	c.items = append(c.items, it)
	c.byTier[it.Tier] = append(c.byTier[it.Tier], it)
	c.weights[it.Tier] += it.Weight
}

func (c *catalog) clone() catalog {
	out := newCatalog()
	out.items = append([]Item(nil), c.items...)
	for t, items := range c.byTier {
		out.byTier[t] = append([]Item(nil), items...)
	}
	for t, w := range c.weights {
		out.weights[t] = w
	}
	return out
}

// pickItem walks items in insertion order; the first item whose cumulative
// weight reaches r*total wins, so exact boundaries favor the earlier item.
func pickItem(items []Item, r float64) Item {
	var total float64
	for _, it := range items {
		total += it.Weight
	}
	target := r * total
	var cum float64
	for _, it := range items {
		cum += it.Weight
		if target <= cum {
			return it
		}
	}
	return items[len(items)-1]
}
