// types.go
package banner

// Raw config loaded from YAML; mirrors the banner file schema.
type RawConfig struct {
	Version    string             `yaml:"version"`
	Title      string             `yaml:"title,omitempty"`
	Rates      map[string]float64 `yaml:"rates,omitempty"` // tier label -> base rate
	Pity       *PityCfg           `yaml:"pity,omitempty"`
	Items      []ItemCfg          `yaml:"items,omitempty"`
	Guaranteed string             `yaml:"guaranteed,omitempty"` // top-tier item name
	Tokens     *TokenConfig       `yaml:"tokens,omitempty"`
	Notes      string             `yaml:"notes,omitempty"`
}

type PityCfg struct {
	Hard       *int     `yaml:"hard"`
	SoftStart  *int     `yaml:"soft_start"`
	Multiplier *float64 `yaml:"multiplier"`
}

type ItemCfg struct {
	Name   string  `yaml:"name"`
	Tier   string  `yaml:"tier"`
	Weight float64 `yaml:"weight"`
	Title  string  `yaml:"title,omitempty"`
	Flavor string  `yaml:"flavor,omitempty"`
}

type TokenConfig struct {
	Name       string `yaml:"name,omitempty"`
	PerDraw    *int   `yaml:"per_draw"`
	PerTenDraw *int   `yaml:"per_ten_draw"`
}
