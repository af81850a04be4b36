package token

// Token defines how many units a pull costs.

type Token struct {
	Name       string `json:"name"`         // e.g. "Primogem", "Star Stone"
	PerDraw    int    `json:"per_draw"`     // tokens per single draw, e.g. 160
	PerTenDraw int    `json:"per_ten_draw"` // optional; if 0 -> equal to 10 * PerDraw
}

// Default is the price a banner gets when its config has no tokens section.
func Default() Token {
	return Token{Name: "Pull", PerDraw: 1, PerTenDraw: 10}
}

// TokensForDraws returns how many tokens are required for n draws.
// Full groups of ten are charged at PerTenDraw when it is set.
func (t Token) TokensForDraws(n int) int {
	if n <= 0 {
		return 0
	}
	if t.PerTenDraw > 0 && n >= 10 {
		tens := n / 10
		rem := n % 10
		return tens*t.PerTenDraw + rem*t.PerDraw
	}
	return n * t.PerDraw
}
