// Package tui is a terminal front end for one engine. It only formats
// engine results; all draw logic stays in package gacha.
package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/gacha"
)

const (
	nameWidth   = 18
	titleWidth  = 20
	flavorWidth = 10

	// historyTail is how many recent pulls the history view lists.
	historyTail = 20
	// untilTopLimit stops a pull-until-top run that has not hit the top tier.
	untilTopLimit = 100

	helpLine = "[1] pull [2] x10 [3] pity [4] history [5] pick [6] catalog [7] rates [8] until SSR [g] cycle [q] quit"
	pickHelp = "[1-9] choose guarantee  [Esc] back"
)

type view int

const (
	viewResults view = iota
	viewStatus
	viewHistory
	viewPick
	viewCatalog
	viewRates
	viewUntilTop
)

// App drives one banner session on a tcell screen.
type App struct {
	screen  tcell.Screen
	banner  banner.Built
	view    view
	last    []gacha.DrawResult
	message string
	spent   int

	// last pull-until-top run
	untilTopPulls int
	untilTopHit   bool
	untilTopCost  int
}

func New(screen tcell.Screen, b banner.Built) *App {
	return &App{screen: screen, banner: b}
}

// Run blocks until the user quits or the screen is finalized.
func (a *App) Run() {
	for {
		a.Render()
		ev := a.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventResize:
			a.screen.Sync()
		case *tcell.EventKey:
			if a.HandleKey(ev) {
				return
			}
		}
	}
}

// HandleKey applies one key press and reports whether the app should quit.
func (a *App) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		return true
	}
	if a.view == viewPick {
		a.handlePick(ev)
		return false
	}
	if ev.Key() == tcell.KeyEscape {
		return true
	}
	switch ev.Rune() {
	case 'q', 'Q', '0':
		return true
	case '1':
		a.pull(1)
	case '2':
		a.pull(10)
	case '3':
		a.view = viewStatus
	case '4':
		a.view = viewHistory
	case '5':
		if len(a.banner.Engine.ItemsByTier(gacha.TopTier)) == 0 {
			a.message = gacha.ErrNoTopTierItem.Error()
			return false
		}
		a.view = viewPick
		a.message = ""
	case '6':
		a.view = viewCatalog
	case '7':
		a.view = viewRates
	case '8':
		a.pullUntilTop()
	case 'g', 'G':
		a.nextGuaranteed()
	}
	return false
}

func (a *App) handlePick(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEscape {
		a.view = viewResults
		return
	}
	r := ev.Rune()
	if r < '1' || r > '9' {
		return
	}
	idx := int(r - '1')
	e := a.banner.Engine
	if err := e.SetGuaranteedItem(idx); err != nil {
		a.message = err.Error()
		return
	}
	g, _ := e.GuaranteedItem()
	a.message = "Guarantee set to " + g.Name
	a.view = viewResults
}

func (a *App) pull(n int) {
	res, err := a.banner.Engine.DrawMany(n)
	if err != nil {
		a.message = err.Error()
		return
	}
	a.last = res
	a.view = viewResults
	a.spent += a.banner.Token.TokensForDraws(n)
	a.message = ""
	for _, r := range res {
		if r.Tier == gacha.TopTier {
			a.message = "Top-tier pull!"
		}
	}
}

// pullUntilTop draws singles on the live engine until a top-tier result or
// untilTopLimit draws, whichever comes first.
func (a *App) pullUntilTop() {
	e := a.banner.Engine
	if err := e.Ready(); err != nil {
		a.message = err.Error()
		return
	}
	a.last = nil
	a.untilTopHit = false
	for len(a.last) < untilTopLimit {
		r, err := e.Draw()
		if err != nil {
			a.message = err.Error()
			break
		}
		a.last = append(a.last, r)
		if r.Tier == gacha.TopTier {
			a.untilTopHit = true
			break
		}
	}
	a.untilTopPulls = len(a.last)
	a.untilTopCost = a.untilTopPulls * a.banner.Token.TokensForDraws(1)
	a.spent += a.untilTopCost
	a.view = viewUntilTop
	a.message = ""
}

func (a *App) nextGuaranteed() {
	e := a.banner.Engine
	tops := e.ItemsByTier(gacha.TopTier)
	if len(tops) == 0 {
		a.message = gacha.ErrNoTopTierItem.Error()
		return
	}
	idx := (e.GuaranteedIndex() + 1) % len(tops)
	if err := e.SetGuaranteedItem(idx); err != nil {
		a.message = err.Error()
		return
	}
	a.message = fmt.Sprintf("Guarantee set to %s (#%d)", tops[idx].Name, idx+1)
}

// Render redraws the whole screen.
func (a *App) Render() {
	s := a.screen
	s.Clear()
	_, h := s.Size()
	e := a.banner.Engine
	p := e.Pity()

	title := a.banner.Title
	if title == "" {
		title = a.banner.Name
	}
	a.drawText(0, 0, title, tcell.StyleDefault.Bold(true))

	status := fmt.Sprintf("Pity %d/%d  soft in %d  top rate %.2f%%",
		e.DrawCount(), p.HardThreshold, max(e.PullsUntilSoftPity(), 0), e.CurrentTopTierRate()*100)
	if e.InSoftPity() {
		status += "  [SOFT PITY]"
	}
	a.drawText(0, 1, status, tcell.StyleDefault)

	g, _ := e.GuaranteedItem()
	a.drawText(0, 2, fmt.Sprintf("Guaranteed: %s  Spent: %d %s", g.Name, a.spent, a.banner.Token.Name), tcell.StyleDefault)

	y := 4
	line := func(text string, style tcell.Style) {
		a.drawText(0, y, text, style)
		y++
	}
	switch a.view {
	case viewStatus:
		a.renderStatus(line)
	case viewHistory:
		a.renderHistory(line)
	case viewPick:
		a.renderPick(line)
	case viewCatalog:
		a.renderCatalog(line)
	case viewRates:
		a.renderRates(line)
	case viewUntilTop:
		a.renderUntilTop(line)
	default:
		for _, r := range a.last {
			line(a.resultLine(r), tierStyle(r.Tier))
		}
	}

	if a.message != "" {
		a.drawText(0, h-2, a.message, tcell.StyleDefault.Foreground(tcell.ColorLightYellow))
	}
	help := helpLine
	if a.view == viewPick {
		help = pickHelp
	}
	a.drawText(0, h-1, help, tcell.StyleDefault.Foreground(tcell.ColorGray))
	s.Show()
}

type lineFunc func(text string, style tcell.Style)

func (a *App) renderStatus(line lineFunc) {
	e := a.banner.Engine
	line("Pity status", tcell.StyleDefault.Bold(true))
	line(fmt.Sprintf("Pulls until hard pity: %d", e.PullsUntilHardPity()), tcell.StyleDefault)
	if e.InSoftPity() {
		line("Soft pity is active, the SSR rate is boosted.", tierStyle(gacha.TopTier))
	} else {
		line(fmt.Sprintf("Pulls until soft pity: %d", e.PullsUntilSoftPity()), tcell.StyleDefault)
	}
	line(fmt.Sprintf("Current SSR rate: %.2f%%", e.CurrentTopTierRate()*100), tcell.StyleDefault)
	g, _ := e.GuaranteedItem()
	line("Guaranteed item: "+g.Name, tcell.StyleDefault)
}

func (a *App) renderHistory(line lineFunc) {
	e := a.banner.Engine
	hist := e.History()
	line(fmt.Sprintf("Total pulls: %d", len(hist)), tcell.StyleDefault.Bold(true))
	if len(hist) == 0 {
		line("No pulls yet.", tcell.StyleDefault)
		return
	}
	sum := e.HistorySummary()
	for _, t := range gacha.Tiers() {
		items := sum[t]
		if len(items) == 0 {
			continue
		}
		names := make([]string, 0, len(items))
		total := 0
		for n, c := range items {
			names = append(names, n)
			total += c
		}
		sort.Strings(names)
		line(fmt.Sprintf("%s: %d", t, total), tierStyle(t))
		for _, n := range names {
			line(fmt.Sprintf("  %s x%d", runewidth.FillRight(n, nameWidth), items[n]), tcell.StyleDefault)
		}
	}

	start := max(len(hist)-historyTail, 0)
	line(fmt.Sprintf("Last %d pulls:", len(hist)-start), tcell.StyleDefault.Bold(true))
	for i := start; i < len(hist); i++ {
		line(fmt.Sprintf("%4d  %s", i+1, a.resultLine(hist[i])), tierStyle(hist[i].Tier))
	}
}

func (a *App) renderPick(line lineFunc) {
	e := a.banner.Engine
	line("Choose the guaranteed item:", tcell.StyleDefault.Bold(true))
	cur := e.GuaranteedIndex()
	for i, it := range e.ItemsByTier(gacha.TopTier) {
		mark := " "
		if i == cur {
			mark = "*"
		}
		key := fmt.Sprintf("%d.", i+1)
		if i >= 9 {
			// only 1-9 are keyed; [g] still reaches the rest
			key = "  "
		}
		line(fmt.Sprintf("%s%s %s (rate %.3f%%)", mark, key, a.describe(it), a.itemRate(it)*100), tierStyle(gacha.TopTier))
	}
}

func (a *App) renderCatalog(line lineFunc) {
	e := a.banner.Engine
	for _, t := range gacha.Tiers() {
		items := e.ItemsByTier(t)
		line(fmt.Sprintf("[ %s (rate %.2f%%) ]", t, a.tierShare(t)*100), tierStyle(t).Bold(true))
		if len(items) == 0 {
			line("  (no items)", tcell.StyleDefault)
			continue
		}
		for _, it := range items {
			line("  "+runewidth.FillRight(it.Name, nameWidth)+
				runewidth.FillRight(it.Title, titleWidth)+
				runewidth.FillRight(it.Flavor, flavorWidth)+
				fmt.Sprintf("%.3f%%", a.itemRate(it)*100), tierStyle(t))
		}
	}
}

func (a *App) renderRates(line lineFunc) {
	e := a.banner.Engine
	p := e.Pity()
	line("Rates", tcell.StyleDefault.Bold(true))
	for _, c := range e.TierProbabilities() {
		line(fmt.Sprintf("%-7s %.2f%%", c.Tier, c.P*100), tierStyle(c.Tier))
		if c.Tier == gacha.TopTier && e.InSoftPity() {
			line("  soft pity active, SSR rate boosted", tierStyle(c.Tier))
		}
	}
	line("", tcell.StyleDefault)
	line(fmt.Sprintf("Hard pity: SSR guaranteed on pull %d", p.HardThreshold), tcell.StyleDefault)
	line(fmt.Sprintf("Soft pity: SSR rate x%g from pull %d", p.SoftMultiplier, p.SoftStart), tcell.StyleDefault)
	line(fmt.Sprintf("Pulls until hard pity: %d", e.PullsUntilHardPity()), tcell.StyleDefault)
}

func (a *App) renderUntilTop(line lineFunc) {
	if a.untilTopHit {
		line(fmt.Sprintf("SSR on pull %d!", a.untilTopPulls), tierStyle(gacha.TopTier))
		top := a.last[len(a.last)-1]
		line(a.resultLine(top), tierStyle(top.Tier))
	} else {
		line(fmt.Sprintf("Stopped after %d pulls without an SSR.", a.untilTopPulls), tcell.StyleDefault)
	}
	line(fmt.Sprintf("Cost: %d %s", a.untilTopCost, a.banner.Token.Name), tcell.StyleDefault)
}

// tierShare is the normalized base rate of t, ignoring soft pity.
func (a *App) tierShare(t gacha.Tier) float64 {
	e := a.banner.Engine
	var total float64
	for _, tt := range gacha.Tiers() {
		total += e.TierRate(tt)
	}
	if total == 0 {
		return 0
	}
	return e.TierRate(t) / total
}

// itemRate is the base chance of drawing it on a non-pity pull.
func (a *App) itemRate(it gacha.Item) float64 {
	w := a.banner.Engine.TierWeight(it.Tier)
	if w == 0 {
		return 0
	}
	return a.tierShare(it.Tier) * it.Weight / w
}

func (a *App) describe(it gacha.Item) string {
	s := it.Name
	if it.Title != "" {
		s += " - " + it.Title
	}
	if it.Flavor != "" {
		s += " (" + it.Flavor + ")"
	}
	return s
}

func (a *App) resultLine(r gacha.DrawResult) string {
	var b strings.Builder
	b.WriteString(runewidth.FillRight(strings.Repeat("★", r.Tier.Stars()), 10))
	b.WriteString(runewidth.FillRight(r.Item, nameWidth))
	if it, ok := a.banner.Engine.Lookup(r.Item); ok && !r.Placeholder {
		if it.Title != "" {
			b.WriteString(" - " + it.Title)
		}
		if it.Flavor != "" {
			b.WriteString(" (" + it.Flavor + ")")
		}
	}
	b.WriteString(fmt.Sprintf("  %s #%d", r.Tier, r.Sequence))
	if r.Guaranteed {
		b.WriteString("  GUARANTEED")
	}
	return b.String()
}

// drawText writes text at (x, y), advancing by each rune's cell width.
func (a *App) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		a.screen.SetContent(col, y, ch, nil, style)
		col += runewidth.RuneWidth(ch)
	}
}

func tierStyle(t gacha.Tier) tcell.Style {
	switch t {
	case gacha.TierSSR:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	case gacha.TierSR:
		return tcell.StyleDefault.Foreground(tcell.ColorFuchsia)
	case gacha.TierR:
		return tcell.StyleDefault.Foreground(tcell.ColorAqua)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorWhite)
}
