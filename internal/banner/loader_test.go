package banner

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xtding233/gacha-sim/internal/gacha"
)

const defaultYAML = `
version: "1"
title: Standard Wish
rates:
  SSR: 0.01
  SR: 0.05
  R: 0.15
  Common: 0.79
pity:
  hard: 90
  soft_start: 75
  multiplier: 5.0
items:
  - {name: Aria, tier: SSR, weight: 1, title: Storm Herald, flavor: Anemo}
  - {name: Bram, tier: SSR, weight: 1}
  - {name: Cole, tier: SR, weight: 2}
  - {name: Dusk, tier: R, weight: 1}
  - {name: Iron Sword, tier: Common, weight: 1}
guaranteed: Bram
tokens:
  name: Primogem
  per_draw: 160
  per_ten_draw: 1600
`

const limitedYAML = `
version: "2"
title: Limited
rates:
  SSR: 0.02
pity:
  soft_start: 60
items:
  - {name: Nova, tier: SSR, weight: 1}
  - {name: Wisp, tier: SR, weight: 1}
tokens:
  per_ten_draw: 1500
`

func writeBanners(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	bdir := filepath.Join(dir, "banners")
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(bdir, name+".yaml"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestLoadMergedLayersBannerOverDefault(t *testing.T) {
	dir := writeBanners(t, map[string]string{"default": defaultYAML, "limited": limitedYAML})
	l := NewLoader(dir)

	cfg, err := l.LoadMerged("limited")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Version != "2" || cfg.Title != "Limited" {
		t.Fatalf("scalars not overridden: %+v", cfg)
	}
	if cfg.Rates["SSR"] != 0.02 || cfg.Rates["Common"] != 0.79 {
		t.Fatalf("rates not merged per tier: %v", cfg.Rates)
	}
	if *cfg.Pity.Hard != 90 || *cfg.Pity.SoftStart != 60 || *cfg.Pity.Multiplier != 5.0 {
		t.Fatalf("pity not merged: hard=%d soft=%d", *cfg.Pity.Hard, *cfg.Pity.SoftStart)
	}
	if len(cfg.Items) != 2 || cfg.Items[0].Name != "Nova" {
		t.Fatalf("items should be replaced: %+v", cfg.Items)
	}
	if cfg.Guaranteed != "" {
		t.Fatalf("default guarantee should not survive an item replacement: %q", cfg.Guaranteed)
	}
	if *cfg.Tokens.PerDraw != 160 || *cfg.Tokens.PerTenDraw != 1500 || cfg.Tokens.Name != "Primogem" {
		t.Fatalf("tokens not merged: %+v", cfg.Tokens)
	}
}

func TestLoadBuildsEngine(t *testing.T) {
	dir := writeBanners(t, map[string]string{"default": defaultYAML, "limited": limitedYAML})
	l := NewLoader(dir)

	b, err := l.Load("", gacha.NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	if b.Name != DefaultName || b.Title != "Standard Wish" {
		t.Fatalf("metadata = %+v", b)
	}
	if it, _ := b.Engine.GuaranteedItem(); it.Name != "Bram" {
		t.Fatalf("guaranteed = %q, want Bram", it.Name)
	}
	if got := b.Engine.Pity(); got != gacha.DefaultPity() {
		t.Fatalf("pity = %+v", got)
	}
	if it, ok := b.Engine.Lookup("Aria"); !ok || it.Title != "Storm Herald" || it.Flavor != "Anemo" {
		t.Fatalf("Aria metadata = %+v", it)
	}
	if b.Token.TokensForDraws(10) != 1600 {
		t.Fatalf("token = %+v", b.Token)
	}

	lim, err := l.Load("limited", gacha.NewSeededRNG(1))
	if err != nil {
		t.Fatal(err)
	}
	if lim.Engine.TierRate(gacha.TierSSR) != 0.02 {
		t.Fatalf("SSR rate = %v", lim.Engine.TierRate(gacha.TierSSR))
	}
	if it, _ := lim.Engine.GuaranteedItem(); it.Name != "Nova" {
		t.Fatalf("limited guaranteed = %q", it.Name)
	}
}

func TestLoadUnknownBanner(t *testing.T) {
	l := NewLoader(writeBanners(t, map[string]string{"default": defaultYAML}))
	for _, name := range []string{"nope", "../default", ".hidden"} {
		if _, err := l.LoadMerged(name); !errors.Is(err, ErrBannerNotFound) {
			t.Errorf("%q: want ErrBannerNotFound, got %v", name, err)
		}
	}
}

func TestLoadRejectsInvalidBanner(t *testing.T) {
	bad := `
pity: {hard: 10, soft_start: 10, multiplier: 0.5}
rates: {UR: 0.5}
items:
  - {name: x, tier: SR, weight: 0}
guaranteed: x
tokens: {per_draw: -1}
`
	l := NewLoader(writeBanners(t, map[string]string{"default": defaultYAML, "bad": bad}))
	_, err := l.Load("bad", nil)
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"pity:", "rates.UR", "items[0].weight", "at least one SSR", "guaranteed \"x\"", "tokens.per_draw"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestValidateRejectsAllZeroRates(t *testing.T) {
	cfg := RawConfig{
		Rates: map[string]float64{"SSR": 0, "SR": 0, "R": 0, "Common": 0},
		Items: []ItemCfg{{Name: "a", Tier: "SSR", Weight: 1}},
	}
	if err := ValidateRaw(cfg); err == nil || !strings.Contains(err.Error(), "all be zero") {
		t.Fatalf("got %v", err)
	}
	cfg.Rates["Common"] = 1
	if _, err := Build("z", cfg, nil); err != nil {
		t.Fatalf("single non-zero rate should build: %v", err)
	}
}

func TestBoostedRateOverflow(t *testing.T) {
	mult := 5.0
	cfg := RawConfig{
		Rates: map[string]float64{"SSR": 5e307},
		Pity:  &PityCfg{Multiplier: &mult},
		Items: []ItemCfg{{Name: "a", Tier: "SSR", Weight: 1}},
	}
	if err := ValidateRaw(cfg); err == nil || !strings.Contains(err.Error(), "overflow") {
		t.Fatalf("got %v", err)
	}

	// 5e307 only overflows at the default 5x, so a 2x banner must still build
	mult = 2
	b, err := Build("big", cfg, nil)
	if err != nil {
		t.Fatalf("2x banner should build: %v", err)
	}
	if got := b.Engine.TierRate(gacha.TierSSR); got != 5e307 {
		t.Fatalf("SSR rate = %v", got)
	}
}

func TestNamesAndInvalidate(t *testing.T) {
	dir := writeBanners(t, map[string]string{"default": defaultYAML, "limited": limitedYAML})
	l := NewLoader(dir)
	names, err := l.Names()
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(names, ",") != "default,limited" {
		t.Fatalf("names = %v", names)
	}
	if len(l.WatchPaths()) != 2 {
		t.Fatalf("watch paths = %v", l.WatchPaths())
	}

	if _, err := l.LoadMerged("limited"); err != nil {
		t.Fatal(err)
	}
	updated := strings.Replace(limitedYAML, `title: Limited`, `title: Limited Rerun`, 1)
	if err := os.WriteFile(l.Paths().BannerPath("limited"), []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _ := l.LoadMerged("limited")
	if cfg.Title != "Limited" {
		t.Fatalf("cached config expected before invalidate, got %q", cfg.Title)
	}
	l.Invalidate()
	cfg, _ = l.LoadMerged("limited")
	if cfg.Title != "Limited Rerun" {
		t.Fatalf("title after invalidate = %q", cfg.Title)
	}
}

func TestFileWatcherReportsChanges(t *testing.T) {
	dir := writeBanners(t, map[string]string{"default": defaultYAML})
	l := NewLoader(dir)

	var changed []string
	w := NewFileWatcher(l.WatchPaths, time.Hour, func(p string) { changed = append(changed, p) })
	w.scanAll(true)
	if len(changed) != 0 {
		t.Fatalf("priming must not report: %v", changed)
	}

	future := time.Now().Add(time.Minute)
	if err := os.Chtimes(l.Paths().DefaultPath(), future, future); err != nil {
		t.Fatal(err)
	}
	w.scanAll(false)
	if len(changed) != 1 || changed[0] != l.Paths().DefaultPath() {
		t.Fatalf("changed = %v", changed)
	}

	if err := os.WriteFile(l.Paths().BannerPath("new"), []byte(limitedYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	w.scanAll(false)
	if len(changed) != 2 || changed[1] != l.Paths().BannerPath("new") {
		t.Fatalf("new file not reported: %v", changed)
	}

	w.scanAll(false)
	if len(changed) != 2 {
		t.Fatalf("unchanged files reported again: %v", changed)
	}
	w.Stop()
	w.Stop()
}
