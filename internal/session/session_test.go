package session

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/xtding233/gacha-sim/internal/banner"
)

const testBanner = `
title: Test
pity: {hard: 10, soft_start: 5, multiplier: 2}
items:
  - {name: Aria, tier: SSR, weight: 1}
  - {name: Cole, tier: SR, weight: 1}
  - {name: Dusk, tier: R, weight: 1}
  - {name: Stick, tier: Common, weight: 1}
tokens: {name: Gem, per_draw: 160, per_ten_draw: 1600}
`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "banners"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "banners", "default.yaml"), []byte(testBanner), 0o644); err != nil {
		t.Fatal(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(banner.NewLoader(dir), SeededRNGs(1), logger)
}

func TestCreateDrawAndStatus(t *testing.T) {
	m := newTestManager(t)
	st, err := m.Create("p1", "")
	if err != nil {
		t.Fatal(err)
	}
	if st.Banner != banner.DefaultName || st.PullsUntilHard != 10 || st.Guaranteed != "Aria" {
		t.Fatalf("status = %+v", st)
	}

	var cost int
	err = m.With("p1", func(s *Session) error {
		res, c, err := s.Draw(10)
		if err != nil {
			return err
		}
		if len(res) != 10 {
			t.Fatalf("got %d results", len(res))
		}
		cost = c
		st = s.Status()
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if cost != 1600 || st.Spent != 1600 || st.Currency != "Gem" || st.Draws != 10 {
		t.Fatalf("cost=%d status=%+v", cost, st)
	}
	if st.DrawCount >= 10 {
		t.Fatalf("count %d broke the hard pity bound", st.DrawCount)
	}
}

func TestDrawCountBounds(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Create("p1", ""); err != nil {
		t.Fatal(err)
	}
	for _, n := range []int{0, -1, MaxBatch + 1} {
		err := m.With("p1", func(s *Session) error {
			_, _, err := s.Draw(n)
			return err
		})
		if !errors.Is(err, ErrInvalidCount) {
			t.Errorf("n=%d: want ErrInvalidCount, got %v", n, err)
		}
	}
}

func TestUnknownSessionAndBanner(t *testing.T) {
	m := newTestManager(t)
	if err := m.With("ghost", func(*Session) error { return nil }); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("want ErrSessionNotFound, got %v", err)
	}
	if _, err := m.Create("p1", "nope"); !errors.Is(err, banner.ErrBannerNotFound) {
		t.Fatalf("want ErrBannerNotFound, got %v", err)
	}
	if _, err := m.Create("", ""); err == nil {
		t.Fatal("empty id should fail")
	}
}

func TestCreateReplacesAndDelete(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Create("p1", ""); err != nil {
		t.Fatal(err)
	}
	_ = m.With("p1", func(s *Session) error { _, _, err := s.Draw(3); return err })
	st, err := m.Create("p1", "")
	if err != nil {
		t.Fatal(err)
	}
	if st.Draws != 0 || st.Spent != 0 {
		t.Fatalf("recreated session should be fresh: %+v", st)
	}
	if _, err := m.Create("p2", ""); err != nil {
		t.Fatal(err)
	}
	if ids := m.IDs(); len(ids) != 2 || ids[0] != "p1" || ids[1] != "p2" {
		t.Fatalf("ids = %v", ids)
	}
	m.Delete("p1")
	m.Delete("missing")
	if ids := m.IDs(); len(ids) != 1 || ids[0] != "p2" {
		t.Fatalf("ids after delete = %v", ids)
	}
}

func TestConcurrentDrawsAreSerialized(t *testing.T) {
	m := newTestManager(t)
	if _, err := m.Create("p1", ""); err != nil {
		t.Fatal(err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = m.With("p1", func(s *Session) error { _, _, err := s.Draw(1); return err })
			}
		}()
	}
	wg.Wait()
	_ = m.With("p1", func(s *Session) error {
		if got := len(s.Banner.Engine.History()); got != 200 {
			t.Fatalf("history = %d, want 200", got)
		}
		return nil
	})
}
