// Package session keeps one engine per named session and serializes every
// access to them behind a single mutex.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/xtding233/gacha-sim/internal/banner"
	"github.com/xtding233/gacha-sim/internal/gacha"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidCount    = errors.New("draw count must be between 1 and 100")
)

// MaxBatch caps one DrawMany request.
const MaxBatch = 100

// Session is a single player's engine. Only touch it inside Manager.With.
type Session struct {
	ID      string
	Banner  banner.Built
	Created time.Time
	Spent   int // tokens spent so far
}

// Status is a read-only snapshot for transports.
type Status struct {
	ID             string           `json:"id"`
	Banner         string           `json:"banner"`
	Title          string           `json:"title,omitempty"`
	DrawCount      int              `json:"draw_count"`
	PullsUntilHard int              `json:"pulls_until_hard_pity"`
	PullsUntilSoft int              `json:"pulls_until_soft_pity"`
	InSoftPity     bool             `json:"in_soft_pity"`
	TopRate        float64          `json:"current_top_rate"`
	Pity           gacha.PityConfig `json:"pity"`
	Guaranteed     string           `json:"guaranteed"`
	Draws          int              `json:"draws"`
	Spent          int              `json:"spent"`
	Currency       string           `json:"currency"`
}

// Draw runs n draws and charges the banner's token price.
func (s *Session) Draw(n int) ([]gacha.DrawResult, int, error) {
	if n < 1 || n > MaxBatch {
		return nil, 0, ErrInvalidCount
	}
	res, err := s.Banner.Engine.DrawMany(n)
	if err != nil {
		return nil, 0, err
	}
	cost := s.Banner.Token.TokensForDraws(n)
	s.Spent += cost
	return res, cost, nil
}

func (s *Session) Status() Status {
	e := s.Banner.Engine
	g, _ := e.GuaranteedItem()
	return Status{
		ID:             s.ID,
		Banner:         s.Banner.Name,
		Title:          s.Banner.Title,
		DrawCount:      e.DrawCount(),
		PullsUntilHard: e.PullsUntilHardPity(),
		PullsUntilSoft: e.PullsUntilSoftPity(),
		InSoftPity:     e.InSoftPity(),
		TopRate:        e.CurrentTopTierRate(),
		Pity:           e.Pity(),
		Guaranteed:     g.Name,
		Draws:          len(e.History()),
		Spent:          s.Spent,
		Currency:       s.Banner.Token.Name,
	}
}

// Manager owns all sessions.
type Manager struct {
	loader *banner.Loader
	newRNG func() gacha.RandomSource
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager builds a manager. newRNG is called once per session; nil means
// crypto-backed randomness.
func NewManager(loader *banner.Loader, newRNG func() gacha.RandomSource, logger *slog.Logger) *Manager {
	if newRNG == nil {
		newRNG = gacha.DefaultRNG
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		loader:   loader,
		newRNG:   newRNG,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// SeededRNGs returns an RNG factory that hands out seed, seed+1, ...
func SeededRNGs(seed uint64) func() gacha.RandomSource {
	var mu sync.Mutex
	next := seed
	return func() gacha.RandomSource {
		mu.Lock()
		defer mu.Unlock()
		r := gacha.NewSeededRNG(next)
		next++
		return r
	}
}

// Create starts (or restarts) session id on the named banner.
func (m *Manager) Create(id, bannerName string) (Status, error) {
	if id == "" {
		return Status{}, fmt.Errorf("%w: empty id", ErrSessionNotFound)
	}
	b, err := m.loader.Load(bannerName, m.newRNG())
	if err != nil {
		return Status{}, err
	}
	s := &Session{ID: id, Banner: b, Created: time.Now()}

	m.mu.Lock()
	_, replaced := m.sessions[id]
	m.sessions[id] = s
	st := s.Status()
	m.mu.Unlock()

	m.logger.Info("session created", "session", id, "banner", b.Name, "version", b.Version, "replaced", replaced)
	return st, nil
}

// With runs fn with exclusive access to session id.
func (m *Manager) With(id string, fn func(*Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return fn(s)
}

// Delete drops a session; unknown ids are ignored.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// IDs lists active sessions, sorted.
func (m *Manager) IDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Template loads a banner engine that belongs to no session, e.g. for
// catalog listings and simulations.
func (m *Manager) Template(bannerName string) (banner.Built, error) {
	return m.loader.Load(bannerName, m.newRNG())
}

// Reload drops cached banner files; running sessions keep their engines.
func (m *Manager) Reload(path string) {
	m.loader.Invalidate()
	m.logger.Info("banner config changed", "path", path)
}
