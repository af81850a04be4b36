package banner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultName is the banner every other banner is layered on.
const DefaultName = "default"

var ErrBannerNotFound = errors.New("banner not found")

// Paths helper for banner files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/app/config
}

func (p Paths) Dir() string {
	return filepath.Join(p.BaseDir, "banners")
}
func (p Paths) DefaultPath() string {
	return p.BannerPath(DefaultName)
}
func (p Paths) BannerPath(name string) string {
	return filepath.Join(p.Dir(), name+".yaml")
}

// Loader reads YAML configs and merges default → banner.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]RawConfig // key: banner name
}

// NewLoader creates a config loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]RawConfig),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// LoadMerged loads and merges default → banner. An empty name or
// DefaultName returns the default file alone. The result is not validated.
func (l *Loader) LoadMerged(name string) (RawConfig, error) {
	if name == "" {
		name = DefaultName
	}
	if strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return RawConfig{}, fmt.Errorf("%w: %q", ErrBannerNotFound, name)
	}

	l.mu.RLock()
	if cfg, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return cfg, nil
	}
	l.mu.RUnlock()

	defCfg, err := readYAML(l.paths.DefaultPath())
	if err != nil {
		return RawConfig{}, fmt.Errorf("read default: %w", err)
	}
	merged := defCfg
	if name != DefaultName {
		if _, err := os.Stat(l.paths.BannerPath(name)); errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, fmt.Errorf("%w: %q", ErrBannerNotFound, name)
		}
		bCfg, err := readYAML(l.paths.BannerPath(name))
		if err != nil {
			return RawConfig{}, fmt.Errorf("read banner %s: %w", name, err)
		}
		merged = mergeRaw(defCfg, bCfg)
	}

	l.mu.Lock()
	l.cache[name] = merged
	l.mu.Unlock()

	return merged, nil
}

// Names lists the banners found on disk, sorted.
func (l *Loader) Names() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(l.paths.Dir(), "*.yaml"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(f), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// WatchPaths returns every banner file, for the FileWatcher.
func (l *Loader) WatchPaths() []string {
	names, _ := l.Names()
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, l.paths.BannerPath(n))
	}
	return out
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]RawConfig)
}

// readYAML loads a YAML file into RawConfig. Missing files return zero cfg, no error.
func readYAML(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return RawConfig{}, nil
		}
		return RawConfig{}, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return RawConfig{}, err
	}
	return cfg, nil
}

// mergeRaw performs a deep merge: 'b' overrides 'a' where non-zero/non-nil.
// Rates merge per tier; the item list in 'b' replaces 'a' if provided.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Title != "" {
		out.Title = b.Title
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}
	if b.Guaranteed != "" {
		out.Guaranteed = b.Guaranteed
	}

	// rates
	if len(b.Rates) > 0 {
		rates := make(map[string]float64, len(a.Rates)+len(b.Rates))
		for k, v := range a.Rates {
			rates[k] = v
		}
		for k, v := range b.Rates {
			rates[k] = v
		}
		out.Rates = rates
	}

	// pity
	switch {
	case out.Pity == nil && b.Pity != nil:
		c := *b.Pity
		out.Pity = &c
	case out.Pity != nil && b.Pity != nil:
		c := *out.Pity
		if b.Pity.Hard != nil {
			c.Hard = b.Pity.Hard
		}
		if b.Pity.SoftStart != nil {
			c.SoftStart = b.Pity.SoftStart
		}
		if b.Pity.Multiplier != nil {
			c.Multiplier = b.Pity.Multiplier
		}
		out.Pity = &c
	}

	// items
	if len(b.Items) > 0 {
		out.Items = append([]ItemCfg(nil), b.Items...)
		// a guarantee from the default file may not exist in the new list
		if b.Guaranteed == "" {
			out.Guaranteed = ""
		}
	}

	// tokens
	switch {
	case out.Tokens == nil && b.Tokens != nil:
		c := *b.Tokens
		out.Tokens = &c
	case out.Tokens != nil && b.Tokens != nil:
		c := *out.Tokens
		if b.Tokens.Name != "" {
			c.Name = b.Tokens.Name
		}
		if b.Tokens.PerDraw != nil {
			c.PerDraw = b.Tokens.PerDraw
		}
		if b.Tokens.PerTenDraw != nil {
			c.PerTenDraw = b.Tokens.PerTenDraw
		}
		out.Tokens = &c
	}

	return out
}
