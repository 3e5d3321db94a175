// Package prefs persists jobdeck user preferences: the UI theme and the last
// used list filters. Preferences are stored in ~/.config/jobdeck/prefs.toml.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/jobdeck/jobdeck/internal/config"
	"github.com/jobdeck/jobdeck/internal/filter"
	"github.com/jobdeck/jobdeck/internal/jobboard"
)

// Prefs holds user preferences for jobdeck.
type Prefs struct {
	Theme        string                      `toml:"theme"`
	Jobs         jobboard.JobFilters         `toml:"jobs"`
	Users        jobboard.UserFilters        `toml:"users"`
	Applications jobboard.ApplicationFilters `toml:"applications"`
}

const (
	defaultPrefsPath = "~/.config/jobdeck/prefs.toml"
	defaultTheme     = "Dracula"
)

// Default returns preferences with every categorical filter set to "all".
func Default() Prefs {
	return Prefs{
		Theme:        defaultTheme,
		Jobs:         jobboard.JobFilters{JobType: filter.All, Location: filter.All, Status: filter.All},
		Users:        jobboard.UserFilters{Role: filter.All, Status: filter.All},
		Applications: jobboard.ApplicationFilters{Status: filter.All, Location: filter.All},
	}
}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from path. Missing, unreadable or invalid files
// degrade to Default; preferences never block startup.
func Load(path string) Prefs {
	resolved, err := resolvePath(path)
	if err != nil {
		return Default()
	}

	raw, err := os.ReadFile(resolved)
	if err != nil {
		return Default()
	}

	p := Default()
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Default()
	}
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return config.ExpandPath(defaultPrefsPath)
	}
	return config.ExpandPath(path)
}
