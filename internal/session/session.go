// Package session stores the logged-in user's token and profile between runs.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/jobdeck/jobdeck/internal/jobboard"
)

// ErrNoSession is returned by Load when nobody is logged in.
var ErrNoSession = errors.New("no session")

// Session is the persisted login state.
type Session struct {
	Token string `toml:"token"`
	User  User   `toml:"user"`
}

// User is the subset of the profile jobdeck needs offline.
type User struct {
	ID           string `toml:"id"`
	Name         string `toml:"name"`
	Email        string `toml:"email"`
	MobileNumber string `toml:"mobile_number"`
	Role         string `toml:"role"`
}

// FromAuth builds a session from a login or register response.
func FromAuth(a jobboard.Auth) Session {
	return Session{
		Token: a.Token,
		User: User{
			ID:           a.User.ID,
			Name:         a.User.Name,
			Email:        a.User.Email,
			MobileNumber: a.User.MobileNumber,
			Role:         string(a.User.Role),
		},
	}
}

// Role returns the user's role.
func (s Session) Role() jobboard.Role {
	return jobboard.Role(s.User.Role)
}

// Load reads the session file. A missing file or empty token returns
// ErrNoSession.
func Load(path string) (Session, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Session{}, ErrNoSession
		}
		return Session{}, fmt.Errorf("read session: %w", err)
	}
	var s Session
	if err := toml.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("parse session: %w", err)
	}
	if strings.TrimSpace(s.Token) == "" {
		return Session{}, ErrNoSession
	}
	return s, nil
}

// Save writes s with owner-only permissions.
func Save(path string, s Session) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	raw, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

// Clear removes the session file. Clearing a missing session is not an
// error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
