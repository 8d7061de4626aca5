// Package credentials persists kvfsctl sessions: named server contexts with
// their token pairs, plus a handful of user preferences. Everything lives in
// one JSON file under the user's XDG config directory.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"
)

const (
	configDirName  = "kvfsctl"
	configFileName = "config.json"

	// The file holds bearer tokens, so keep it owner-only.
	configFileMode = 0600
	configDirMode  = 0700
)

// expirySkew treats tokens about to expire as already expired, leaving
// enough headroom for the request they are meant to authenticate.
const expirySkew = 60 * time.Second

var (
	// ErrNoCurrentContext means no context has been selected yet.
	ErrNoCurrentContext = errors.New("no current context set")
	// ErrContextNotFound means the named context does not exist.
	ErrContextNotFound = errors.New("context not found")
)

// Context is one saved server session.
type Context struct {
	ServerURL    string    `json:"server_url"`
	Username     string    `json:"username,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the access token is expired or about to be.
// A zero expiry counts as expired.
func (c *Context) IsExpired() bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return time.Now().Add(expirySkew).After(c.ExpiresAt)
}

// HasRefreshToken reports whether the session can be refreshed.
func (c *Context) HasRefreshToken() bool {
	return c.RefreshToken != ""
}

// Preferences are optional defaults applied when the matching flags are not
// given: default_output feeds --output, color "never" implies --no-color.
type Preferences struct {
	DefaultOutput string `json:"default_output,omitempty"`
	Color         string `json:"color,omitempty"`
}

// Config is the on-disk layout of the credential file.
type Config struct {
	CurrentContext string              `json:"current_context"`
	Contexts       map[string]*Context `json:"contexts"`
	Preferences    Preferences         `json:"preferences,omitempty"`
}

// Store reads and writes the credential file.
type Store struct {
	path   string
	config *Config
}

// NewStore opens the credential file, starting from an empty in-memory
// config when none exists yet. Nothing is written until the first mutation.
func NewStore() (*Store, error) {
	path, err := configPath()
	if err != nil {
		return nil, err
	}

	s := &Store{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.config = &Config{Contexts: make(map[string]*Context)}
	case err != nil:
		return nil, err
	default:
		s.config = &Config{}
		if err := json.Unmarshal(data, s.config); err != nil {
			return nil, fmt.Errorf("corrupt credential file %s: %w", path, err)
		}
		if s.config.Contexts == nil {
			s.config.Contexts = make(map[string]*Context)
		}
	}
	return s, nil
}

// configPath places the file under $XDG_CONFIG_HOME, defaulting to
// ~/.config.
func configPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve home directory: %w", err)
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, configDirName, configFileName), nil
}

// save writes the config atomically: marshal into a temp file in the same
// directory, then rename it over the old file.
func (s *Store) save() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, configDirMode); err != nil {
		return fmt.Errorf("cannot create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s.config, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, configFileName+".*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := tmp.Chmod(configFileMode); err != nil {
		_ = tmp.Close()
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// GetCurrentContext returns the selected context.
func (s *Store) GetCurrentContext() (*Context, error) {
	if s.config.CurrentContext == "" {
		return nil, ErrNoCurrentContext
	}
	return s.GetContext(s.config.CurrentContext)
}

// GetCurrentContextName returns the selected context's name, or "".
func (s *Store) GetCurrentContextName() string {
	return s.config.CurrentContext
}

// GetContext looks up a context by name.
func (s *Store) GetContext(name string) (*Context, error) {
	ctx, ok := s.config.Contexts[name]
	if !ok {
		return nil, ErrContextNotFound
	}
	return ctx, nil
}

// ListContexts returns all context names in sorted order.
func (s *Store) ListContexts() []string {
	return slices.Sorted(maps.Keys(s.config.Contexts))
}

// SetContext creates or replaces a named context.
func (s *Store) SetContext(name string, ctx *Context) error {
	s.config.Contexts[name] = ctx
	return s.save()
}

// UseContext selects an existing context.
func (s *Store) UseContext(name string) error {
	if _, err := s.GetContext(name); err != nil {
		return err
	}
	s.config.CurrentContext = name
	return s.save()
}

// RenameContext renames a context, carrying the current selection along.
func (s *Store) RenameContext(oldName, newName string) error {
	ctx, err := s.GetContext(oldName)
	if err != nil {
		return err
	}

	delete(s.config.Contexts, oldName)
	s.config.Contexts[newName] = ctx
	if s.config.CurrentContext == oldName {
		s.config.CurrentContext = newName
	}
	return s.save()
}

// DeleteContext removes a context. Deleting the selected context leaves no
// context selected.
func (s *Store) DeleteContext(name string) error {
	if _, err := s.GetContext(name); err != nil {
		return err
	}

	delete(s.config.Contexts, name)
	if s.config.CurrentContext == name {
		s.config.CurrentContext = ""
	}
	return s.save()
}

// UpdateTokens stores a fresh token pair on the selected context.
func (s *Store) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	ctx, err := s.GetCurrentContext()
	if err != nil {
		return err
	}

	ctx.AccessToken = accessToken
	ctx.RefreshToken = refreshToken
	ctx.ExpiresAt = expiresAt
	return s.save()
}

// ClearCurrentContext drops the tokens of the selected context while keeping
// its server URL and username, so a later login can reuse them.
func (s *Store) ClearCurrentContext() error {
	ctx, err := s.GetCurrentContext()
	if err != nil {
		return err
	}

	ctx.AccessToken = ""
	ctx.RefreshToken = ""
	ctx.ExpiresAt = time.Time{}
	return s.save()
}

// GetPreferences returns the stored preferences.
func (s *Store) GetPreferences() Preferences {
	return s.config.Preferences
}

// SetPreferences replaces the stored preferences.
func (s *Store) SetPreferences(prefs Preferences) error {
	s.config.Preferences = prefs
	return s.save()
}

// ConfigPath returns the location of the credential file.
func (s *Store) ConfigPath() string {
	return s.path
}

// ContextNameFor derives a default context name from the server URL host,
// so sessions against different servers get distinct names. URLs without a
// usable host fall back to "default".
func ContextNameFor(serverURL string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Hostname() == "" {
		return "default"
	}
	return u.Hostname()
}
