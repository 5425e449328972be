// Package state persists the signed-in user, session cookies and the last
// opened chat route to a JSON file.
package state

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mindscape/internal/api"
)

// Store handles application state persistence
type Store struct {
	filePath string
	mu       sync.RWMutex
	state    *State
	now      func() time.Time
}

// NewStore creates a store backed by filePath. Nothing is read until Load.
func NewStore(filePath string) *Store {
	return &Store{
		filePath: filePath,
		state:    &State{},
		now:      time.Now,
	}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.filePath
}

// Load reads state from disk. A missing file starts an empty state; a corrupt
// one is moved aside to <path>.backup and an empty state starts.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := os.ReadFile(s.filePath)
	if os.IsNotExist(err) {
		s.state = &State{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var loaded State
	if err := json.Unmarshal(data, &loaded); err != nil {
		backupPath := s.filePath + ".backup"
		if rerr := os.Rename(s.filePath, backupPath); rerr != nil {
			return fmt.Errorf("failed to back up corrupt state file: %w", rerr)
		}
		s.state = &State{}
		return nil
	}
	s.state = &loaded
	return nil
}

// Save persists the state to disk
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveUnlocked()
}

// saveUnlocked writes a temp file and renames it over the state file
// (must be called with lock held)
func (s *Store) saveUnlocked() error {
	s.state.UpdatedAt = s.now()

	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.filePath), 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tempPath := s.filePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tempPath, s.filePath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := *s.state
	if s.state.User != nil {
		u := *s.state.User
		cp.User = &u
	}
	cp.Cookies = append([]Cookie(nil), s.state.Cookies...)
	return cp
}

// User returns the signed-in user, or nil
func (s *Store) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// SignIn records the user and the cookies that authenticate them against
// baseURL, then saves.
func (s *Store) SignIn(baseURL string, user *api.User, cookies []*http.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.BaseURL = strings.TrimRight(baseURL, "/")
	if user != nil {
		u := *user
		s.state.User = &u
	}
	s.state.Cookies = fromHTTP(cookies)
	return s.saveUnlocked()
}

// SetUser replaces the stored user and saves
func (s *Store) SetUser(user *api.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user == nil {
		s.state.User = nil
	} else {
		u := *user
		s.state.User = &u
	}
	return s.saveUnlocked()
}

// Cookies returns the saved cookies if they were issued by baseURL
func (s *Store) Cookies(baseURL string) []*http.Cookie {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.BaseURL != strings.TrimRight(baseURL, "/") {
		return nil
	}
	out := make([]*http.Cookie, 0, len(s.state.Cookies))
	for _, c := range s.state.Cookies {
		out = append(out, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	return out
}

// SignOut forgets the user, cookies and last route, then saves
func (s *Store) SignOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = &State{}
	return s.saveUnlocked()
}

// LastSessionID returns the session id of the last chat route
func (s *Store) LastSessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.LastSessionID
}

// SetLastSessionID records the chat route and saves
func (s *Store) SetLastSessionID(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.LastSessionID == id {
		return nil
	}
	s.state.LastSessionID = id
	return s.saveUnlocked()
}

// Route returns the last chat route, /dashboard/chat[/<sessionId>]
func (s *Store) Route() string {
	return RouteFor(s.LastSessionID())
}

// RouteFor builds the chat route for a session id
func RouteFor(sessionID string) string {
	if sessionID == "" {
		return ChatRoute
	}
	return ChatRoute + "/" + sessionID
}

// ParseRoute extracts the session id from a chat route. ok is false when
// route is not a chat route.
func ParseRoute(route string) (sessionID string, ok bool) {
	route = strings.TrimRight(route, "/")
	if route == ChatRoute {
		return "", true
	}
	rest, found := strings.CutPrefix(route, ChatRoute+"/")
	if !found || rest == "" || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

func fromHTTP(cookies []*http.Cookie) []Cookie {
	out := make([]Cookie, 0, len(cookies))
	for _, c := range cookies {
		if c == nil || c.Name == "" {
			continue
		}
		out = append(out, Cookie{Name: c.Name, Value: c.Value})
	}
	return out
}
