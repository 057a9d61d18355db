// Package store persists saved groups, saved sessions, and user settings as
// JSON files under a single data directory, and keeps an append-only action
// log alongside them.
package store

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/dgnsrekt/tab_warden/internal/types"
)

var idRe = regexp.MustCompile(`^[0-9a-f]{16}$`)

// SavedGroup is a durable copy of one tab group.
type SavedGroup struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Color     types.Color      `json:"color,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	Tabs      []types.SavedTab `json:"tabs"`
}

// SavedWindow is one window's worth of tabs inside a saved session.
type SavedWindow struct {
	Tabs []types.SavedTab `json:"tabs"`
}

// SavedSession is a durable copy of every window's tabs.
type SavedSession struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"created_at"`
	Windows   []SavedWindow `json:"windows"`
}

// Store manages the JSON files on disk. Safe for concurrent use.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store and ensures the data directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// NewID returns a fresh random record id.
func NewID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%016x", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

func validateID(id string) error {
	if !idRe.MatchString(id) {
		return fmt.Errorf("invalid record id: %q", id)
	}
	return nil
}

func (s *Store) groupPath(id string) string {
	return filepath.Join(s.dir, "group-"+id+".json")
}

func (s *Store) sessionPath(id string) string {
	return filepath.Join(s.dir, "session-"+id+".json")
}

// SaveGroup writes a saved group. A zero ID gets one assigned; the stored
// record is returned.
func (s *Store) SaveGroup(g SavedGroup) (SavedGroup, error) {
	if g.ID == "" {
		g.ID = NewID()
	}
	if err := validateID(g.ID); err != nil {
		return SavedGroup{}, err
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSON(s.groupPath(g.ID), g); err != nil {
		return SavedGroup{}, err
	}
	return g, nil
}

// GetGroup reads one saved group by id.
func (s *Store) GetGroup(id string) (SavedGroup, error) {
	if err := validateID(id); err != nil {
		return SavedGroup{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var g SavedGroup
	if err := readJSON(s.groupPath(id), &g); err != nil {
		if os.IsNotExist(err) {
			return SavedGroup{}, fmt.Errorf("saved group not found: %s", id)
		}
		return SavedGroup{}, err
	}
	return g, nil
}

// ListGroups returns all saved groups, newest first.
func (s *Store) ListGroups() ([]SavedGroup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "group-*.json"))
	if err != nil {
		return nil, fmt.Errorf("store: glob: %w", err)
	}
	out := make([]SavedGroup, 0, len(matches))
	for _, path := range matches {
		var g SavedGroup
		if err := readJSON(path, &g); err != nil {
			continue
		}
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteGroup removes one saved group. Deleting an absent id is not an
// error.
func (s *Store) DeleteGroup(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(s.groupPath(id))
	return nil
}

// SaveSession writes a saved session. A zero ID gets one assigned.
func (s *Store) SaveSession(sess SavedSession) (SavedSession, error) {
	if sess.ID == "" {
		sess.ID = NewID()
	}
	if err := validateID(sess.ID); err != nil {
		return SavedSession{}, err
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now().UTC()
	}
	if sess.Name == "" {
		sess.Name = sess.CreatedAt.Format("Session 2006-01-02 15:04")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSON(s.sessionPath(sess.ID), sess); err != nil {
		return SavedSession{}, err
	}
	return sess, nil
}

// GetSession reads one saved session by id.
func (s *Store) GetSession(id string) (SavedSession, error) {
	if err := validateID(id); err != nil {
		return SavedSession{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sess SavedSession
	if err := readJSON(s.sessionPath(id), &sess); err != nil {
		if os.IsNotExist(err) {
			return SavedSession{}, fmt.Errorf("saved session not found: %s", id)
		}
		return SavedSession{}, err
	}
	return sess, nil
}

// ListSessions returns all saved sessions, newest first.
func (s *Store) ListSessions() ([]SavedSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "session-*.json"))
	if err != nil {
		return nil, fmt.Errorf("store: glob: %w", err)
	}
	out := make([]SavedSession, 0, len(matches))
	for _, path := range matches {
		var sess SavedSession
		if err := readJSON(path, &sess); err != nil {
			continue
		}
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// DeleteSession removes one saved session.
func (s *Store) DeleteSession(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(s.sessionPath(id))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("store: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: unmarshal %s: %w", path, err)
	}
	return nil
}
