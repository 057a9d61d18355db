package store

import (
	"os"
	"path/filepath"
)

// Settings are the user-tunable runtime options. Persisted as one JSON
// blob; concurrent saves are last-writer-wins.
type Settings struct {
	AutoDedupe     bool    `json:"auto_dedupe"`
	AutoGroup      bool    `json:"auto_group"`
	TimeGapMinutes float64 `json:"time_gap_minutes"`
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{TimeGapMinutes: 10}
}

func (s *Store) settingsPath() string {
	return filepath.Join(s.dir, "settings.json")
}

// LoadSettings reads the persisted settings, falling back to defaults when
// no settings file exists yet.
func (s *Store) LoadSettings() (Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var settings Settings
	if err := readJSON(s.settingsPath(), &settings); err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, err
	}
	return settings, nil
}

// SaveSettings replaces the persisted settings wholesale.
func (s *Store) SaveSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeJSON(s.settingsPath(), settings)
}
