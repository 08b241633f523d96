package storage

import (
	"path/filepath"
	"sync"

	"sparta-training/models"
)

// SettingsStore keeps one settings document per athlete.
type SettingsStore struct {
	dir string
	mu  sync.RWMutex
}

func NewSettingsStore(dir string) *SettingsStore {
	return &SettingsStore{dir: filepath.Clean(dir)}
}

// Load returns the athlete's settings, or empty settings if none are stored.
func (s *SettingsStore) Load(athleteID string) (models.AthleteSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var settings models.AthleteSettings
	path, err := keyPath(s.dir, athleteID)
	if err != nil {
		return settings, err
	}
	if _, err := readJSON(path, &settings); err != nil {
		return models.AthleteSettings{}, err
	}
	return settings, nil
}

// Save overwrites the athlete's settings.
func (s *SettingsStore) Save(athleteID string, settings models.AthleteSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := keyPath(s.dir, athleteID)
	if err != nil {
		return err
	}
	return writeJSON(path, settings)
}
