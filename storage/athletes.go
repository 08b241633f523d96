package storage

import (
	"log"
	"path/filepath"
	"sort"
	"sync"

	"sparta-training/models"
)

// AthleteStore keeps the profile of every athlete who logged in.
type AthleteStore struct {
	dir string
	mu  sync.RWMutex
}

func NewAthleteStore(dir string) *AthleteStore {
	return &AthleteStore{dir: filepath.Clean(dir)}
}

// LoadAll returns all stored athletes sorted by name.
func (s *AthleteStore) LoadAll() ([]models.Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys, err := listKeys(s.dir)
	if err != nil {
		return nil, err
	}
	var athletes []models.Athlete
	for _, key := range keys {
		path, err := keyPath(s.dir, key)
		if err != nil {
			continue
		}
		var a models.Athlete
		found, err := readJSON(path, &a)
		if err != nil {
			log.Printf("Warning: skipping athlete %s: %v", key, err)
			continue
		}
		if !found || a.ID == "" {
			continue
		}
		athletes = append(athletes, a)
	}
	sort.SliceStable(athletes, func(i, j int) bool {
		return athletes[i].FullName() < athletes[j].FullName()
	})
	return athletes, nil
}

// Get returns one athlete; ok is false if unknown.
func (s *AthleteStore) Get(id string) (models.Athlete, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path, err := keyPath(s.dir, id)
	if err != nil {
		return models.Athlete{}, false, err
	}
	var a models.Athlete
	found, err := readJSON(path, &a)
	return a, found && a.ID != "", err
}

// Upsert writes the athlete's record when it differs from what is stored.
// changed reports whether a write happened.
func (s *AthleteStore) Upsert(a models.Athlete) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := keyPath(s.dir, a.ID)
	if err != nil {
		return false, err
	}
	var existing models.Athlete
	found, err := readJSON(path, &existing)
	if err == nil && found && existing == a {
		return false, nil
	}
	if err := writeJSON(path, a); err != nil {
		return false, err
	}
	return true, nil
}
