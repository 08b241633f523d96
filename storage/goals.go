package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"sparta-training/goals"
	"sparta-training/models"
)

// GoalStore keeps one goal list per athlete. Files may hold a bare array or
// an object with a "goals" array; entries may be strings or records.
type GoalStore struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

func NewGoalStore(dir string) *GoalStore {
	return &GoalStore{dir: filepath.Clean(dir), now: time.Now}
}

// LoadAll returns every athlete's goals keyed by athlete ID. Unreadable files
// are logged and skipped.
func (s *GoalStore) LoadAll() (map[string][]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys, err := listKeys(s.dir)
	if err != nil {
		return nil, err
	}
	all := make(map[string][]models.Goal, len(keys))
	for _, id := range keys {
		list, err := s.load(id)
		if err != nil {
			log.Printf("Warning: skipping goals for %s: %v", id, err)
			continue
		}
		all[id] = list
	}
	return all, nil
}

// Load returns the goals of one athlete.
func (s *GoalStore) Load(athleteID string) ([]models.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(athleteID)
}

func (s *GoalStore) load(athleteID string) ([]models.Goal, error) {
	path, err := keyPath(s.dir, athleteID)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read goals: %w", err)
	}
	raws, err := decodeRawGoals(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	now := s.now()
	var list []models.Goal
	for i, raw := range raws {
		g := goals.Normalize(raw, now)
		if g.Description == "" {
			continue
		}
		if raw.Record == nil || raw.Record.ID == "" {
			g.ID = goals.LegacyID(athleteID, i, g.Description)
		}
		list = append(list, g)
	}
	return list, nil
}

func decodeRawGoals(data []byte) ([]goals.Raw, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	var raws []goals.Raw
	if data[0] == '{' {
		var doc struct {
			Goals []goals.Raw `json:"goals"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc.Goals, nil
	}
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, err
	}
	return raws, nil
}

// Save overwrites an athlete's goals, dropping entries without a description.
func (s *GoalStore) Save(athleteID string, list []models.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path, err := keyPath(s.dir, athleteID)
	if err != nil {
		return err
	}
	out := make([]models.Goal, 0, len(list))
	for _, g := range list {
		if g.Description == "" {
			continue
		}
		out = append(out, g)
	}
	return writeJSON(path, out)
}
