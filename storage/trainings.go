package storage

import (
	"errors"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"sparta-training/models"
)

var ErrEntryNotFound = errors.New("training entry not found")

var legacyEntryNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://spartaone.local/trainings"))

type trainingDocument struct {
	Scope     string               `json:"scope"`
	Trainings []models.TrainingDay `json:"trainings"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// TrainingStore keeps the training schedule, one document per scope.
type TrainingStore struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

func NewTrainingStore(dir string) *TrainingStore {
	return &TrainingStore{dir: filepath.Clean(dir), now: time.Now}
}

// Load returns the schedule for scope, or nil if nothing is stored.
func (s *TrainingStore) Load(scope string) ([]models.TrainingDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(scope)
}

func (s *TrainingStore) load(scope string) ([]models.TrainingDay, error) {
	path, err := keyPath(s.dir, scope)
	if err != nil {
		return nil, err
	}
	var doc trainingDocument
	if _, err := readJSON(path, &doc); err != nil {
		return nil, err
	}
	fillLegacyEntryIDs(doc.Trainings)
	return doc.Trainings, nil
}

// Save replaces the schedule for scope.
func (s *TrainingStore) Save(scope string, days []models.TrainingDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(scope, days)
}

func (s *TrainingStore) save(scope string, days []models.TrainingDay) error {
	path, err := keyPath(s.dir, scope)
	if err != nil {
		return err
	}
	AssignEntryIDs(days)
	return writeJSON(path, trainingDocument{
		Scope:     scope,
		Trainings: days,
		UpdatedAt: s.now(),
	})
}

// UpdateEntry applies fn to the entry with the given ID and saves the schedule.
func (s *TrainingStore) UpdateEntry(scope, entryID string, fn func(*models.TrainingEntry)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	days, err := s.load(scope)
	if err != nil {
		return err
	}
	entry := FindEntry(days, entryID)
	if entry == nil {
		return ErrEntryNotFound
	}
	fn(entry)
	return s.save(scope, days)
}

// FindEntry returns a pointer into days for the entry with the given ID.
func FindEntry(days []models.TrainingDay, entryID string) *models.TrainingEntry {
	if entryID == "" {
		return nil
	}
	for i := range days {
		for j := range days[i].Entries {
			if days[i].Entries[j].ID == entryID {
				return &days[i].Entries[j]
			}
		}
	}
	return nil
}

// AssignEntryIDs gives every entry without an ID a new random one.
func AssignEntryIDs(days []models.TrainingDay) {
	for i := range days {
		for j := range days[i].Entries {
			if days[i].Entries[j].ID == "" {
				days[i].Entries[j].ID = uuid.NewString()
			}
		}
	}
}

// fillLegacyEntryIDs derives IDs for entries stored before entries carried
// one, so they stay addressable until the next save persists them.
func fillLegacyEntryIDs(days []models.TrainingDay) {
	for i := range days {
		for j := range days[i].Entries {
			if days[i].Entries[j].ID == "" {
				seed := days[i].Date + "/" + strconv.Itoa(j)
				days[i].Entries[j].ID = uuid.NewSHA1(legacyEntryNamespace, []byte(seed)).String()
			}
		}
	}
}
