package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/benwu408/ai-journal/internal/model"
)

type fileState struct {
	Entries map[string]model.Entry `json:"entries"`
}

type JSONStore struct {
	filePath string
	mu       sync.RWMutex
	state    fileState
}

func NewJSONStore(filePath string) (*JSONStore, error) {
	s := &JSONStore{
		filePath: filePath,
		state: fileState{
			Entries: make(map[string]model.Entry),
		},
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *JSONStore) SaveEntry(entry model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Entries[entry.ID] = entry
	return s.persistLocked()
}

func (s *JSONStore) GetEntry(id string) (model.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.state.Entries[id]
	return entry, ok, nil
}

func (s *JSONStore) GetEntryByDate(day time.Time) (model.Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dayKey := day.Format("2006-01-02")
	var best model.Entry
	found := false
	for _, entry := range s.state.Entries {
		if entry.DayKey() != dayKey {
			continue
		}
		if !found || entry.Date.After(best.Date) {
			best = entry
			found = true
		}
	}
	return best, found, nil
}

func (s *JSONStore) ListEntriesBetween(start, end time.Time) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []model.Entry
	for _, entry := range s.state.Entries {
		if entry.Date.Before(start) || !entry.Date.Before(end) {
			continue
		}
		result = append(result, entry)
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *JSONStore) ListEntries() ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]model.Entry, 0, len(s.state.Entries))
	for _, entry := range s.state.Entries {
		result = append(result, entry)
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *JSONStore) DeleteEntry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.state.Entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.state.Entries, id)
	return s.persistLocked()
}

func (s *JSONStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Entries = make(map[string]model.Entry)
	return s.persistLocked()
}

func sortNewestFirst(entries []model.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
}

func (s *JSONStore) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.Entries == nil {
		state.Entries = make(map[string]model.Entry)
	}
	s.state = state
	return nil
}

func (s *JSONStore) persistLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.filePath), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return err
	}

	tmpPath := s.filePath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.filePath)
}
