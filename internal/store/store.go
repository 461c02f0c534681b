package store

import (
	"errors"
	"time"

	"github.com/benwu408/ai-journal/internal/model"
)

// ErrNotFound is returned by DeleteEntry when no entry has the given id.
var ErrNotFound = errors.New("entry not found")

type Store interface {
	SaveEntry(entry model.Entry) error
	GetEntry(id string) (model.Entry, bool, error)
	// GetEntryByDate returns the canonical (most recent) entry of the given
	// calendar day.
	GetEntryByDate(day time.Time) (model.Entry, bool, error)
	// ListEntriesBetween returns entries with start <= date < end, newest first.
	ListEntriesBetween(start, end time.Time) ([]model.Entry, error)
	// ListEntries returns all entries, newest first.
	ListEntries() ([]model.Entry, error)
	DeleteEntry(id string) error
	DeleteAll() error
}
