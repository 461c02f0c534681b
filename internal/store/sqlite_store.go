package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/benwu408/ai-journal/internal/model"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(filePath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filePath)
	if err != nil {
		return nil, err
	}
	st := &SQLiteStore{db: db}
	if err := st.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveEntry(entry model.Entry) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO entries
		(id, day_key, entry_date, mood_value, mood_emoji, emotion_tags, why_text, why_tags, questions, ai_topics, journal_text, reflection_prompt, reflection_response, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.DayKey(),
		toTS(entry.Date),
		entry.MoodValue,
		entry.MoodEmoji,
		toJSONList(entry.EmotionTags),
		entry.WhyText,
		toJSONList(entry.WhyTags),
		toJSONQuestions(entry.Questions),
		toJSONList(entry.AITopics),
		entry.JournalText,
		entry.ReflectionPrompt,
		entry.ReflectionResponse,
		toTS(entry.CreatedAt),
		toTS(entry.UpdatedAt),
	)
	return err
}

func (s *SQLiteStore) GetEntry(id string) (model.Entry, bool, error) {
	row := s.db.QueryRow(selectColumns+` FROM entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, false, nil
	}
	if err != nil {
		return model.Entry{}, false, err
	}
	return entry, true, nil
}

func (s *SQLiteStore) GetEntryByDate(day time.Time) (model.Entry, bool, error) {
	row := s.db.QueryRow(selectColumns+`
		FROM entries
		WHERE day_key = ?
		ORDER BY entry_date DESC
		LIMIT 1`,
		day.Format("2006-01-02"),
	)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, false, nil
	}
	if err != nil {
		return model.Entry{}, false, err
	}
	return entry, true, nil
}

func (s *SQLiteStore) ListEntriesBetween(start, end time.Time) ([]model.Entry, error) {
	rows, err := s.db.Query(selectColumns+`
		FROM entries
		WHERE entry_date >= ? AND entry_date < ?
		ORDER BY entry_date DESC`,
		toTS(start),
		toTS(end),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (s *SQLiteStore) ListEntries() ([]model.Entry, error) {
	rows, err := s.db.Query(selectColumns + `
		FROM entries
		ORDER BY entry_date DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

func (s *SQLiteStore) DeleteEntry(id string) error {
	result, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) DeleteAll() error {
	_, err := s.db.Exec(`DELETE FROM entries`)
	return err
}

const selectColumns = `
	SELECT id, entry_date, mood_value, mood_emoji, emotion_tags, why_text, why_tags, questions, ai_topics, journal_text, reflection_prompt, reflection_response, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (model.Entry, error) {
	var entry model.Entry
	var entryDate, emotionTags, whyTags, questions, aiTopics, createdAt, updatedAt string
	err := row.Scan(
		&entry.ID,
		&entryDate,
		&entry.MoodValue,
		&entry.MoodEmoji,
		&emotionTags,
		&entry.WhyText,
		&whyTags,
		&questions,
		&aiTopics,
		&entry.JournalText,
		&entry.ReflectionPrompt,
		&entry.ReflectionResponse,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return model.Entry{}, err
	}
	entry.Date = fromTS(entryDate)
	entry.EmotionTags = fromJSONList(emotionTags)
	entry.WhyTags = fromJSONList(whyTags)
	entry.Questions = fromJSONQuestions(questions)
	entry.AITopics = fromJSONList(aiTopics)
	entry.CreatedAt = fromTS(createdAt)
	entry.UpdatedAt = fromTS(updatedAt)
	return entry, nil
}

func collectEntries(rows *sql.Rows) ([]model.Entry, error) {
	var result []model.Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		PRAGMA journal_mode=WAL;
		CREATE TABLE IF NOT EXISTS entries (
			id TEXT PRIMARY KEY,
			day_key TEXT NOT NULL,
			entry_date TEXT NOT NULL,
			mood_value REAL NOT NULL DEFAULT 0,
			mood_emoji TEXT NOT NULL DEFAULT '',
			emotion_tags TEXT NOT NULL DEFAULT '[]',
			why_text TEXT NOT NULL DEFAULT '',
			why_tags TEXT NOT NULL DEFAULT '[]',
			questions TEXT NOT NULL DEFAULT '[]',
			ai_topics TEXT NOT NULL DEFAULT '[]',
			journal_text TEXT NOT NULL DEFAULT '',
			reflection_prompt TEXT NOT NULL DEFAULT '',
			reflection_response TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_entries_day ON entries(day_key, entry_date);
		CREATE INDEX IF NOT EXISTS idx_entries_date ON entries(entry_date);
	`)
	return err
}

// tsLayout keeps the fractional second at fixed width so that the string
// comparisons in the range queries order the same way the times do.
// RFC3339Nano trims trailing zeros, which would sort "T00:00:00.5Z" before
// the "T00:00:00Z" day boundary.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

func toTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}

func fromTS(v string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}
	}
	return t
}

func toJSONList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func fromJSONList(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}

func toJSONQuestions(values []model.QuestionAnswer) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func fromJSONQuestions(raw string) []model.QuestionAnswer {
	if raw == "" {
		return nil
	}
	var values []model.QuestionAnswer
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil
	}
	if len(values) == 0 {
		return nil
	}
	return values
}
