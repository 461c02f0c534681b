package service

import (
	"context"
	"errors"
	"log"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/benwu408/ai-journal/internal/knowledge"
	"github.com/benwu408/ai-journal/internal/llm"
	"github.com/benwu408/ai-journal/internal/model"
	"github.com/benwu408/ai-journal/internal/store"
)

var (
	ErrNothingToSave    = errors.New("no entry fields provided")
	ErrAnswerRequired   = errors.New("question and answer are required")
	ErrEntryNotFound    = errors.New("entry not found")
	ErrInvalidDateRange = errors.New("start must not be after end")
)

const (
	insightCacheSize  = 16
	classifyQueueSize = 64
)

type Service struct {
	store store.Store
	llm   *llm.Client
	now   func() time.Time

	mu      sync.Mutex
	summary summarySurface
	recs    recommendationSurface

	summaryCache *lru.Cache[string, string]
	recCache     *lru.Cache[string, []model.Recommendation]

	wg sync.WaitGroup

	classifyCh   chan string
	classifyDone chan struct{}
}

func New(st store.Store) *Service {
	summaryCache, _ := lru.New[string, string](insightCacheSize)
	recCache, _ := lru.New[string, []model.Recommendation](insightCacheSize)

	s := &Service{
		store:        st,
		now:          time.Now,
		summaryCache: summaryCache,
		recCache:     recCache,
		classifyCh:   make(chan string, classifyQueueSize),
		classifyDone: make(chan struct{}),
	}
	s.summary.status = model.InsightIdle
	s.recs.status = model.InsightIdle
	go s.classifyWorker()
	return s
}

func (s *Service) SetLLMClient(client *llm.Client) {
	s.llm = client
}

// SetNow overrides the clock. Tests use it to pin the current day.
func (s *Service) SetNow(now func() time.Time) {
	s.now = now
}

// Close drains the classification queue and waits for in-flight insight
// generation to settle.
func (s *Service) Close() {
	close(s.classifyCh)
	<-s.classifyDone
	s.wg.Wait()
}

type SaveEntryRequest struct {
	MoodValue          *float64 `json:"mood_value"`
	MoodEmoji          *string  `json:"mood_emoji"`
	EmotionTags        []string `json:"emotion_tags"`
	WhyText            *string  `json:"why_text"`
	WhyTags            []string `json:"why_tags"`
	JournalText        *string  `json:"journal_text"`
	ReflectionPrompt   *string  `json:"reflection_prompt"`
	ReflectionResponse *string  `json:"reflection_response"`
}

func (r SaveEntryRequest) empty() bool {
	return r.MoodValue == nil && r.MoodEmoji == nil && r.EmotionTags == nil &&
		r.WhyText == nil && r.WhyTags == nil && r.JournalText == nil &&
		r.ReflectionPrompt == nil && r.ReflectionResponse == nil
}

// SaveTodayEntry upserts the current day's entry: provided fields overwrite,
// omitted fields are kept. There is exactly one logical entry per day.
func (s *Service) SaveTodayEntry(req SaveEntryRequest) (model.Entry, error) {
	if req.empty() {
		return model.Entry{}, ErrNothingToSave
	}

	now := s.now()
	entry, ok, err := s.store.GetEntryByDate(now)
	if err != nil {
		return model.Entry{}, err
	}
	if !ok {
		entry = model.Entry{
			ID:        uuid.NewString(),
			Date:      now,
			CreatedAt: now,
		}
	}

	if req.MoodValue != nil {
		entry.MoodValue = normalizeMood(*req.MoodValue)
	}
	if req.MoodEmoji != nil {
		entry.MoodEmoji = strings.TrimSpace(*req.MoodEmoji)
	}
	if req.EmotionTags != nil {
		entry.EmotionTags = req.EmotionTags
	}
	if req.WhyText != nil {
		entry.WhyText = *req.WhyText
	}
	if req.WhyTags != nil {
		entry.WhyTags = req.WhyTags
	}
	if req.JournalText != nil {
		entry.JournalText = *req.JournalText
	}
	if req.ReflectionPrompt != nil {
		entry.ReflectionPrompt = *req.ReflectionPrompt
	}
	if req.ReflectionResponse != nil {
		entry.ReflectionResponse = *req.ReflectionResponse
	}
	entry.UpdatedAt = now

	if err := s.store.SaveEntry(entry); err != nil {
		return model.Entry{}, err
	}
	s.enqueueClassification(entry.ID)
	return entry, nil
}

type AnswerRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// AddQuestionAnswer appends one question/answer pair to today's entry,
// creating the entry if the day has none yet. Pairs are append-only and
// keep their append timestamps.
func (s *Service) AddQuestionAnswer(req AnswerRequest) (model.Entry, error) {
	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	if question == "" || answer == "" {
		return model.Entry{}, ErrAnswerRequired
	}

	now := s.now()
	entry, ok, err := s.store.GetEntryByDate(now)
	if err != nil {
		return model.Entry{}, err
	}
	if !ok {
		entry = model.Entry{
			ID:        uuid.NewString(),
			Date:      now,
			CreatedAt: now,
		}
	}

	entry.Questions = append(entry.Questions, model.QuestionAnswer{
		Question:  question,
		Answer:    answer,
		Timestamp: now,
	})
	entry.UpdatedAt = now

	if err := s.store.SaveEntry(entry); err != nil {
		return model.Entry{}, err
	}
	s.enqueueClassification(entry.ID)
	return entry, nil
}

func (s *Service) TodayEntry() (model.Entry, bool, error) {
	return s.store.GetEntryByDate(s.now())
}

func (s *Service) EntryByID(id string) (model.Entry, error) {
	entry, ok, err := s.store.GetEntry(id)
	if err != nil {
		return model.Entry{}, err
	}
	if !ok {
		return model.Entry{}, ErrEntryNotFound
	}
	return entry, nil
}

// Entries returns entries in [start, end), newest first. Zero times widen
// the range to everything.
func (s *Service) Entries(start, end time.Time) ([]model.Entry, error) {
	if start.IsZero() && end.IsZero() {
		return s.store.ListEntries()
	}
	if end.IsZero() {
		end = s.now().AddDate(0, 0, 1)
	}
	if start.IsZero() {
		start = time.Unix(0, 0)
	}
	if start.After(end) {
		return nil, ErrInvalidDateRange
	}
	return s.store.ListEntriesBetween(start, end)
}

func (s *Service) DeleteEntry(id string) error {
	if err := s.store.DeleteEntry(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	return nil
}

func (s *Service) DeleteAllEntries() error {
	return s.store.DeleteAll()
}

// Stats aggregates the deterministic, always-available surfaces.
func (s *Service) Stats() (model.JournalStats, error) {
	current, err := s.CurrentStreak()
	if err != nil {
		return model.JournalStats{}, err
	}
	longest, err := s.LongestStreak()
	if err != nil {
		return model.JournalStats{}, err
	}
	monthDays, err := s.JournalingDaysThisMonth()
	if err != nil {
		return model.JournalStats{}, err
	}
	week, err := s.weekEntries()
	if err != nil {
		return model.JournalStats{}, err
	}
	trend, err := s.MoodTrend()
	if err != nil {
		return model.JournalStats{}, err
	}
	all, err := s.store.ListEntries()
	if err != nil {
		return model.JournalStats{}, err
	}
	return model.JournalStats{
		CurrentStreak:   current,
		LongestStreak:   longest,
		DaysThisMonth:   monthDays,
		AverageMood7Day: AverageMood(week),
		Trend:           trend,
		TotalEntries:    len(all),
	}, nil
}

func (s *Service) enqueueClassification(entryID string) {
	if s.llm == nil {
		return
	}
	select {
	case s.classifyCh <- entryID:
	default:
		log.Printf("classification queue full, dropping entry %s", entryID)
	}
}

func (s *Service) classifyWorker() {
	defer close(s.classifyDone)
	for id := range s.classifyCh {
		s.classifyEntry(id)
	}
}

// classifyEntry backfills AI topic and emotion labels after a save. It is
// idempotent: rerunning it on the same content writes the same labels.
func (s *Service) classifyEntry(id string) {
	client := s.llm
	if client == nil {
		return
	}
	entry, ok, err := s.store.GetEntry(id)
	if err != nil || !ok {
		return
	}
	content := classifiableContent(entry)
	if content == "" {
		return
	}

	changed := false
	topics, err := client.ClassifyTopics(context.Background(), content, knowledge.TopicLabels())
	if err != nil {
		log.Printf("topic classification failed: entry=%s err=%v", id, err)
	} else if len(topics) > 0 {
		entry.AITopics = topics
		changed = true
	}

	if len(entry.EmotionTags) == 0 {
		emotions, err := client.ClassifyEmotions(context.Background(), content, knowledge.EmotionLabels)
		if err != nil {
			log.Printf("emotion classification failed: entry=%s err=%v", id, err)
		} else if len(emotions) > 0 {
			entry.EmotionTags = emotions
			changed = true
		}
	}

	if !changed {
		return
	}
	if err := s.store.SaveEntry(entry); err != nil {
		log.Printf("classification write-back failed: entry=%s err=%v", id, err)
	}
}

func classifiableContent(entry model.Entry) string {
	parts := make([]string, 0, 4)
	for _, text := range []string{entry.JournalText, entry.ReflectionResponse, entry.WhyText} {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	for _, qa := range entry.Questions {
		if trimmed := strings.TrimSpace(qa.Answer); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, "\n")
}

func normalizeMood(value float64) float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return model.NeutralMood
	}
	if value < 0 {
		return 0
	}
	if value > 4 {
		return 4
	}
	return value
}

// dayStart truncates to local midnight.
func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// weekEntries returns the rolling 7-day window ending today, the window
// both insight surfaces are computed over.
func (s *Service) weekEntries() ([]model.Entry, error) {
	now := s.now()
	start := dayStart(now).AddDate(0, 0, -7)
	end := dayStart(now).AddDate(0, 0, 1)
	return s.store.ListEntriesBetween(start, end)
}
