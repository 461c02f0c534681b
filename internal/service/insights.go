package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/benwu408/ai-journal/internal/knowledge"
	"github.com/benwu408/ai-journal/internal/llm"
	"github.com/benwu408/ai-journal/internal/model"
)

const (
	fieldSep = "\x1f"
	entrySep = "\x1e"
)

// Fingerprint is a deterministic content hash over everything the AI
// surfaces read from an entry window. Equal fingerprints mean the window is
// unchanged and cached results stay valid.
func Fingerprint(entries []model.Entry) string {
	parts := make([]string, 0, len(entries))
	for _, entry := range entries {
		fields := []string{
			entry.Date.UTC().Format(time.RFC3339Nano),
			strconv.FormatFloat(entry.MoodValue, 'f', -1, 64),
			entry.MoodEmoji,
			strings.Join(entry.EmotionTags, ","),
			entry.WhyText,
			strings.Join(entry.WhyTags, ","),
			entry.JournalText,
			entry.ReflectionResponse,
		}
		for _, qa := range entry.Questions {
			fields = append(fields, qa.Question, qa.Answer)
		}
		parts = append(parts, strings.Join(fields, fieldSep))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, entrySep)))
	return hex.EncodeToString(sum[:])
}

type summarySurface struct {
	status      model.InsightStatus
	text        string
	fromAI      bool
	errMsg      string
	generatedAt time.Time
	fingerprint string
	generation  uint64
}

type recommendationSurface struct {
	status      model.InsightStatus
	items       []model.Recommendation
	fromAI      bool
	errMsg      string
	generatedAt time.Time
	fingerprint string
	generation  uint64
}

// SummaryInsight returns the current snapshot of the summary surface.
func (s *Service) SummaryInsight() model.SummaryInsight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.SummaryInsight{
		Status:      s.summary.status,
		Text:        s.summary.text,
		FromAI:      s.summary.fromAI,
		Error:       s.summary.errMsg,
		GeneratedAt: s.summary.generatedAt,
	}
}

// RecommendationInsight returns the current snapshot of the
// recommendations surface.
func (s *Service) RecommendationInsight() model.RecommendationInsight {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]model.Recommendation, len(s.recs.items))
	copy(items, s.recs.items)
	return model.RecommendationInsight{
		Status:      s.recs.status,
		Items:       items,
		FromAI:      s.recs.fromAI,
		Error:       s.recs.errMsg,
		GeneratedAt: s.recs.generatedAt,
	}
}

// RefreshSummary recomputes the 7-day fingerprint and regenerates the
// summary only when the underlying data changed. An unchanged fingerprint
// is an explicit cache hit: the previous result stays and the AI is not
// called again.
func (s *Service) RefreshSummary() error {
	entries, err := s.weekEntries()
	if err != nil {
		return err
	}
	fp := Fingerprint(entries)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.summary.status != model.InsightIdle && s.summary.fingerprint == fp {
		return nil
	}
	if cached, ok := s.summaryCache.Get(fp); ok {
		s.summary = summarySurface{
			status:      model.InsightReady,
			text:        cached,
			fromAI:      true,
			generatedAt: s.now(),
			fingerprint: fp,
			generation:  s.summary.generation + 1,
		}
		return nil
	}
	if s.llm == nil {
		s.summary = summarySurface{
			status:      model.InsightReady,
			text:        fallbackSummary(entries),
			generatedAt: s.now(),
			fingerprint: fp,
			generation:  s.summary.generation + 1,
		}
		return nil
	}

	s.summary.status = model.InsightLoading
	s.summary.fingerprint = fp
	s.summary.errMsg = ""
	s.summary.generation++
	gen := s.summary.generation

	client := s.llm
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		text, err := client.GenerateSummary(context.Background(), entries)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.summary.generation != gen {
			// A newer refresh superseded this call; drop the stale result.
			return
		}
		if err != nil {
			log.Printf("summary generation failed: %v", err)
			s.summary.status = model.InsightError
			s.summary.text = fallbackSummary(entries)
			s.summary.fromAI = false
			s.summary.errMsg = "unable to generate summary"
		} else {
			s.summaryCache.Add(fp, text)
			s.summary.status = model.InsightReady
			s.summary.text = text
			s.summary.fromAI = true
		}
		s.summary.generatedAt = s.now()
	}()
	return nil
}

// RefreshRecommendations mirrors RefreshSummary for the recommendations
// surface.
func (s *Service) RefreshRecommendations() error {
	entries, err := s.weekEntries()
	if err != nil {
		return err
	}
	fp := Fingerprint(entries)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recs.status != model.InsightIdle && s.recs.fingerprint == fp {
		return nil
	}
	if cached, ok := s.recCache.Get(fp); ok {
		s.recs = recommendationSurface{
			status:      model.InsightReady,
			items:       cached,
			fromAI:      true,
			generatedAt: s.now(),
			fingerprint: fp,
			generation:  s.recs.generation + 1,
		}
		return nil
	}
	if s.llm == nil {
		s.recs = recommendationSurface{
			status:      model.InsightReady,
			items:       knowledge.FallbackRecommendations(AverageMood(entries)),
			generatedAt: s.now(),
			fingerprint: fp,
			generation:  s.recs.generation + 1,
		}
		return nil
	}

	s.recs.status = model.InsightLoading
	s.recs.fingerprint = fp
	s.recs.errMsg = ""
	s.recs.generation++
	gen := s.recs.generation

	client := s.llm
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		payloads, err := client.GenerateRecommendations(context.Background(), entries)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.recs.generation != gen {
			return
		}
		if err != nil {
			log.Printf("recommendation generation failed: %v", err)
			s.recs.status = model.InsightError
			s.recs.items = knowledge.FallbackRecommendations(AverageMood(entries))
			s.recs.fromAI = false
			s.recs.errMsg = "unable to generate recommendations"
		} else {
			items := NormalizeRecommendations(payloads)
			s.recCache.Add(fp, items)
			s.recs.status = model.InsightReady
			s.recs.items = items
			s.recs.fromAI = true
		}
		s.recs.generatedAt = s.now()
	}()
	return nil
}

// Flush waits for in-flight insight generation. Used by shutdown and tests.
func (s *Service) Flush() {
	s.wg.Wait()
}

// NormalizeRecommendations turns raw AI payloads into exactly 3 records:
// missing fields are defaulted, unknown categories become growth, short
// lists are padded with the fixed fallback record, long lists truncated.
func NormalizeRecommendations(payloads []llm.RecommendationPayload) []model.Recommendation {
	result := make([]model.Recommendation, 0, 3)
	for _, payload := range payloads {
		if len(result) == 3 {
			break
		}
		rec := model.Recommendation{
			Icon:        strings.TrimSpace(payload.Icon),
			Title:       strings.TrimSpace(payload.Title),
			Description: strings.TrimSpace(payload.Description),
			ActionText:  strings.TrimSpace(payload.ActionText),
			Category:    model.ParseCategory(payload.Category),
			Priority:    model.ParsePriority(payload.Priority),
		}
		if rec.Icon == "" {
			rec.Icon = "💡"
		}
		if rec.Title == "" {
			rec.Title = "Try something small"
		}
		if rec.Description == "" {
			rec.Description = "A small, positive action for today."
		}
		if rec.ActionText == "" {
			rec.ActionText = "Give it a try"
		}
		result = append(result, rec)
	}
	for len(result) < 3 {
		result = append(result, knowledge.PadRecommendation())
	}
	return result
}

// fallbackSummary is the deterministic, locally computed substitute used
// whenever the AI cannot produce a summary.
func fallbackSummary(entries []model.Entry) string {
	switch len(entries) {
	case 0:
		return "Your journal is waiting. Write your first entry and the weekly summary will start spotting patterns for you."
	case 1:
		return fmt.Sprintf("You checked in once this week with a mood of %.1f. Keep going — patterns need a few more days.", entries[0].NormalizedMood())
	}
	avg := AverageMood(entries)
	return fmt.Sprintf("You wrote %d entries this week with an average mood of %.1f — overall a %s week.", len(entries), avg, moodBand(avg))
}

func moodBand(avg float64) string {
	switch {
	case avg >= 3.0:
		return "positive"
	case avg >= 2.0:
		return "balanced"
	default:
		return "challenging"
	}
}
