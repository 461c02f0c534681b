package model

import (
	"math"
	"strings"
	"time"
)

// NeutralMood is substituted whenever a mood value is missing or non-finite.
const NeutralMood = 2.0

type QuestionAnswer struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Timestamp time.Time `json:"timestamp"`
}

// Entry is one calendar day's aggregated journaling record. The store may
// hold more than one row per day; readers treat the most recent row of a
// day as canonical.
type Entry struct {
	ID                 string           `json:"id"`
	Date               time.Time        `json:"date"`
	MoodValue          float64          `json:"mood_value"`
	MoodEmoji          string           `json:"mood_emoji"`
	EmotionTags        []string         `json:"emotion_tags"`
	WhyText            string           `json:"why_text"`
	WhyTags            []string         `json:"why_tags"`
	Questions          []QuestionAnswer `json:"questions"`
	AITopics           []string         `json:"ai_topics"`
	JournalText        string           `json:"journal_text"`
	ReflectionPrompt   string           `json:"reflection_prompt"`
	ReflectionResponse string           `json:"reflection_response"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// DayKey returns the calendar-day grouping key for the entry.
func (e Entry) DayKey() string {
	return e.Date.Format("2006-01-02")
}

// HasValidMood reports whether the entry carries a recorded, finite,
// positive mood value.
func (e Entry) HasValidMood() bool {
	return e.MoodValue > 0 && !math.IsNaN(e.MoodValue) && !math.IsInf(e.MoodValue, 0)
}

// NormalizedMood returns the mood value with non-finite inputs replaced by
// the neutral default.
func (e Entry) NormalizedMood() float64 {
	if math.IsNaN(e.MoodValue) || math.IsInf(e.MoodValue, 0) {
		return NeutralMood
	}
	return e.MoodValue
}

// IsCompleted reports whether the day counts toward streaks: any journal
// text, a reflection response, at least one question/answer, or a recorded
// mood together with at least one emotion tag.
func (e Entry) IsCompleted() bool {
	if strings.TrimSpace(e.JournalText) != "" {
		return true
	}
	if strings.TrimSpace(e.ReflectionResponse) != "" {
		return true
	}
	if len(e.Questions) > 0 {
		return true
	}
	return e.MoodValue > 0 && len(e.EmotionTags) > 0
}

type MoodTrend string

const (
	TrendPositive    MoodTrend = "positive"
	TrendNeutral     MoodTrend = "neutral"
	TrendChallenging MoodTrend = "challenging"
	TrendMixed       MoodTrend = "mixed"
)

// TopicCluster is a derived grouping of entries under a fixed thematic
// label. Recomputed on every request, never persisted.
type TopicCluster struct {
	Title      string  `json:"title"`
	EntryCount int     `json:"entry_count"`
	Entries    []Entry `json:"entries"`
	Tagline    string  `json:"tagline"`
}

type RecommendationCategory string

const (
	CategorySelfCare     RecommendationCategory = "selfCare"
	CategoryLifestyle    RecommendationCategory = "lifestyle"
	CategorySocial       RecommendationCategory = "social"
	CategoryGrowth       RecommendationCategory = "growth"
	CategoryMindfulness  RecommendationCategory = "mindfulness"
	CategoryProductivity RecommendationCategory = "productivity"
)

// ParseCategory matches a raw category string case-insensitively against
// the fixed enumeration, defaulting to growth.
func ParseCategory(raw string) RecommendationCategory {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "selfcare", "self-care", "self_care":
		return CategorySelfCare
	case "lifestyle":
		return CategoryLifestyle
	case "social":
		return CategorySocial
	case "mindfulness":
		return CategoryMindfulness
	case "productivity":
		return CategoryProductivity
	default:
		return CategoryGrowth
	}
}

type RecommendationPriority string

const (
	PriorityHigh   RecommendationPriority = "high"
	PriorityMedium RecommendationPriority = "medium"
	PriorityLow    RecommendationPriority = "low"
)

// ParsePriority normalizes a raw priority string, defaulting to medium.
func ParsePriority(raw string) RecommendationPriority {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

type Recommendation struct {
	Icon        string                 `json:"icon"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	ActionText  string                 `json:"action_text"`
	Category    RecommendationCategory `json:"category"`
	Priority    RecommendationPriority `json:"priority"`
}

type InsightStatus string

const (
	InsightIdle    InsightStatus = "idle"
	InsightLoading InsightStatus = "loading"
	InsightReady   InsightStatus = "ready"
	InsightError   InsightStatus = "error"
)

// SummaryInsight is a snapshot of the weekly-summary surface. Text is the
// AI result when Status is ready and the deterministic fallback when the
// last AI call failed.
type SummaryInsight struct {
	Status      InsightStatus `json:"status"`
	Text        string        `json:"text"`
	FromAI      bool          `json:"from_ai"`
	Error       string        `json:"error,omitempty"`
	GeneratedAt time.Time     `json:"generated_at,omitempty"`
}

// RecommendationInsight is a snapshot of the recommendations surface.
// Items holds exactly 3 records once the surface has left idle.
type RecommendationInsight struct {
	Status      InsightStatus    `json:"status"`
	Items       []Recommendation `json:"items"`
	FromAI      bool             `json:"from_ai"`
	Error       string           `json:"error,omitempty"`
	GeneratedAt time.Time        `json:"generated_at,omitempty"`
}

// JournalStats is the aggregate stats surface.
type JournalStats struct {
	CurrentStreak   int       `json:"current_streak"`
	LongestStreak   int       `json:"longest_streak"`
	DaysThisMonth   int       `json:"days_this_month"`
	AverageMood7Day float64   `json:"average_mood_7day"`
	Trend           MoodTrend `json:"trend"`
	TotalEntries    int       `json:"total_entries"`
}
