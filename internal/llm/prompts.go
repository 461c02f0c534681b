package llm

import (
	"fmt"
	"strings"

	"github.com/benwu408/ai-journal/internal/model"
)

const summarySystemPrompt = `You are a supportive journaling companion.
You summarize a week of journal entries in 3-5 warm, concrete sentences.
Rules:
- Speak directly to the writer ("you").
- Mention mood direction and one or two recurring themes.
- Do not invent events that are not in the entries.
- Plain text only, no markdown, no lists.`

const recommendationSystemPrompt = `You are a supportive journaling companion.
You suggest small, concrete actions based on a week of journal entries.
Output a JSON array of at most 3 objects, no markdown, no extra text.
Each object has the fields:
{"icon":"emoji","title":"short","description":"1-2 sentences","actionText":"imperative phrase","category":"selfCare|lifestyle|social|growth|mindfulness|productivity","priority":"high|medium|low"}`

const topicClassifySystemPrompt = `You classify journal text into fixed topic labels.
Output a JSON array of the matching labels only, no markdown, no extra text.
Pick at most 3 labels and only from the provided candidates.`

const emotionClassifySystemPrompt = `You classify journal text into fixed emotion labels.
Output a JSON array of the matching labels only, no markdown, no extra text.
Pick at most 3 labels and only from the provided candidates.`

func buildSummaryPrompt(entries []model.Entry) string {
	var b strings.Builder
	b.WriteString("Journal entries for the past week:\n\n")
	b.WriteString(buildEntriesDigest(entries))
	b.WriteString("\nWrite the weekly summary now.")
	return b.String()
}

func buildRecommendationPrompt(entries []model.Entry) string {
	var b strings.Builder
	b.WriteString("Journal entries for the past week:\n\n")
	b.WriteString(buildEntriesDigest(entries))
	b.WriteString("\nOutput the JSON array of recommendations now.")
	return b.String()
}

func buildClassifyPrompt(content string, candidateLabels []string) string {
	return fmt.Sprintf("Candidates: %s\n\nText:\n%s", strings.Join(candidateLabels, ", "), content)
}

// buildEntriesDigest renders entries as compact prompt lines, oldest first.
func buildEntriesDigest(entries []model.Entry) string {
	var b strings.Builder
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		fmt.Fprintf(&b, "- %s mood=%.1f %s", entry.DayKey(), entry.NormalizedMood(), entry.MoodEmoji)
		if len(entry.EmotionTags) > 0 {
			fmt.Fprintf(&b, " feelings=%s", strings.Join(entry.EmotionTags, ","))
		}
		b.WriteString("\n")
		if text := strings.TrimSpace(entry.WhyText); text != "" {
			fmt.Fprintf(&b, "  why: %s\n", text)
		}
		if text := strings.TrimSpace(entry.JournalText); text != "" {
			fmt.Fprintf(&b, "  journal: %s\n", text)
		}
		if text := strings.TrimSpace(entry.ReflectionResponse); text != "" {
			fmt.Fprintf(&b, "  reflection: %s\n", text)
		}
		for _, qa := range entry.Questions {
			fmt.Fprintf(&b, "  q: %s\n  a: %s\n", strings.TrimSpace(qa.Question), strings.TrimSpace(qa.Answer))
		}
	}
	return b.String()
}
