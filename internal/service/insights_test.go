package service_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benwu408/ai-journal/internal/knowledge"
	"github.com/benwu408/ai-journal/internal/llm"
	"github.com/benwu408/ai-journal/internal/model"
	"github.com/benwu408/ai-journal/internal/service"
)

func TestFingerprintDetectsContentChanges(t *testing.T) {
	t.Parallel()

	entries := []model.Entry{
		textEntry("a", 0, "a good day"),
		textEntry("b", 1, "a hard day"),
	}
	first := service.Fingerprint(entries)
	if first != service.Fingerprint(entries) {
		t.Fatalf("expected fingerprint to be deterministic")
	}

	changed := make([]model.Entry, len(entries))
	copy(changed, entries)
	changed[1].JournalText = "a hard day, actually"
	if first == service.Fingerprint(changed) {
		t.Fatalf("expected fingerprint to change with journal text")
	}

	tagged := make([]model.Entry, len(entries))
	copy(tagged, entries)
	tagged[0].EmotionTags = []string{"calm"}
	if first == service.Fingerprint(tagged) {
		t.Fatalf("expected fingerprint to change with emotion tags")
	}
}

func newChatServer(t *testing.T, calls *atomic.Int32, content string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		calls.Add(1)
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	return server
}

func newChatClient(t *testing.T, baseURL string) *llm.Client {
	t.Helper()
	client, err := llm.NewClient(llm.Config{APIKey: "test-key", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return client
}

func TestRefreshSummaryWithoutAIIsImmediateFallback(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)

	for i := 0; i < 3; i++ {
		entry := textEntry("e", i, "wrote a little")
		entry.ID = entry.ID + entry.DayKey()
		entry.MoodValue = 3
		if err := st.SaveEntry(entry); err != nil {
			t.Fatalf("SaveEntry() error = %v", err)
		}
	}

	if err := svc.RefreshSummary(); err != nil {
		t.Fatalf("RefreshSummary() error = %v", err)
	}
	snap := svc.SummaryInsight()
	if snap.Status != model.InsightReady {
		t.Fatalf("expected ready status without AI, got %v", snap.Status)
	}
	if snap.FromAI {
		t.Fatalf("expected fallback summary, got FromAI=true")
	}
	if !strings.Contains(snap.Text, "3 entries") {
		t.Fatalf("expected fallback to mention entry count, got %q", snap.Text)
	}
}

func TestRefreshSummaryGeneratesOncePerFingerprint(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)

	if err := st.SaveEntry(textEntry("a", 1, "an ordinary day")); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}

	var calls atomic.Int32
	server := newChatServer(t, &calls, "Steady, hopeful week.")
	svc.SetLLMClient(newChatClient(t, server.URL))

	if err := svc.RefreshSummary(); err != nil {
		t.Fatalf("RefreshSummary() error = %v", err)
	}
	svc.Flush()

	snap := svc.SummaryInsight()
	if snap.Status != model.InsightReady || !snap.FromAI {
		t.Fatalf("expected ready AI summary, got %+v", snap)
	}
	if snap.Text != "Steady, hopeful week." {
		t.Fatalf("unexpected summary text %q", snap.Text)
	}

	// Same data, same fingerprint: the AI must not be called again.
	if err := svc.RefreshSummary(); err != nil {
		t.Fatalf("RefreshSummary() error = %v", err)
	}
	svc.Flush()
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly 1 AI call, got %d", got)
	}
}

func TestRefreshSummaryRegeneratesWhenEntriesChange(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)

	if err := st.SaveEntry(textEntry("a", 1, "first entry")); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}

	var calls atomic.Int32
	server := newChatServer(t, &calls, "Summary v1.")
	svc.SetLLMClient(newChatClient(t, server.URL))

	if err := svc.RefreshSummary(); err != nil {
		t.Fatalf("RefreshSummary() error = %v", err)
	}
	svc.Flush()

	if err := st.SaveEntry(textEntry("b", 0, "second entry")); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}
	if err := svc.RefreshSummary(); err != nil {
		t.Fatalf("RefreshSummary() error = %v", err)
	}
	svc.Flush()

	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 AI calls after data change, got %d", got)
	}
	if snap := svc.SummaryInsight(); snap.Status != model.InsightReady {
		t.Fatalf("expected ready status, got %v", snap.Status)
	}
}

func TestRefreshSummaryAIFailureFallsBack(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)

	if err := st.SaveEntry(textEntry("a", 1, "an ordinary day")); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	t.Cleanup(server.Close)
	svc.SetLLMClient(newChatClient(t, server.URL))

	if err := svc.RefreshSummary(); err != nil {
		t.Fatalf("RefreshSummary() error = %v", err)
	}
	svc.Flush()

	snap := svc.SummaryInsight()
	if snap.Status != model.InsightError {
		t.Fatalf("expected error status, got %v", snap.Status)
	}
	if snap.FromAI {
		t.Fatalf("expected fallback text, got FromAI=true")
	}
	if snap.Text == "" {
		t.Fatalf("expected fallback text to be present")
	}
	if snap.Error != "unable to generate summary" {
		t.Fatalf("unexpected error message %q", snap.Error)
	}

	// Unchanged data after a failure does not trigger a retry.
	if err := svc.RefreshSummary(); err != nil {
		t.Fatalf("RefreshSummary() error = %v", err)
	}
	svc.Flush()
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected no retry on same fingerprint, got %d calls", got)
	}
}

func TestRefreshSummaryDiscardsSupersededResponse(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)

	if err := st.SaveEntry(textEntry("a", 1, "first entry")); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}

	arrived := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			// Hold the first generation open until the second one has landed.
			close(arrived)
			<-release
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":"too late"}`))
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "Fresh summary."}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(server.Close)
	svc.SetLLMClient(newChatClient(t, server.URL))

	if err := svc.RefreshSummary(); err != nil {
		t.Fatalf("RefreshSummary() error = %v", err)
	}
	<-arrived

	if err := st.SaveEntry(textEntry("b", 0, "second entry")); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}
	if err := svc.RefreshSummary(); err != nil {
		t.Fatalf("RefreshSummary() error = %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for svc.SummaryInsight().Status != model.InsightReady {
		if time.Now().After(deadline) {
			t.Fatalf("second refresh never became ready")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Release the superseded call; its failure must not touch the surface.
	close(release)
	svc.Flush()

	snap := svc.SummaryInsight()
	if snap.Status != model.InsightReady {
		t.Fatalf("expected stale failure to be dropped, got status %v (error %q)", snap.Status, snap.Error)
	}
	if snap.Text != "Fresh summary." || !snap.FromAI {
		t.Fatalf("expected the newer AI summary to stand, got %+v", snap)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 AI calls, got %d", got)
	}
}

func TestRefreshRecommendationsNormalizesAIPayload(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)

	if err := st.SaveEntry(textEntry("a", 1, "an ordinary day")); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}

	content := `[
		{"icon":"🚶","title":"Take a walk","description":"Get outside.","actionText":"Go now","category":"lifestyle","priority":"high"},
		{"title":"Breathe","category":"zen"}
	]`
	var calls atomic.Int32
	server := newChatServer(t, &calls, content)
	svc.SetLLMClient(newChatClient(t, server.URL))

	if err := svc.RefreshRecommendations(); err != nil {
		t.Fatalf("RefreshRecommendations() error = %v", err)
	}
	svc.Flush()

	snap := svc.RecommendationInsight()
	if snap.Status != model.InsightReady || !snap.FromAI {
		t.Fatalf("expected ready AI recommendations, got %+v", snap)
	}
	if len(snap.Items) != 3 {
		t.Fatalf("expected exactly 3 items, got %d", len(snap.Items))
	}
	if snap.Items[0].Category != model.CategoryLifestyle || snap.Items[0].Priority != model.PriorityHigh {
		t.Fatalf("unexpected first item %+v", snap.Items[0])
	}
	if snap.Items[1].Category != model.CategoryGrowth {
		t.Fatalf("expected unknown category to default to growth, got %v", snap.Items[1].Category)
	}
	if snap.Items[2].Title != knowledge.PadRecommendation().Title {
		t.Fatalf("expected pad record as third item, got %+v", snap.Items[2])
	}
}

func TestRefreshRecommendationsWithoutAIUsesFallbackSet(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)

	entry := textEntry("a", 1, "a rough day")
	entry.MoodValue = 1
	if err := st.SaveEntry(entry); err != nil {
		t.Fatalf("SaveEntry() error = %v", err)
	}

	if err := svc.RefreshRecommendations(); err != nil {
		t.Fatalf("RefreshRecommendations() error = %v", err)
	}
	snap := svc.RecommendationInsight()
	if snap.Status != model.InsightReady || snap.FromAI {
		t.Fatalf("expected ready fallback recommendations, got %+v", snap)
	}
	if len(snap.Items) != 3 {
		t.Fatalf("expected 3 fallback items, got %d", len(snap.Items))
	}
}

func TestNormalizeRecommendationsPadsTruncatesAndDefaults(t *testing.T) {
	t.Parallel()

	var five []llm.RecommendationPayload
	for i := 0; i < 5; i++ {
		five = append(five, llm.RecommendationPayload{Title: "t", Category: "social"})
	}
	if got := service.NormalizeRecommendations(five); len(got) != 3 {
		t.Fatalf("expected truncation to 3, got %d", len(got))
	}

	got := service.NormalizeRecommendations([]llm.RecommendationPayload{{}})
	if len(got) != 3 {
		t.Fatalf("expected padding to 3, got %d", len(got))
	}
	first := got[0]
	if first.Icon == "" || first.Title == "" || first.Description == "" || first.ActionText == "" {
		t.Fatalf("expected defaulted fields, got %+v", first)
	}
	if first.Category != model.CategoryGrowth || first.Priority != model.PriorityMedium {
		t.Fatalf("expected growth/medium defaults, got %+v", first)
	}

	if got := service.NormalizeRecommendations(nil); len(got) != 3 {
		t.Fatalf("expected 3 pad records for empty payload, got %d", len(got))
	}
}
