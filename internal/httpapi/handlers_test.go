package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/benwu408/ai-journal/internal/service"
	"github.com/benwu408/ai-journal/internal/store"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	st, err := store.NewJSONStore(filepath.Join(t.TempDir(), "journal.json"))
	if err != nil {
		t.Fatalf("NewJSONStore() error = %v", err)
	}
	return NewHandler(service.New(st))
}

func TestSaveTodayEntryReturnsEntry(t *testing.T) {
	h := newTestHandler(t)

	payload, _ := json.Marshal(map[string]any{
		"mood_value":   3,
		"journal_text": "a solid day",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries/today", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	h.saveTodayEntry(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d, body=%s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response error = %v", err)
	}
	id, _ := resp["id"].(string)
	if strings.TrimSpace(id) == "" {
		t.Fatalf("expected entry id in response, got %v", resp)
	}
}

func TestSaveTodayEntryEmptyBodyReturns400(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/entries/today", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	h.saveTodayEntry(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d, body=%s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestTodayEntryMissingReturns404(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries/today", nil)
	rec := httptest.NewRecorder()
	h.todayEntry(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestListEntriesRejectsBadDate(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries?start=March-1st", nil)
	rec := httptest.NewRecorder()
	h.listEntries(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d, body=%s", http.StatusBadRequest, rec.Code, rec.Body.String())
	}
}

func TestBackupWithoutUploaderReturns503(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup", nil)
	rec := httptest.NewRecorder()
	h.backupNow(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rec.Code)
	}
}

func TestInsightSummaryWithoutAIReturnsReadyFallback(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/insights/summary", nil)
	rec := httptest.NewRecorder()
	h.insightSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d, body=%s", http.StatusOK, rec.Code, rec.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response error = %v", err)
	}
	if status, _ := resp["status"].(string); status != "ready" {
		t.Fatalf("expected ready status without AI, got %v", resp)
	}
	if fromAI, _ := resp["from_ai"].(bool); fromAI {
		t.Fatalf("expected fallback summary, got from_ai=true")
	}
}
