package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/benwu408/ai-journal/internal/backup"
	"github.com/benwu408/ai-journal/internal/service"
)

type Handler struct {
	svc      *service.Service
	uploader *backup.Uploader
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) SetBackupUploader(uploader *backup.Uploader) {
	h.uploader = uploader
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) saveTodayEntry(w http.ResponseWriter, r *http.Request) {
	var req service.SaveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("saveTodayEntry decode error: %v", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.SaveTodayEntry(req)
	if err != nil {
		if errors.Is(err, service.ErrNothingToSave) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("saveTodayEntry internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) addAnswer(w http.ResponseWriter, r *http.Request) {
	var req service.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("addAnswer decode error: %v", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.svc.AddQuestionAnswer(req)
	if err != nil {
		if errors.Is(err, service.ErrAnswerRequired) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("addAnswer internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) todayEntry(w http.ResponseWriter, _ *http.Request) {
	entry, ok, err := h.svc.TodayEntry()
	if err != nil {
		log.Printf("todayEntry internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "no entry for today")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	start, ok := parseDateParam(w, r, "start")
	if !ok {
		return
	}
	end, ok := parseDateParam(w, r, "end")
	if !ok {
		return
	}
	if !end.IsZero() {
		// end date is inclusive on the API, exclusive on the store
		end = end.AddDate(0, 0, 1)
	}

	entries, err := h.svc.Entries(start, end)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDateRange) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("listEntries internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	entry, err := h.svc.EntryByID(id)
	if err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("getEntry internal error: id=%s err=%v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *Handler) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.DeleteEntry(id); err != nil {
		if errors.Is(err, service.ErrEntryNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		log.Printf("deleteEntry internal error: id=%s err=%v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

func (h *Handler) deleteAllEntries(w http.ResponseWriter, _ *http.Request) {
	if err := h.svc.DeleteAllEntries(); err != nil {
		log.Printf("deleteAllEntries internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": "all"})
}

func (h *Handler) stats(w http.ResponseWriter, _ *http.Request) {
	stats, err := h.svc.Stats()
	if err != nil {
		log.Printf("stats internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) topics(w http.ResponseWriter, _ *http.Request) {
	clusters, err := h.svc.GetTopicClusters()
	if err != nil {
		log.Printf("topics internal error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(clusters),
		"clusters": clusters,
	})
}

// insightSummary triggers an async refresh and returns the current surface
// snapshot. Clients poll until status leaves "loading".
func (h *Handler) insightSummary(w http.ResponseWriter, _ *http.Request) {
	if err := h.svc.RefreshSummary(); err != nil {
		log.Printf("insightSummary refresh error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.SummaryInsight())
}

func (h *Handler) insightRecommendations(w http.ResponseWriter, _ *http.Request) {
	if err := h.svc.RefreshRecommendations(); err != nil {
		log.Printf("insightRecommendations refresh error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.RecommendationInsight())
}

func (h *Handler) backupNow(w http.ResponseWriter, r *http.Request) {
	if !h.uploader.Configured() {
		writeError(w, http.StatusServiceUnavailable, backup.ErrNotConfigured.Error())
		return
	}
	entries, err := h.svc.Entries(time.Time{}, time.Time{})
	if err != nil {
		log.Printf("backup list error: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	snapshot, err := json.Marshal(map[string]any{
		"exported_at": time.Now().UTC(),
		"entries":     entries,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	location, err := h.uploader.UploadSnapshot(r.Context(), snapshot)
	if err != nil {
		log.Printf("backup upload error: %v", err)
		writeError(w, http.StatusBadGateway, "backup upload failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"location": location,
		"entries":  len(entries),
	})
}

func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (time.Time, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, true
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, name+" must be formatted as YYYY-MM-DD")
		return time.Time{}, false
	}
	return parsed, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
