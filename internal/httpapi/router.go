package httpapi

import (
	"log"
	"net/http"
	"time"
)

func NewRouter(handler *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handler.healthz)
	mux.HandleFunc("GET /docs", handler.swaggerUI)
	mux.HandleFunc("GET /docs/", handler.swaggerUI)
	mux.HandleFunc("GET /docs/openapi.json", handler.swaggerSpec)
	mux.HandleFunc("GET /swagger", handler.swaggerUI)
	mux.HandleFunc("GET /swagger/", handler.swaggerUI)
	mux.HandleFunc("GET /swagger/openapi.json", handler.swaggerSpec)

	mux.HandleFunc("POST /api/v1/entries/today", handler.saveTodayEntry)
	mux.HandleFunc("POST /api/v1/entries/today/answers", handler.addAnswer)
	mux.HandleFunc("GET /api/v1/entries/today", handler.todayEntry)
	mux.HandleFunc("GET /api/v1/entries", handler.listEntries)
	mux.HandleFunc("GET /api/v1/entries/{id}", handler.getEntry)
	mux.HandleFunc("DELETE /api/v1/entries/{id}", handler.deleteEntry)
	mux.HandleFunc("DELETE /api/v1/entries", handler.deleteAllEntries)

	mux.HandleFunc("GET /api/v1/stats", handler.stats)
	mux.HandleFunc("GET /api/v1/topics", handler.topics)
	mux.HandleFunc("GET /api/v1/insights/summary", handler.insightSummary)
	mux.HandleFunc("GET /api/v1/insights/recommendations", handler.insightRecommendations)
	mux.HandleFunc("POST /api/v1/backup", handler.backupNow)

	return withRequestLogging(withCORS(withJSONContentType(mux)))
}

func withJSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost && r.Header.Get("Content-Type") == "" {
			r.Header.Set("Content-Type", "application/json")
		}
		next.ServeHTTP(w, r)
	})
}

func withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s -> %d (%s) from %s", r.Method, r.URL.RequestURI(), rec.status, time.Since(start).Truncate(time.Millisecond), r.RemoteAddr)
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "600")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.status = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
