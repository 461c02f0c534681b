package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) swaggerUI(w http.ResponseWriter, _ *http.Request) {
	const page = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>AI Journal API Swagger</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    const docPath = window.location.pathname.startsWith('/swagger')
      ? '/swagger/openapi.json'
      : '/docs/openapi.json';
    window.ui = SwaggerUIBundle({
      url: docPath,
      dom_id: '#swagger-ui'
    });
  </script>
</body>
</html>`
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}

func (h *Handler) swaggerSpec(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, openAPISpec(requestBaseURL(r)))
}

func requestBaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		scheme = strings.Split(forwarded, ",")[0]
		scheme = strings.TrimSpace(scheme)
	}

	host := strings.TrimSpace(r.Host)
	if host == "" {
		host = "localhost:8080"
	}
	return scheme + "://" + host
}

func openAPISpec(serverURL string) map[string]any {
	jsonBody := func(schema map[string]any) map[string]any {
		return map[string]any{
			"content": map[string]any{
				"application/json": map[string]any{"schema": schema},
			},
		}
	}
	objectRef := func(name string) map[string]any {
		return map[string]any{"$ref": "#/components/schemas/" + name}
	}

	return map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":       "AI Journal API",
			"version":     "1.0.0",
			"description": "Daily journaling backend with derived mood, streak, and topic insights plus AI-generated weekly summaries and recommendations.",
		},
		"servers": []map[string]any{
			{"url": serverURL},
		},
		"paths": map[string]any{
			"/healthz": map[string]any{
				"get": map[string]any{
					"summary":   "Health check",
					"responses": map[string]any{"200": map[string]any{"description": "ok"}},
				},
			},
			"/api/v1/entries/today": map[string]any{
				"post": map[string]any{
					"summary":     "Upsert today's entry",
					"requestBody": jsonBody(objectRef("SaveEntryRequest")),
					"responses": map[string]any{
						"200": jsonBody(objectRef("Entry")),
						"400": map[string]any{"description": "no fields provided"},
					},
				},
				"get": map[string]any{
					"summary": "Get today's entry",
					"responses": map[string]any{
						"200": jsonBody(objectRef("Entry")),
						"404": map[string]any{"description": "no entry for today"},
					},
				},
			},
			"/api/v1/entries/today/answers": map[string]any{
				"post": map[string]any{
					"summary":     "Append a question/answer pair to today's entry",
					"requestBody": jsonBody(objectRef("AnswerRequest")),
					"responses":   map[string]any{"200": jsonBody(objectRef("Entry"))},
				},
			},
			"/api/v1/entries": map[string]any{
				"get": map[string]any{
					"summary": "List entries, newest first",
					"parameters": []map[string]any{
						{"name": "start", "in": "query", "schema": map[string]any{"type": "string", "format": "date"}},
						{"name": "end", "in": "query", "schema": map[string]any{"type": "string", "format": "date"}},
					},
					"responses": map[string]any{"200": map[string]any{"description": "entry list"}},
				},
				"delete": map[string]any{
					"summary":   "Delete all entries",
					"responses": map[string]any{"200": map[string]any{"description": "deleted"}},
				},
			},
			"/api/v1/entries/{id}": map[string]any{
				"get": map[string]any{
					"summary": "Get an entry by id",
					"parameters": []map[string]any{
						{"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "string"}},
					},
					"responses": map[string]any{
						"200": jsonBody(objectRef("Entry")),
						"404": map[string]any{"description": "not found"},
					},
				},
				"delete": map[string]any{
					"summary": "Delete an entry",
					"parameters": []map[string]any{
						{"name": "id", "in": "path", "required": true, "schema": map[string]any{"type": "string"}},
					},
					"responses": map[string]any{"200": map[string]any{"description": "deleted"}},
				},
			},
			"/api/v1/stats": map[string]any{
				"get": map[string]any{
					"summary":   "Streaks, monthly activity, mood average and trend",
					"responses": map[string]any{"200": map[string]any{"description": "stats"}},
				},
			},
			"/api/v1/topics": map[string]any{
				"get": map[string]any{
					"summary":   "Keyword-derived topic clusters over all entries",
					"responses": map[string]any{"200": map[string]any{"description": "clusters"}},
				},
			},
			"/api/v1/insights/summary": map[string]any{
				"get": map[string]any{
					"summary":   "Weekly summary surface; triggers an async refresh when the data changed",
					"responses": map[string]any{"200": map[string]any{"description": "summary snapshot"}},
				},
			},
			"/api/v1/insights/recommendations": map[string]any{
				"get": map[string]any{
					"summary":   "Recommendations surface; triggers an async refresh when the data changed",
					"responses": map[string]any{"200": map[string]any{"description": "recommendations snapshot"}},
				},
			},
			"/api/v1/backup": map[string]any{
				"post": map[string]any{
					"summary": "Export all entries to the configured backup bucket",
					"responses": map[string]any{
						"200": map[string]any{"description": "uploaded"},
						"503": map[string]any{"description": "backup storage not configured"},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"SaveEntryRequest": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"mood_value":          map[string]any{"type": "number", "minimum": 0, "maximum": 4},
						"mood_emoji":          map[string]any{"type": "string"},
						"emotion_tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"why_text":            map[string]any{"type": "string"},
						"why_tags":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"journal_text":        map[string]any{"type": "string"},
						"reflection_prompt":   map[string]any{"type": "string"},
						"reflection_response": map[string]any{"type": "string"},
					},
				},
				"AnswerRequest": map[string]any{
					"type":     "object",
					"required": []string{"question", "answer"},
					"properties": map[string]any{
						"question": map[string]any{"type": "string"},
						"answer":   map[string]any{"type": "string"},
					},
				},
				"Entry": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":                  map[string]any{"type": "string"},
						"date":                map[string]any{"type": "string", "format": "date-time"},
						"mood_value":          map[string]any{"type": "number"},
						"mood_emoji":          map[string]any{"type": "string"},
						"emotion_tags":        map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"why_text":            map[string]any{"type": "string"},
						"why_tags":            map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"questions":           map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
						"ai_topics":           map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
						"journal_text":        map[string]any{"type": "string"},
						"reflection_prompt":   map[string]any{"type": "string"},
						"reflection_response": map[string]any{"type": "string"},
					},
				},
			},
		},
	}
}
