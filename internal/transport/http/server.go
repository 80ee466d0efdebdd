package http

import (
	"log/slog"
	"net/http"

	"feedreader/internal/metrics"

	"github.com/gorilla/mux"
)

// NewServer регистрирует маршруты API и оборачивает их в middleware.
func NewServer(log *slog.Logger, h *Handler) http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", h.index).Methods(http.MethodGet)
	r.HandleFunc("/api/feeds", h.listFeeds).Methods(http.MethodGet)
	r.HandleFunc("/api/feeds/{id:[0-9]+}/load", h.loadFeed).Methods(http.MethodPost)
	r.HandleFunc("/api/menu/toggle", h.toggleMenu).Methods(http.MethodPost)
	r.HandleFunc("/api/news", h.getNews).Methods(http.MethodGet)
	r.HandleFunc("/api/health", h.healthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondWithError(w, http.StatusNotFound, "Not Found")
	})

	r.Use(requestIDMiddleware, loggingMiddleware(log))
	return corsMiddleware(r)
}
