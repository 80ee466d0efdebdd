package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"feedreader/internal/domain"
	"feedreader/internal/usecase"

	"github.com/gorilla/mux"
	"github.com/samber/lo"
)

type newsGetter interface {
	GetNews(ctx context.Context, limit int) ([]domain.Item, error)
}

// session описывает живую страницу ридера, которой управляет API.
type session interface {
	AllFeeds() []domain.Feed
	Activate()
	IsHidden() bool
	LoadFeed(ctx context.Context, id int, done func(error))
	EntryCount() int
	Content() (string, error)
	HTML(pretty bool) (string, error)
}

type Handler struct {
	log          *slog.Logger
	newsGetter   newsGetter
	session      session
	defaultLimit int
}

func NewHandler(log *slog.Logger, getter newsGetter, s session, defaultLimit int) *Handler {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	return &Handler{
		log:          log,
		newsGetter:   getter,
		session:      s,
		defaultLimit: defaultLimit,
	}
}

type feedResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type loadResponse struct {
	ID      int    `json:"id"`
	Entries int    `json:"entries"`
	Content string `json:"content"`
}

// index отдает текущий документ; ?pretty=1 форматирует разметку.
func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r, "transport.http/index")
	pretty := r.URL.Query().Get("pretty") == "1"
	body, err := h.session.HTML(pretty)
	if err != nil {
		log.Error("Failed to render page", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func (h *Handler) listFeeds(w http.ResponseWriter, r *http.Request) {
	feeds := lo.Map(h.session.AllFeeds(), func(f domain.Feed, _ int) feedResponse {
		return feedResponse{ID: f.ID, Name: f.Name, URL: f.URL}
	})
	respondWithJSON(w, http.StatusOK, feeds)
}

// loadFeed загружает ленту в страницу и ждет завершения.
func (h *Handler) loadFeed(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r, "transport.http/loadFeed")
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid feed id")
		return
	}
	done := make(chan error, 1)
	h.session.LoadFeed(r.Context(), id, func(err error) { done <- err })
	select {
	case err = <-done:
	case <-r.Context().Done():
		log.Warn("Client went away before load completed", slog.Int("id", id))
		return
	}
	if err != nil {
		if errors.Is(err, usecase.ErrFeedNotFound) {
			respondWithError(w, http.StatusNotFound, "Feed not found")
			return
		}
		log.Error("Feed load failed", slog.Int("id", id), slog.Any("error", err))
		respondWithError(w, http.StatusBadGateway, "Feed load failed")
		return
	}
	content, err := h.session.Content()
	if err != nil {
		log.Error("Failed to serialize feed", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithJSON(w, http.StatusOK, loadResponse{
		ID:      id,
		Entries: h.session.EntryCount(),
		Content: content,
	})
}

func (h *Handler) toggleMenu(w http.ResponseWriter, r *http.Request) {
	h.session.Activate()
	respondWithJSON(w, http.StatusOK, map[string]bool{"hidden": h.session.IsHidden()})
}

// getNews - хендлер для эндпоинта GET /api/news
func (h *Handler) getNews(w http.ResponseWriter, r *http.Request) {
	log := h.requestLog(r, "transport.http/getNews")
	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		var err error
		limit, err = strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			log.Warn("invalid limit parameter", slog.String("limit", limitStr))
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' parameter")
			return
		}
	}
	news, err := h.newsGetter.GetNews(r.Context(), limit)
	if err != nil {
		log.Error("Failed to get news", slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	respondWithJSON(w, http.StatusOK, news)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) requestLog(r *http.Request, op string) *slog.Logger {
	return h.log.With(
		slog.String("component", "http"),
		slog.String("op", op),
		slog.String("request_id", requestID(r.Context())),
	)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
