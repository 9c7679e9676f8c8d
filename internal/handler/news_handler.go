package handler

import (
	"net/http"

	"bitmore/internal/service"

	"github.com/gorilla/mux"
)

type NewsHandler struct {
	newsService *service.NewsService
}

func NewNewsHandler(newsService *service.NewsService) *NewsHandler {
	return &NewsHandler{newsService: newsService}
}

// Home handles GET /api/news/home/?country=&language=
func (h *NewsHandler) Home(w http.ResponseWriter, r *http.Request) {
	country := queryDefault(r, "country", "us")
	language := queryDefault(r, "language", "en")

	payload, err := h.newsService.Home(r.Context(), country, language)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	respondJSON(w, http.StatusOK, payload)
}

// Category handles GET /api/news/category/{category}/?country=&language=
func (h *NewsHandler) Category(w http.ResponseWriter, r *http.Request) {
	category := mux.Vars(r)["category"]
	country := queryDefault(r, "country", "us")
	language := queryDefault(r, "language", "en")

	bucket, items, err := h.newsService.Category(r.Context(), category, country, language)
	if err != nil {
		respondDetail(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"category": bucket,
		"items":    items,
	})
}

func queryDefault(r *http.Request, key, fallback string) string {
	if value := r.URL.Query().Get(key); value != "" {
		return value
	}
	return fallback
}
