package quiz

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/trackquiz/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func (h *Handler) LoadPlaylist(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.LoadPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Playlist == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "playlist is required"})
		return
	}

	resp, err := h.service.LoadPlaylist(r.Context(), uid, req.Playlist)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Failed to load playlist: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) NextQuestion(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	approach := approachParam(r)
	resp, err := h.service.NextQuestion(uid, approach)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitGuess(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.SubmitGuessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.SubmitGuess(uid, req.Guess)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) NextRankingTask(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	approach := approachParam(r)
	resp, err := h.service.NextRankingTask(uid, approach)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) SubmitRanking(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.SubmitRankingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.SubmitRanking(uid, req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) MissedTracks(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	tracks, err := h.service.MissedTracks(uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tracks": tracks})
}

func (h *Handler) RankMistakes(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.service.RankMistakesOnly(uid)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	resp, err := h.service.Stats(uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get stats"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Scoreboard(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Scoreboard()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to get scoreboard"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"scoreboard": entries})
}

func (h *Handler) SetPreferences(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.PreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.SetPreferences(uid, req.FavoriteGenres); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save preferences"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	var req models.SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.UpdateSettings(uid, req); err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to update settings"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *Handler) EndSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	h.service.EndSession(uid)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func (h *Handler) Autocomplete(w http.ResponseWriter, r *http.Request) {
	uid, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
		return
	}

	field := mux.Vars(r)["field"]
	if field != "artist" && field != "title" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "field must be 'artist' or 'title'"})
		return
	}

	matches, err := h.service.Autocomplete(uid, field, r.URL.Query().Get("q"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Autocomplete failed"})
		return
	}
	if matches == nil {
		matches = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"suggestions": matches})
}

// approachParam reads ?approach= from the query, defaulting to random.
func approachParam(r *http.Request) models.Approach {
	if models.Approach(r.URL.Query().Get("approach")) == models.ApproachPersonalized {
		return models.ApproachPersonalized
	}
	return models.ApproachRandom
}

// writeServiceError maps domain errors onto HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNoTracks):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "No tracks loaded; load a playlist first"})
	case errors.Is(err, ErrNotEnoughTracks):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrNoActiveQuestion):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "No question in progress"})
	case errors.Is(err, ErrNoActiveRanking):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "No ranking task in progress"})
	case errors.Is(err, ErrTrackGone):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Track is no longer in the catalog"})
	case errors.Is(err, ErrNoMissedTracks):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "No missed tracks to review"})
	default:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
