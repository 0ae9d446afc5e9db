package handlers

import (
	"encoding/json"
	"net/http"

	"mentor/services"

	"github.com/gorilla/mux"
)

type ProgressHandler struct {
	progress *services.ProgressService
}

func NewProgressHandler(progress *services.ProgressService) *ProgressHandler {
	return &ProgressHandler{progress: progress}
}

func (h *ProgressHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/progress/{userID}", h.GetProgress).Methods("GET")
}

func (h *ProgressHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]

	progress := h.progress.GetUserProgress(userID)
	if progress == nil {
		h.writeErrorResponse(w, http.StatusNotFound, "no progress recorded for this user")
		return
	}

	h.writeJSONResponse(w, http.StatusOK, progress)
}

func (h *ProgressHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ProgressHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
