package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"mentor/models"
	"mentor/services"

	"github.com/gorilla/mux"
)

type ChatHandler struct {
	processor *services.MessageProcessor
}

func NewChatHandler(processor *services.MessageProcessor) *ChatHandler {
	return &ChatHandler{processor: processor}
}

func (h *ChatHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/chat", h.Chat).Methods("POST")
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("[ERROR] Failed to decode chat request JSON: %v", err)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}

	if strings.TrimSpace(req.UserID) == "" {
		h.writeErrorResponse(w, http.StatusBadRequest, "user_id is required")
		return
	}

	reply := h.processor.HandleMessage(r.Context(), req.UserID, req.Message)

	h.writeJSONResponse(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func (h *ChatHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *ChatHandler) writeErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
