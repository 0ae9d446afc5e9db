package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"mentor/services"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/mux"
)

type TelegramHandler struct {
	processor *services.MessageProcessor
	telegram  *services.TelegramService
}

func NewTelegramHandler(processor *services.MessageProcessor, telegram *services.TelegramService) *TelegramHandler {
	return &TelegramHandler{processor: processor, telegram: telegram}
}

func (h *TelegramHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/telegram/webhook", h.Webhook).Methods("POST")
}

// Webhook acknowledges the update immediately and replies out of band.
// Telegram retries slow webhooks, so the LLM work must not happen on
// the request path.
func (h *TelegramHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("[ERROR] Failed to decode Telegram update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	chatID := update.Message.Chat.ID
	text := update.Message.Text
	userID := strconv.FormatInt(chatID, 10)

	go func() {
		reply := h.processor.HandleMessage(context.Background(), userID, text)
		if err := h.telegram.SendMessage(chatID, reply); err != nil {
			log.Printf("[ERROR] Failed to deliver Telegram reply: %v", err)
		}
	}()
}
