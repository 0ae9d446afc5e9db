package services

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramService sends replies back to Telegram chats. The webhook
// handler and the polling gateway both go through it.
type TelegramService struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramService(token string) (*TelegramService, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	log.Printf("[INFO] Telegram bot authorized as @%s", bot.Self.UserName)
	return &TelegramService{bot: bot}, nil
}

func (s *TelegramService) Bot() *tgbotapi.BotAPI {
	return s.bot
}

func (s *TelegramService) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send Telegram message to chat %d: %w", chatID, err)
	}
	return nil
}
