package main

import (
	"context"
	"log"
	"strconv"

	"mentor/config"
	"mentor/db"
	"mentor/services"
	"mentor/services/agent"
	"mentor/services/intent"
	"mentor/services/quiz"
	"mentor/services/retrieval"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Long-polling Telegram gateway. Runs the same message pipeline as the
// HTTP server without needing a public webhook URL, which makes it the
// convenient way to run the bot locally.
func main() {
	cfg := config.Load()

	if cfg.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	if cfg.OpenAIAPIKey == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	if cfg.AnthropicAPIKey == "" {
		log.Fatal("ANTHROPIC_API_KEY environment variable is required")
	}

	var reportRepo services.ReportRepository
	if cfg.DatabaseURL != "" {
		repo, err := db.NewPostgresReportRepository(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize report database: %v", err)
		}
		defer repo.Close()
		reportRepo = repo
	}

	llmService, err := services.NewLLMService(cfg.OpenAIAPIKey, cfg.LLMTimeout)
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}

	var classifier *intent.Classifier
	if cfg.ClassifierMode == "pattern" {
		classifier = intent.NewClassifier(nil)
	} else {
		classifier = intent.NewClassifier(llmService)
	}

	progressService := services.NewProgressService(reportRepo)

	var questionRetriever quiz.ContextProvider
	var tutorRetriever agent.ContextProvider
	if cfg.PineconeAPIKey != "" {
		retrievalService, err := retrieval.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
		if err != nil {
			log.Fatalf("Failed to initialize retrieval service: %v", err)
		}
		questionRetriever = retrievalService
		tutorRetriever = retrievalService
	}

	generator := quiz.NewGenerator(llmService, questionRetriever)
	quizService := quiz.NewService(generator, progressService)

	tutorService, err := agent.NewService(cfg.AnthropicAPIKey, tutorRetriever)
	if err != nil {
		log.Fatalf("Failed to initialize tutor service: %v", err)
	}

	processor := services.NewMessageProcessor(classifier, quizService, tutorService,
		services.NewPlannerService(), services.NewTrackerService(progressService))

	telegramService, err := services.NewTelegramService(cfg.TelegramBotToken)
	if err != nil {
		log.Fatalf("Failed to initialize Telegram service: %v", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := telegramService.Bot().GetUpdatesChan(updateConfig)
	log.Printf("[INFO] Bot started, polling for updates")

	for update := range updates {
		if update.Message == nil || update.Message.Text == "" {
			continue
		}

		chatID := update.Message.Chat.ID
		text := update.Message.Text

		go func() {
			reply := processor.HandleMessage(context.Background(), strconv.FormatInt(chatID, 10), text)
			if err := telegramService.SendMessage(chatID, reply); err != nil {
				log.Printf("[ERROR] Failed to deliver reply: %v", err)
			}
		}()
	}
}
