package main

import (
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"mentor/config"
	"mentor/db"
	"mentor/handlers"
	"mentor/services"
	"mentor/services/agent"
	"mentor/services/intent"
	"mentor/services/quiz"
	"mentor/services/retrieval"

	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

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
	} else {
		log.Printf("[INFO] DB_URL not set, quiz reports will not be persisted")
	}

	var retrievalService *retrieval.Service
	if cfg.PineconeAPIKey != "" {
		service, err := retrieval.NewService(cfg.PineconeAPIKey, cfg.OpenAIAPIKey, cfg.PineconeIndexName)
		if err != nil {
			log.Fatalf("Failed to initialize retrieval service: %v", err)
		}
		retrievalService = service
	} else {
		log.Printf("[INFO] PINECONE_API_KEY not set, running without study-material retrieval")
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
	if retrievalService != nil {
		questionRetriever = retrievalService
	}
	generator := quiz.NewGenerator(llmService, questionRetriever)
	quizService := quiz.NewService(generator, progressService)

	var tutorRetriever agent.ContextProvider
	if retrievalService != nil {
		tutorRetriever = retrievalService
	}
	tutorService, err := agent.NewService(cfg.AnthropicAPIKey, tutorRetriever)
	if err != nil {
		log.Fatalf("Failed to initialize tutor service: %v", err)
	}

	plannerService := services.NewPlannerService()
	trackerService := services.NewTrackerService(progressService)

	processor := services.NewMessageProcessor(classifier, quizService, tutorService, plannerService, trackerService)

	chatHandler := handlers.NewChatHandler(processor)
	progressHandler := handlers.NewProgressHandler(progressService)
	planHandler := handlers.NewPlanHandler(plannerService)

	router := mux.NewRouter()

	router.Use(corsMiddleware)

	router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}).Methods("OPTIONS")

	chatHandler.RegisterRoutes(router)
	progressHandler.RegisterRoutes(router)
	planHandler.RegisterRoutes(router)

	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.Every(5).Minutes().Do(func() {
		if n := quizService.ExpireStale(cfg.SessionTTL); n > 0 {
			log.Printf("[INFO] Expired %d idle quiz sessions", n)
		}
	})

	if cfg.TelegramBotToken != "" {
		telegramService, err := services.NewTelegramService(cfg.TelegramBotToken)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram service: %v", err)
		}
		telegramHandler := handlers.NewTelegramHandler(processor, telegramService)
		telegramHandler.RegisterRoutes(router)

		scheduler.Every(1).Day().At("03:00").Do(func() {
			sendStudyReminders(telegramService, progressService)
		})
	} else {
		log.Printf("[INFO] TELEGRAM_BOT_TOKEN not set, Telegram webhook disabled")
	}

	router.HandleFunc("/health", healthCheckHandler).Methods("GET")

	scheduler.StartAsync()

	addr := ":" + cfg.Port
	fmt.Printf("Server starting on port %s\n", cfg.Port)

	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Expose-Headers", "*")
		w.Header().Set("Access-Control-Allow-Credentials", "true")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// sendStudyReminders nudges every known Telegram user once a day. User IDs
// that are not numeric chat IDs come from the HTTP API and are skipped.
func sendStudyReminders(telegram *services.TelegramService, progress *services.ProgressService) {
	reminder := "⏰ Daily reminder: a little study every day goes a long way. " +
		"Try 'quiz me on history' or log a session with 'studied polity for 30 minutes'!"

	sent := 0
	for _, userID := range progress.UserIDs() {
		chatID, err := strconv.ParseInt(userID, 10, 64)
		if err != nil {
			continue
		}
		if err := telegram.SendMessage(chatID, reminder); err != nil {
			log.Printf("[ERROR] Failed to send reminder to %s: %v", userID, err)
			continue
		}
		sent++
	}
	if sent > 0 {
		log.Printf("[INFO] Sent %d study reminders", sent)
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "healthy"}`))
}
