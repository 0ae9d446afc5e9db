package services

import (
	"context"
	"log"
	"math/rand"

	"mentor/models"
)

var greetingResponses = []string{
	"Hello! I'm your AI study mentor. How can I assist you with your preparation today?",
	"Namaste! I'm here to help you with your exam journey. What would you like to work on?",
	"Hi there! Ready to ace your preparation? What can I help you with today?",
}

var thanksResponses = []string{
	"You're welcome! Let me know if you need any more help with your preparation.",
	"Happy to help! Keep up the great work with your studies.",
	"Anytime! Feel free to ask if you have more questions. Good luck with your preparation!",
}

const helpResponse = `I can help you with:
• 🧠 AI Tutor: Ask any subject question
• 📝 Quiz Mode: Type 'quiz me on history' to practice
• 📅 Study Planner: Type 'create a study plan for polity'
• 📊 Progress Tracker: Type 'show my progress'

Just type your question or command to get started!`

const feedbackResponse = "Thank you for your feedback! I'm always working to improve. 🙏"

const unknownResponse = "I'm not sure I understood that. Type 'help' to see what I can do!"

const tutorUnavailableResponse = "I'm having trouble answering right now. Please try again in a moment."

// IntentClassifier resolves a free-text message to an intent with
// entities.
type IntentClassifier interface {
	Classify(ctx context.Context, message string) models.IntentResult
}

// QuizRunner is the quiz dialogue surface the processor routes
// through.
type QuizRunner interface {
	HandleSessionMessage(userID, text string) (reply string, handled bool)
	Start(ctx context.Context, userID, topic, difficulty string, count int) string
}

// Tutor answers subject questions.
type Tutor interface {
	Answer(ctx context.Context, question string) (string, error)
}

// MessageProcessor is the single entry point for inbound messages from
// every channel. An active quiz session claims the message before any
// classification happens; otherwise the classifier decides which
// service responds.
type MessageProcessor struct {
	classifier IntentClassifier
	quiz       QuizRunner
	tutor      Tutor
	planner    *PlannerService
	tracker    *TrackerService
}

func NewMessageProcessor(classifier IntentClassifier, quiz QuizRunner, tutor Tutor, planner *PlannerService, tracker *TrackerService) *MessageProcessor {
	return &MessageProcessor{
		classifier: classifier,
		quiz:       quiz,
		tutor:      tutor,
		planner:    planner,
		tracker:    tracker,
	}
}

// HandleMessage produces the reply for one inbound message.
func (p *MessageProcessor) HandleMessage(ctx context.Context, userID, text string) string {
	if reply, handled := p.quiz.HandleSessionMessage(userID, text); handled {
		return reply
	}

	result := p.classifier.Classify(ctx, text)
	log.Printf("[INFO] Classified message from user %s: intent=%s confidence=%.2f", userID, result.Intent, result.Confidence)

	if result.NeedsClarification && result.ClarificationPrompt != "" {
		return result.ClarificationPrompt
	}

	switch result.Intent {
	case models.IntentGreeting:
		return greetingResponses[rand.Intn(len(greetingResponses))]
	case models.IntentThanks:
		return thanksResponses[rand.Intn(len(thanksResponses))]
	case models.IntentHelp:
		return helpResponse
	case models.IntentQuiz:
		return p.quiz.Start(ctx, userID, result.Subject(), result.Difficulty(), result.NumQuestions())
	case models.IntentTutor:
		reply, err := p.tutor.Answer(ctx, text)
		if err != nil {
			log.Printf("[ERROR] Tutor failed for user %s: %v", userID, err)
			return tutorUnavailableResponse
		}
		return reply
	case models.IntentPlan:
		return p.planner.CreatePlan(userID, result.Subject(), text)
	case models.IntentTrack:
		return p.tracker.HandleMessage(userID, text)
	case models.IntentFeedback:
		return feedbackResponse
	default:
		return unknownResponse
	}
}
