package quiz

import (
	"context"
	"log"
	"strings"
	"time"

	"mentor/models"
)

// Question counts per difficulty, used when the user gave no explicit
// count.
var difficultyQuestionCounts = map[string]int{
	"easy":   5,
	"medium": 7,
	"hard":   10,
}

const defaultDifficulty = "medium"

// maxQuestionCount bounds a session regardless of what the intent
// pipeline asked for.
const maxQuestionCount = 10

const noActiveQuizMessage = "You don't have an active quiz. Start one with something like 'quiz me on history'."

const answerGuidanceMessage = "Please respond with A, B, C, or D. You can also type 'hint', 'skip', or 'quit'."

// QuestionSource produces validated multiple-choice questions for a
// topic. It may return fewer questions than requested; returning zero
// questions (or an error) fails the start transition.
type QuestionSource interface {
	GenerateQuestions(ctx context.Context, topic string, count int, difficulty string) ([]models.Question, error)
}

// ProgressSink receives the terminal report of every finalized quiz.
// Recording is fire-and-forget: a sink failure must never surface in
// the user's finalization reply.
type ProgressSink interface {
	RecordQuizReport(userID string, report *models.QuizReport)
}

// Service owns the per-user quiz state machine:
// NotStarted -> InProgress -> Finalized. Sessions live in the sharded
// store; all mutation happens under the store's per-user lock.
type Service struct {
	store    *sessionStore
	source   QuestionSource
	progress ProgressSink
}

func NewService(source QuestionSource, progress ProgressSink) *Service {
	return &Service{
		store:    newSessionStore(),
		source:   source,
		progress: progress,
	}
}

// Active reports whether the user has a quiz in progress.
func (s *Service) Active(userID string) bool {
	return s.store.active(userID)
}

// HandleSessionMessage interprets an inbound message as a quiz command
// when the user has an active session. It returns handled=false when
// no session exists, in which case the message belongs to the intent
// pipeline. The precedence rule lives here: an in-progress quiz claims
// every message, so a bare "C" is never misrouted.
func (s *Service) HandleSessionMessage(userID, text string) (reply string, handled bool) {
	if !s.store.active(userID) {
		return "", false
	}

	command := strings.ToLower(strings.TrimSpace(text))
	command = strings.TrimPrefix(command, "/")

	switch command {
	case "hint":
		return s.Hint(userID), true
	case "skip":
		return s.Skip(userID), true
	case "quit", "exit":
		return s.Finalize(userID, "Quiz cancelled. "), true
	}

	letter := strings.ToUpper(command)
	if len(letter) == 1 && letter >= "A" && letter <= "D" {
		return s.Answer(userID, letter), true
	}

	// Not a recognized command: guide without consuming a turn.
	return answerGuidanceMessage, true
}

// Start generates questions for the topic and creates the session. No
// lock is held during generation; the session is installed afterwards
// with put-if-absent so a concurrent start cannot double-create.
func (s *Service) Start(ctx context.Context, userID, topic, difficulty string, count int) string {
	if difficulty == "" {
		difficulty = defaultDifficulty
	}
	if count <= 0 {
		count = difficultyQuestionCounts[difficulty]
		if count == 0 {
			count = difficultyQuestionCounts[defaultDifficulty]
		}
	}
	if count > maxQuestionCount {
		count = maxQuestionCount
	}

	log.Printf("[INFO] Starting quiz for user %s: topic=%q difficulty=%s count=%d", userID, topic, difficulty, count)

	questions, err := s.source.GenerateQuestions(ctx, topic, count, difficulty)
	if err != nil {
		log.Printf("[ERROR] Question generation failed for topic %q: %v", topic, err)
		return "I had trouble creating your quiz. Please try again with a different topic."
	}
	if len(questions) == 0 {
		log.Printf("[ERROR] Question source returned no questions for topic %q", topic)
		return "I couldn't generate any questions on that topic. Please try another topic or ask me something else!"
	}

	now := time.Now().UTC()
	sess := &models.QuizSession{
		UserID:       userID,
		Topic:        topic,
		Difficulty:   difficulty,
		Questions:    questions,
		StartedAt:    now,
		LastActivity: now,
	}

	if !s.store.putIfAbsent(sess) {
		// A session appeared while questions were being generated.
		reply, _ := s.store.update(userID, func(existing *models.QuizSession) (string, bool) {
			return "You already have a quiz in progress.\n\n" + formatQuestion(existing), false
		})
		return reply
	}

	return formatQuestion(sess)
}

// Answer scores the letter against the current question, records the
// response and advances. An invalid letter re-prompts without mutating
// anything. Completing the last question finalizes the session.
func (s *Service) Answer(userID, letter string) string {
	letter = strings.ToUpper(strings.TrimSpace(letter))

	var report *models.QuizReport
	reply, ok := s.store.update(userID, func(sess *models.QuizSession) (string, bool) {
		if letter < "A" || letter > "D" || len(letter) != 1 {
			return answerGuidanceMessage + "\n\n" + formatQuestion(sess), false
		}

		question := sess.Questions[sess.CurrentIndex]
		correct := letter == strings.ToUpper(strings.TrimSpace(question.Answer))

		s.record(sess, letter, correct, false)

		feedback := "❌ Incorrect! The correct answer was " + question.Answer + ".\n\n"
		if correct {
			feedback = "✅ Correct!\n\n"
		}

		if sess.Done() {
			report = buildReport(sess)
			return feedback + formatReport(report, ""), true
		}
		return feedback + formatQuestion(sess), false
	})
	if !ok {
		return noActiveQuizMessage
	}
	if report != nil {
		s.recordProgress(userID, report)
	}
	return reply
}

// Hint reveals the correct letter and re-displays the question. It is
// read-only: neither the index nor the responses change.
func (s *Service) Hint(userID string) string {
	reply, ok := s.store.update(userID, func(sess *models.QuizSession) (string, bool) {
		question := sess.Questions[sess.CurrentIndex]
		sess.LastActivity = time.Now().UTC()
		return "Hint: the correct answer is option " + question.Answer + ".\n\n" + formatQuestion(sess), false
	})
	if !ok {
		return noActiveQuizMessage
	}
	return reply
}

// Skip marks the current question as skipped (scored as wrong) and
// advances, finalizing if it was the last one.
func (s *Service) Skip(userID string) string {
	var report *models.QuizReport
	reply, ok := s.store.update(userID, func(sess *models.QuizSession) (string, bool) {
		s.record(sess, "SKIPPED", false, true)

		if sess.Done() {
			report = buildReport(sess)
			return "Question skipped.\n\n" + formatReport(report, ""), true
		}
		return "Question skipped.\n\n" + formatQuestion(sess), false
	})
	if !ok {
		return noActiveQuizMessage
	}
	if report != nil {
		s.recordProgress(userID, report)
	}
	return reply
}

// Finalize ends the quiz at the current position and removes the
// session. Calling it again once the session is gone yields the
// "no active quiz" reply, never a second report.
func (s *Service) Finalize(userID, prefix string) string {
	var report *models.QuizReport
	reply, ok := s.store.update(userID, func(sess *models.QuizSession) (string, bool) {
		report = buildReport(sess)
		return formatReport(report, prefix), true
	})
	if !ok {
		return noActiveQuizMessage
	}
	s.recordProgress(userID, report)
	return reply
}

// ExpireStale finalizes every session idle past ttl. Invoked by the
// scheduler, not by user traffic.
func (s *Service) ExpireStale(ttl time.Duration) int {
	expired := s.store.expireStale(ttl)
	for _, sess := range expired {
		report := buildReport(sess)
		log.Printf("[INFO] Expired idle quiz session for user %s (topic=%q, %d/%d answered)",
			sess.UserID, sess.Topic, len(sess.Responses), len(sess.Questions))
		s.recordProgress(sess.UserID, report)
	}
	return len(expired)
}

// record appends a response and advances the cursor. Must run under
// the session's shard lock.
func (s *Service) record(sess *models.QuizSession, answer string, correct, skipped bool) {
	sess.Responses = append(sess.Responses, models.QuizResponse{
		Index:     sess.CurrentIndex,
		Answer:    answer,
		Correct:   correct,
		Skipped:   skipped,
		Timestamp: time.Now().UTC(),
	})
	if correct {
		sess.Score++
	}
	sess.CurrentIndex++
	sess.LastActivity = time.Now().UTC()
}

// recordProgress hands the terminal report to the sink. Always called
// after the shard lock is released: the sink may persist to storage
// and must never block other sessions.
func (s *Service) recordProgress(userID string, report *models.QuizReport) {
	if s.progress == nil {
		return
	}
	s.progress.RecordQuizReport(userID, report)
}
