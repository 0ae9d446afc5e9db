package models

import "time"

// Question is a single multiple-choice question with exactly four
// options. Answer is the correct option letter: A, B, C or D.
type Question struct {
	Text    string   `json:"question"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// QuizResponse records one answered or skipped question.
type QuizResponse struct {
	Index     int       `json:"question_idx"`
	Answer    string    `json:"answer"`
	Correct   bool      `json:"is_correct"`
	Skipped   bool      `json:"skipped"`
	Timestamp time.Time `json:"timestamp"`
}

// QuizSession holds the live state of one user's quiz. At most one
// session exists per user; it is owned by the quiz service and only
// mutated under the session store's per-user lock.
type QuizSession struct {
	UserID       string         `json:"user_id"`
	Topic        string         `json:"topic"`
	Difficulty   string         `json:"difficulty"`
	Questions    []Question     `json:"questions"`
	CurrentIndex int            `json:"current_question"`
	Score        int            `json:"score"`
	Responses    []QuizResponse `json:"responses"`
	StartedAt    time.Time      `json:"start_time"`
	LastActivity time.Time      `json:"last_activity"`
}

// Done reports whether every question has been answered or skipped.
func (s *QuizSession) Done() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// QuestionResult is one line of a report's per-question breakdown.
type QuestionResult struct {
	Index         int    `json:"question_idx"`
	Question      string `json:"question"`
	GivenAnswer   string `json:"user_answer"`
	CorrectAnswer string `json:"correct_answer"`
	Correct       bool   `json:"is_correct"`
	Skipped       bool   `json:"skipped"`
}

// QuizReport is the terminal result emitted exactly once when a quiz
// session is finalized.
type QuizReport struct {
	Topic      string           `json:"topic"`
	Difficulty string           `json:"difficulty"`
	Score      int              `json:"score"`
	Total      int              `json:"total"`
	Percentage float64          `json:"percentage"`
	Breakdown  []QuestionResult `json:"breakdown"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}
