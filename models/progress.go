package models

import "time"

// TopicProgress aggregates quiz results for one topic.
type TopicProgress struct {
	QuizzesTaken  int       `json:"quizzes_taken"`
	AverageScore  float64   `json:"average_score"`
	LastAttempted time.Time `json:"last_attempted"`
}

// UserProgress is the per-user aggregate updated once per finalized
// quiz report. It is a side-effect sink: the quiz state machine writes
// to it but never reads it.
type UserProgress struct {
	UserID       string                    `json:"user_id"`
	QuizzesTaken int                       `json:"quizzes_taken"`
	AverageScore float64                   `json:"average_score"`
	Topics       map[string]*TopicProgress `json:"topics"`
	Recent       []QuizReport              `json:"recent_quizzes"`
}

// StudySession is one logged block of study time, recorded by the
// tracker from messages like "studied polity for 45 minutes".
type StudySession struct {
	Topic    string    `json:"topic"`
	Minutes  int       `json:"minutes"`
	LoggedAt time.Time `json:"logged_at"`
}
