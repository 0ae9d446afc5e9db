package models

import "time"

// ChatRequest is the transport-level inbound message shape.
type ChatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message"`
}

// ChatResponse carries the engine's reply back to the transport.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// StudyPlan is a generated weekly study schedule for one user. Weeks
// holds the topics assigned to each week, in order.
type StudyPlan struct {
	Subject       string     `json:"subject"`
	DurationWeeks int        `json:"duration_weeks"`
	DailyHours    int        `json:"daily_hours"`
	Weeks         [][]string `json:"weeks"`
	CreatedAt     time.Time  `json:"created_at"`
}
