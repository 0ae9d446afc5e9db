package services

import (
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"mentor/models"
)

const (
	defaultPlanWeeks  = 12
	maxPlanWeeks      = 52
	defaultDailyHours = 3
	maxDailyHours     = 12
)

// syllabusTopics maps a subject to the topics a study plan rotates
// through. Subjects not listed get a generic breakdown.
var syllabusTopics = map[string][]string{
	"history":    {"Ancient India", "Medieval India", "Modern India", "World History", "Art and Culture"},
	"geography":  {"Physical Geography", "Indian Geography", "World Geography", "Economic Geography"},
	"polity":     {"Constitution", "Governance", "Parliament and Judiciary", "Local Government", "Rights Issues"},
	"economics":  {"Basic Concepts", "Indian Economy", "Budget and Fiscal Policy", "Banking", "International Trade"},
	"science":    {"Physics Basics", "Chemistry Basics", "Biology Basics", "Science and Technology"},
	"environment": {"Ecology", "Biodiversity", "Climate Change", "Conservation"},
	"ethics":     {"Ethics and Human Interface", "Attitude", "Aptitude", "Case Studies"},
}

var genericTopics = []string{"Fundamentals", "Core Concepts", "Advanced Topics", "Practice and Revision"}

var planWeeksPattern = regexp.MustCompile(`(\d+)\s+weeks?`)
var planHoursPattern = regexp.MustCompile(`(\d+)\s+hours?`)

// PlannerService builds and stores per-user study plans. Plans live in
// memory only; they are conversational artifacts, not records.
type PlannerService struct {
	mu    sync.Mutex
	plans map[string]*models.StudyPlan
}

func NewPlannerService() *PlannerService {
	return &PlannerService{plans: make(map[string]*models.StudyPlan)}
}

// CreatePlan builds a plan for the subject, parsing duration and daily
// hours out of the raw message, and replaces any existing plan.
func (p *PlannerService) CreatePlan(userID, subject, message string) string {
	weeks := defaultPlanWeeks
	if m := planWeeksPattern.FindStringSubmatch(strings.ToLower(message)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			weeks = n
			if weeks > maxPlanWeeks {
				weeks = maxPlanWeeks
			}
		}
	}

	hours := defaultDailyHours
	if m := planHoursPattern.FindStringSubmatch(strings.ToLower(message)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			hours = n
			if hours > maxDailyHours {
				hours = maxDailyHours
			}
		}
	}

	topics, ok := syllabusTopics[subject]
	if !ok {
		topics = genericTopics
	}

	// Rotate the subject's topics across the weeks.
	weekTopics := make([][]string, weeks)
	for week := 0; week < weeks; week++ {
		weekTopics[week] = []string{topics[week%len(topics)]}
	}

	plan := &models.StudyPlan{
		Subject:       subject,
		DurationWeeks: weeks,
		DailyHours:    hours,
		Weeks:         weekTopics,
		CreatedAt:     time.Now().UTC(),
	}

	p.mu.Lock()
	p.plans[userID] = plan
	p.mu.Unlock()

	log.Printf("[INFO] Created study plan for user %s: subject=%s weeks=%d hours=%d", userID, subject, weeks, hours)
	return formatPlan(plan)
}

// GetPlan renders the user's current plan, or an empty-state prompt.
func (p *PlannerService) GetPlan(userID string) string {
	p.mu.Lock()
	plan, ok := p.plans[userID]
	p.mu.Unlock()

	if !ok {
		return "You don't have a study plan yet. Tell me something like 'create a study plan for polity over 8 weeks'."
	}
	return formatPlan(plan)
}

func formatPlan(plan *models.StudyPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 Study Plan: %s\n\n", plan.Subject)
	fmt.Fprintf(&b, "📅 Duration: %d weeks\n", plan.DurationWeeks)
	fmt.Fprintf(&b, "⏰ Daily study time: %d hours\n\n", plan.DailyHours)

	b.WriteString("First weeks:\n")
	shown := len(plan.Weeks)
	if shown > 4 {
		shown = 4
	}
	for week := 0; week < shown; week++ {
		fmt.Fprintf(&b, "  Week %d: %s\n", week+1, strings.Join(plan.Weeks[week], ", "))
	}
	if len(plan.Weeks) > shown {
		fmt.Fprintf(&b, "  ... and %d more weeks\n", len(plan.Weeks)-shown)
	}

	b.WriteString("\nAsk me for a quiz anytime to check your understanding!")
	return b.String()
}
