package services

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"mentor/models"
)

// recentReportsCap bounds the per-user quiz history kept in memory.
const recentReportsCap = 10

// ReportRepository persists finalized quiz reports. Persistence is
// best effort: the in-memory aggregate is the source of truth for
// replies and a repository failure only logs.
type ReportRepository interface {
	SaveReport(userID string, report *models.QuizReport) error
	LoadReports(userID string, limit int) ([]models.QuizReport, error)
}

// ProgressService aggregates quiz results and logged study sessions
// per user. All state lives behind one mutex; operations are short and
// never call out while holding it.
type ProgressService struct {
	mu       sync.Mutex
	users    map[string]*models.UserProgress
	sessions map[string][]models.StudySession
	repo     ReportRepository
}

func NewProgressService(repo ReportRepository) *ProgressService {
	return &ProgressService{
		users:    make(map[string]*models.UserProgress),
		sessions: make(map[string][]models.StudySession),
		repo:     repo,
	}
}

// RecordQuizReport folds a finalized quiz into the user's running
// aggregate and appends it to the recent history.
func (p *ProgressService) RecordQuizReport(userID string, report *models.QuizReport) {
	p.mu.Lock()
	progress := p.userLocked(userID)

	progress.QuizzesTaken++
	progress.AverageScore += (report.Percentage - progress.AverageScore) / float64(progress.QuizzesTaken)

	topic := progress.Topics[report.Topic]
	if topic == nil {
		topic = &models.TopicProgress{}
		progress.Topics[report.Topic] = topic
	}
	topic.QuizzesTaken++
	topic.AverageScore += (report.Percentage - topic.AverageScore) / float64(topic.QuizzesTaken)
	topic.LastAttempted = report.FinishedAt

	progress.Recent = append(progress.Recent, *report)
	if len(progress.Recent) > recentReportsCap {
		progress.Recent = progress.Recent[len(progress.Recent)-recentReportsCap:]
	}
	p.mu.Unlock()

	if p.repo != nil {
		if err := p.repo.SaveReport(userID, report); err != nil {
			log.Printf("[ERROR] Failed to persist quiz report for user %s: %v", userID, err)
		}
	}
}

// LogStudySession records a self-reported study session.
func (p *ProgressService) LogStudySession(userID, topic string, minutes int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.sessions[userID] = append(p.sessions[userID], models.StudySession{
		Topic:    topic,
		Minutes:  minutes,
		LoggedAt: time.Now().UTC(),
	})
}

// GetUserProgress returns a copy of the user's aggregate, or nil when
// nothing has been recorded.
func (p *ProgressService) GetUserProgress(userID string) *models.UserProgress {
	p.mu.Lock()
	defer p.mu.Unlock()

	progress, ok := p.users[userID]
	if !ok {
		return nil
	}

	snapshot := *progress
	snapshot.Topics = make(map[string]*models.TopicProgress, len(progress.Topics))
	for name, topic := range progress.Topics {
		copied := *topic
		snapshot.Topics[name] = &copied
	}
	snapshot.Recent = append([]models.QuizReport(nil), progress.Recent...)
	return &snapshot
}

// Summary renders the user's progress as a chat reply.
func (p *ProgressService) Summary(userID string) string {
	p.mu.Lock()
	progress, hasQuizzes := p.users[userID]
	sessions := p.sessions[userID]
	var totalMinutes int
	for _, s := range sessions {
		totalMinutes += s.Minutes
	}
	var b strings.Builder
	if !hasQuizzes && len(sessions) == 0 {
		p.mu.Unlock()
		return "You haven't logged any activity yet. Take a quiz or tell me something like 'I studied polity for 45 minutes'."
	}

	b.WriteString("📈 Your Progress\n\n")
	if hasQuizzes {
		fmt.Fprintf(&b, "Quizzes taken: %d\nAverage score: %.1f%%\n", progress.QuizzesTaken, progress.AverageScore)
		if len(progress.Topics) > 0 {
			b.WriteString("\nBy topic:\n")
			names := make([]string, 0, len(progress.Topics))
			for name := range progress.Topics {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				topic := progress.Topics[name]
				fmt.Fprintf(&b, "  • %s: %d quizzes, %.1f%% avg\n", name, topic.QuizzesTaken, topic.AverageScore)
			}
		}
	}
	if len(sessions) > 0 {
		fmt.Fprintf(&b, "\n⏱️ Study time logged: %d minutes across %d sessions\n", totalMinutes, len(sessions))
	}
	p.mu.Unlock()

	b.WriteString("\nKeep up the good work! 💪")
	return b.String()
}

// UserIDs returns every user with recorded activity. Used by the
// reminder job.
func (p *ProgressService) UserIDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	seen := make(map[string]struct{}, len(p.users)+len(p.sessions))
	for id := range p.users {
		seen[id] = struct{}{}
	}
	for id := range p.sessions {
		seen[id] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// userLocked returns the user's aggregate, creating it on first use.
// Caller holds the mutex.
func (p *ProgressService) userLocked(userID string) *models.UserProgress {
	progress, ok := p.users[userID]
	if !ok {
		progress = &models.UserProgress{
			UserID: userID,
			Topics: make(map[string]*models.TopicProgress),
		}
		p.users[userID] = progress
	}
	return progress
}
