package services

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"mentor/models"
)

type fakeReportRepo struct {
	mu    sync.Mutex
	saved []*models.QuizReport
	err   error
}

func (f *fakeReportRepo) SaveReport(userID string, report *models.QuizReport) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, report)
	return nil
}

func (f *fakeReportRepo) LoadReports(userID string, limit int) ([]models.QuizReport, error) {
	return nil, nil
}

func report(topic string, percentage float64) *models.QuizReport {
	return &models.QuizReport{
		Topic:      topic,
		Score:      int(percentage / 10),
		Total:      10,
		Percentage: percentage,
		FinishedAt: time.Now().UTC(),
	}
}

func TestRecordQuizReportAggregates(t *testing.T) {
	svc := NewProgressService(nil)

	svc.RecordQuizReport("user1", report("history", 80))
	svc.RecordQuizReport("user1", report("history", 60))
	svc.RecordQuizReport("user1", report("polity", 100))

	progress := svc.GetUserProgress("user1")
	if progress == nil {
		t.Fatal("expected progress for user1")
	}
	if progress.QuizzesTaken != 3 {
		t.Errorf("expected 3 quizzes, got %d", progress.QuizzesTaken)
	}
	if math.Abs(progress.AverageScore-80) > 0.001 {
		t.Errorf("expected average 80, got %.2f", progress.AverageScore)
	}

	history := progress.Topics["history"]
	if history == nil || history.QuizzesTaken != 2 || math.Abs(history.AverageScore-70) > 0.001 {
		t.Errorf("unexpected history topic stats: %+v", history)
	}
	if len(progress.Recent) != 3 {
		t.Errorf("expected 3 recent reports, got %d", len(progress.Recent))
	}
}

func TestRecentHistoryCapped(t *testing.T) {
	svc := NewProgressService(nil)

	for i := 0; i < 15; i++ {
		svc.RecordQuizReport("user1", report(fmt.Sprintf("topic%d", i), 50))
	}

	progress := svc.GetUserProgress("user1")
	if len(progress.Recent) != 10 {
		t.Fatalf("expected history capped at 10, got %d", len(progress.Recent))
	}
	if progress.Recent[len(progress.Recent)-1].Topic != "topic14" {
		t.Errorf("history should keep the newest reports, got %q", progress.Recent[len(progress.Recent)-1].Topic)
	}
	if progress.QuizzesTaken != 15 {
		t.Errorf("aggregate count must survive the cap, got %d", progress.QuizzesTaken)
	}
}

func TestRepositoryFailureIsBestEffort(t *testing.T) {
	svc := NewProgressService(&fakeReportRepo{err: errors.New("db down")})

	svc.RecordQuizReport("user1", report("history", 80))

	if progress := svc.GetUserProgress("user1"); progress == nil || progress.QuizzesTaken != 1 {
		t.Error("in-memory aggregate must survive a repository failure")
	}
}

func TestGetUserProgressReturnsCopy(t *testing.T) {
	svc := NewProgressService(nil)
	svc.RecordQuizReport("user1", report("history", 80))

	snapshot := svc.GetUserProgress("user1")
	snapshot.Topics["history"].QuizzesTaken = 99
	snapshot.QuizzesTaken = 99

	fresh := svc.GetUserProgress("user1")
	if fresh.QuizzesTaken != 1 || fresh.Topics["history"].QuizzesTaken != 1 {
		t.Error("mutating a snapshot must not affect stored state")
	}
}

func TestSummary(t *testing.T) {
	svc := NewProgressService(nil)

	if got := svc.Summary("nobody"); !strings.Contains(got, "haven't logged any activity") {
		t.Errorf("expected empty-state message, got %q", got)
	}

	svc.RecordQuizReport("user1", report("history", 80))
	svc.LogStudySession("user1", "polity", 45)

	got := svc.Summary("user1")
	for _, want := range []string{"Quizzes taken: 1", "80.0%", "history", "45 minutes"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestConcurrentRecording(t *testing.T) {
	svc := NewProgressService(nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.RecordQuizReport("user1", report("history", 50))
		}()
	}
	wg.Wait()

	if progress := svc.GetUserProgress("user1"); progress.QuizzesTaken != 20 {
		t.Errorf("expected 20 quizzes, got %d", progress.QuizzesTaken)
	}
}
