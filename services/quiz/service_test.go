package quiz

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"mentor/models"
)

type fakeSource struct {
	questions []models.Question
	err       error
	calls     int
}

func (f *fakeSource) GenerateQuestions(ctx context.Context, topic string, count int, difficulty string) ([]models.Question, error) {
	f.calls++
	return f.questions, f.err
}

type recordingSink struct {
	mu      sync.Mutex
	reports []*models.QuizReport
}

func (r *recordingSink) RecordQuizReport(userID string, report *models.QuizReport) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, report)
}

func (r *recordingSink) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

func threeQuestions() []models.Question {
	return []models.Question{
		{Text: "Q1?", Options: []string{"A. a", "B. b", "C. c", "D. d"}, Answer: "B"},
		{Text: "Q2?", Options: []string{"A. a", "B. b", "C. c", "D. d"}, Answer: "A"},
		{Text: "Q3?", Options: []string{"A. a", "B. b", "C. c", "D. d"}, Answer: "D"},
	}
}

func startedService(t *testing.T, sink *recordingSink) *Service {
	t.Helper()
	svc := NewService(&fakeSource{questions: threeQuestions()}, sink)
	reply := svc.Start(context.Background(), "user1", "history", "easy", 3)
	if !strings.Contains(reply, "Question 1 of 3") {
		t.Fatalf("expected first question, got %q", reply)
	}
	return svc
}

func TestFullQuizAllCorrect(t *testing.T) {
	sink := &recordingSink{}
	svc := startedService(t, sink)

	replies := []string{}
	for _, answer := range []string{"B", "A", "D"} {
		reply, handled := svc.HandleSessionMessage("user1", answer)
		if !handled {
			t.Fatalf("answer %q not handled", answer)
		}
		replies = append(replies, reply)
	}

	final := replies[len(replies)-1]
	if !strings.Contains(final, "Quiz Complete") {
		t.Errorf("expected completion summary, got %q", final)
	}
	if !strings.Contains(final, "3/3") || !strings.Contains(final, "100.0%") {
		t.Errorf("expected perfect score in summary, got %q", final)
	}
	if svc.Active("user1") {
		t.Error("session should be removed after completion")
	}
	if sink.count() != 1 {
		t.Errorf("expected exactly one recorded report, got %d", sink.count())
	}
	report := sink.reports[0]
	if report.Score != 3 || report.Total != 3 || report.Percentage != 100.0 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestSkipCountsAsWrong(t *testing.T) {
	sink := &recordingSink{}
	svc := startedService(t, sink)

	svc.HandleSessionMessage("user1", "B")
	reply, _ := svc.HandleSessionMessage("user1", "skip")
	if !strings.Contains(reply, "skipped") {
		t.Errorf("expected skip acknowledgement, got %q", reply)
	}
	final, _ := svc.HandleSessionMessage("user1", "D")

	if !strings.Contains(final, "2/3") {
		t.Errorf("skip should count as wrong, got %q", final)
	}
	report := sink.reports[0]
	if !report.Breakdown[1].Skipped || report.Breakdown[1].Correct {
		t.Errorf("second question should be marked skipped and wrong: %+v", report.Breakdown[1])
	}
}

func TestHintDoesNotConsumeTurn(t *testing.T) {
	sink := &recordingSink{}
	svc := startedService(t, sink)

	reply, _ := svc.HandleSessionMessage("user1", "hint")
	if !strings.Contains(reply, "option B") {
		t.Errorf("hint should reveal the correct letter, got %q", reply)
	}
	if !strings.Contains(reply, "Question 1 of 3") {
		t.Errorf("hint should redisplay the current question, got %q", reply)
	}

	// Answering wrong after the hint advances by exactly one.
	reply, _ = svc.HandleSessionMessage("user1", "C")
	if !strings.Contains(reply, "Incorrect") || !strings.Contains(reply, "Question 2 of 3") {
		t.Errorf("expected wrong feedback then question 2, got %q", reply)
	}
}

func TestInvalidInputDoesNotConsumeTurn(t *testing.T) {
	sink := &recordingSink{}
	svc := startedService(t, sink)

	reply, handled := svc.HandleSessionMessage("user1", "banana")
	if !handled {
		t.Fatal("active session should claim every message")
	}
	if !strings.Contains(reply, "A, B, C, or D") {
		t.Errorf("expected guidance, got %q", reply)
	}

	reply, _ = svc.HandleSessionMessage("user1", "B")
	if !strings.Contains(reply, "Question 2 of 3") {
		t.Errorf("invalid input must not advance the quiz, got %q", reply)
	}
}

func TestQuitFinalizesEarly(t *testing.T) {
	sink := &recordingSink{}
	svc := startedService(t, sink)

	svc.HandleSessionMessage("user1", "B")
	reply, _ := svc.HandleSessionMessage("user1", "quit")

	if !strings.Contains(reply, "Quiz Complete") {
		t.Errorf("quit should produce the final summary, got %q", reply)
	}
	if !strings.Contains(reply, "1/3") {
		t.Errorf("percentage must count unreached questions, got %q", reply)
	}
	if svc.Active("user1") {
		t.Error("session should be gone after quit")
	}
	if sink.count() != 1 {
		t.Errorf("expected exactly one report, got %d", sink.count())
	}
}

func TestFinalizeIsIdempotent(t *testing.T) {
	sink := &recordingSink{}
	svc := startedService(t, sink)

	svc.HandleSessionMessage("user1", "quit")

	_, handled := svc.HandleSessionMessage("user1", "quit")
	if handled {
		t.Error("messages after finalization should fall through to the intent pipeline")
	}
	if got := svc.Finalize("user1", ""); !strings.Contains(got, "don't have an active quiz") {
		t.Errorf("second finalize should report no active quiz, got %q", got)
	}
	if sink.count() != 1 {
		t.Errorf("finalize must emit exactly one report, got %d", sink.count())
	}
}

func TestSlashPrefixedCommands(t *testing.T) {
	sink := &recordingSink{}
	svc := startedService(t, sink)

	reply, handled := svc.HandleSessionMessage("user1", "/skip")
	if !handled || !strings.Contains(reply, "skipped") {
		t.Errorf("slash commands should work, got handled=%v reply=%q", handled, reply)
	}
}

func TestStartFailures(t *testing.T) {
	tests := []struct {
		name   string
		source *fakeSource
		want   string
	}{
		{
			name:   "generation error",
			source: &fakeSource{err: context.DeadlineExceeded},
			want:   "trouble creating your quiz",
		},
		{
			name:   "no questions",
			source: &fakeSource{},
			want:   "couldn't generate any questions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.source, nil)
			reply := svc.Start(context.Background(), "user1", "history", "medium", 0)
			if !strings.Contains(reply, tt.want) {
				t.Errorf("expected %q in reply, got %q", tt.want, reply)
			}
			if svc.Active("user1") {
				t.Error("no session should exist after a failed start")
			}
		})
	}
}

func TestDifficultyPresets(t *testing.T) {
	tests := []struct {
		difficulty string
		want       int
	}{
		{"easy", 5},
		{"medium", 7},
		{"hard", 10},
		{"", 7},
		{"nightmare", 7},
	}

	for _, tt := range tests {
		t.Run(tt.difficulty, func(t *testing.T) {
			var gotCount int
			source := &countCapturingSource{captured: &gotCount}
			svc := NewService(source, nil)
			svc.Start(context.Background(), "user1", "history", tt.difficulty, 0)
			if gotCount != tt.want {
				t.Errorf("difficulty %q: expected %d questions, got %d", tt.difficulty, tt.want, gotCount)
			}
		})
	}
}

func TestExplicitCountIsClamped(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{3, 3},
		{10, 10},
		{50, 10},
	}

	for _, tt := range tests {
		var gotCount int
		source := &countCapturingSource{captured: &gotCount}
		svc := NewService(source, nil)
		svc.Start(context.Background(), "user1", "history", "medium", tt.count)
		if gotCount != tt.want {
			t.Errorf("count %d: expected %d questions requested, got %d", tt.count, tt.want, gotCount)
		}
	}
}

type countCapturingSource struct {
	captured *int
}

func (c *countCapturingSource) GenerateQuestions(ctx context.Context, topic string, count int, difficulty string) ([]models.Question, error) {
	*c.captured = count
	return nil, nil
}

func TestNoActiveQuizFallsThrough(t *testing.T) {
	svc := NewService(&fakeSource{}, nil)
	if _, handled := svc.HandleSessionMessage("nobody", "B"); handled {
		t.Error("message without a session must not be handled")
	}
}

func TestExpireStale(t *testing.T) {
	sink := &recordingSink{}
	svc := startedService(t, sink)

	if n := svc.ExpireStale(time.Hour); n != 0 {
		t.Errorf("fresh session should not expire, got %d", n)
	}

	// Backdate activity past the TTL.
	svc.store.update("user1", func(sess *models.QuizSession) (string, bool) {
		sess.LastActivity = time.Now().UTC().Add(-2 * time.Hour)
		return "", false
	})

	if n := svc.ExpireStale(time.Hour); n != 1 {
		t.Fatalf("expected 1 expired session, got %d", n)
	}
	if svc.Active("user1") {
		t.Error("expired session should be removed")
	}
	if sink.count() != 1 {
		t.Errorf("expiry should record a report, got %d", sink.count())
	}
}
