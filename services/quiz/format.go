package quiz

import (
	"fmt"
	"strings"
	"time"

	"mentor/models"
)

// buildReport snapshots a session into its terminal report. The
// percentage is taken against the full configured question count, so
// skipped and unreached questions both count against the score.
func buildReport(sess *models.QuizSession) *models.QuizReport {
	total := len(sess.Questions)

	percentage := 0.0
	if total > 0 {
		percentage = float64(sess.Score) / float64(total) * 100
	}

	breakdown := make([]models.QuestionResult, 0, len(sess.Responses))
	for _, resp := range sess.Responses {
		breakdown = append(breakdown, models.QuestionResult{
			Index:         resp.Index,
			Question:      sess.Questions[resp.Index].Text,
			GivenAnswer:   resp.Answer,
			CorrectAnswer: sess.Questions[resp.Index].Answer,
			Correct:       resp.Correct,
			Skipped:       resp.Skipped,
		})
	}

	return &models.QuizReport{
		Topic:      sess.Topic,
		Difficulty: sess.Difficulty,
		Score:      sess.Score,
		Total:      total,
		Percentage: percentage,
		Breakdown:  breakdown,
		StartedAt:  sess.StartedAt,
		FinishedAt: time.Now().UTC(),
	}
}

// formatQuestion renders the current question with its lettered
// options and the answer prompt.
func formatQuestion(sess *models.QuizSession) string {
	question := sess.Questions[sess.CurrentIndex]

	var b strings.Builder
	fmt.Fprintf(&b, "Question %d of %d:\n%s\n\n", sess.CurrentIndex+1, len(sess.Questions), question.Text)
	for _, option := range question.Options {
		b.WriteString(option)
		b.WriteString("\n")
	}
	b.WriteString("\nYour answer (A/B/C/D):")
	return b.String()
}

// formatReport renders the final score summary with a short
// performance comment.
func formatReport(report *models.QuizReport, prefix string) string {
	comment := "Keep practicing, you'll get there! 💪"
	switch {
	case report.Percentage >= 80:
		comment = "Excellent work! 🎉"
	case report.Percentage >= 60:
		comment = "Good job! 👍"
	}

	var b strings.Builder
	b.WriteString(prefix)
	fmt.Fprintf(&b, "📊 Quiz Complete!\n\nTopic: %s\nScore: %d/%d (%.1f%%)\n\n%s",
		report.Topic, report.Score, report.Total, report.Percentage, comment)
	return b.String()
}
