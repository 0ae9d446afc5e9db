package services

import (
	"regexp"
	"strconv"
	"strings"
)

var studiedPattern = regexp.MustCompile(`(?i)studied\s+(.+?)\s+for\s+(\d+)\s+(minute|min|hour|hr)s?`)

// TrackerService interprets progress-tracking messages. It owns no
// state of its own: logged sessions and quiz results both live in the
// progress service.
type TrackerService struct {
	progress *ProgressService
}

func NewTrackerService(progress *ProgressService) *TrackerService {
	return &TrackerService{progress: progress}
}

// HandleMessage logs a study session when the message describes one,
// otherwise returns the progress summary.
func (t *TrackerService) HandleMessage(userID, message string) string {
	if m := studiedPattern.FindStringSubmatch(message); m != nil {
		topic := strings.TrimSpace(m[1])
		amount, err := strconv.Atoi(m[2])
		if err == nil && amount > 0 {
			minutes := amount
			if strings.HasPrefix(strings.ToLower(m[3]), "h") {
				minutes = amount * 60
			}
			t.progress.LogStudySession(userID, topic, minutes)
			return "✅ Study session logged!\n\n📚 Topic: " + topic + "\n⏱️ Duration: " +
				strconv.Itoa(minutes) + " minutes\n\nKeep up the good work! 💪"
		}
	}

	return t.progress.Summary(userID)
}
