package models

// Intent is the classified purpose of an inbound message.
type Intent string

const (
	IntentTutor    Intent = "tutor"
	IntentQuiz     Intent = "quiz"
	IntentPlan     Intent = "plan"
	IntentTrack    Intent = "track"
	IntentGreeting Intent = "greeting"
	IntentThanks   Intent = "thanks"
	IntentHelp     Intent = "help"
	IntentFeedback Intent = "feedback"
	IntentUnknown  Intent = "unknown"
)

// Entity keys produced by the extractor and the LLM classifier.
const (
	EntityPrimarySubject = "primary_subject"
	EntitySubjects       = "subjects"
	EntityDifficulty     = "difficulty"
	EntityNumQuestions   = "num_questions"
	EntityDuration       = "duration"
)

// IntentResult is the outcome of classifying one message. It is treated
// as immutable once produced.
type IntentResult struct {
	Intent              Intent         `json:"intent"`
	Confidence          float64        `json:"confidence"`
	Entities            map[string]any `json:"entities"`
	NeedsClarification  bool           `json:"needs_clarification"`
	ClarificationPrompt string         `json:"clarification_prompt,omitempty"`
}

// Subject returns the primary subject entity if one was extracted. The
// LLM occasionally reports it under "topic" or "subject" instead of the
// canonical key, so all three are checked.
func (r IntentResult) Subject() string {
	for _, key := range []string{EntityPrimarySubject, "topic", "subject"} {
		if v, ok := r.Entities[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Difficulty returns the difficulty entity, or "" when absent.
func (r IntentResult) Difficulty() string {
	if v, ok := r.Entities[EntityDifficulty].(string); ok {
		return v
	}
	return ""
}

// NumQuestions returns the requested question count, or 0 when absent.
// JSON numbers decode as float64, so both representations are accepted.
func (r IntentResult) NumQuestions() int {
	switch v := r.Entities[EntityNumQuestions].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
