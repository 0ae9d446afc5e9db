package intent

import (
	"regexp"
	"strings"

	"mentor/models"
)

// Confidence assigned to the high-precision short-circuit patterns.
const patternConfidence = 0.95

// Confidence assigned by the pattern-only fallback classifier.
const fallbackConfidence = 0.8

// simplePatterns are the cheap, high-precision checks run before any
// LLM call. First match wins.
var simplePatterns = []struct {
	intent   models.Intent
	patterns []*regexp.Regexp
}{
	{models.IntentGreeting, compileAll(`\b(hi|hello|hey|namaste)\b`)},
	{models.IntentThanks, compileAll(`\b(thanks|thank you)\b`)},
	{models.IntentHelp, compileAll(`\b(help|commands|menu)\b`)},
}

// fallbackPatterns drive classification when the generative backend is
// disabled. Lower precision, so matches carry a lower confidence.
var fallbackPatterns = []struct {
	intent   models.Intent
	patterns []*regexp.Regexp
}{
	{models.IntentQuiz, compileAll(
		`(test me|quiz me|give me a quiz|take a test|practi[cs]e questions|mcq|multiple choice|quiz on|test on|questions on)`,
		`(i want to practice|i need practice|i want to test myself|i want to take a quiz)`,
	)},
	{models.IntentPlan, compileAll(
		`(study plan|study schedule|timetable|study routine|daily plan|weekly plan|monthly plan|plan my studies)`,
		`(create a plan|make a schedule|organize my study|how should i plan|i need a study plan)`,
	)},
	{models.IntentTrack, compileAll(
		`(my progress|my performance|my stats|my statistics|track my progress|how am i doing|my results|my scores)`,
		`(show me my progress|view my performance|check my stats|see my results)`,
	)},
	{models.IntentFeedback, compileAll(
		`(feedback|suggestion|i have a suggestion|i want to suggest|report an issue)`,
		`(this is not working|i don't like this|this is great|i love this)`,
	)},
	{models.IntentTutor, compileAll(
		`\b(what|when|where|who|why|how|explain|define|describe|elaborate)\b`,
		`(tell me about|teach me about|details about|information about|learn about)`,
	)},
}

func compileAll(patterns ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		compiled[i] = regexp.MustCompile(p)
	}
	return compiled
}

// checkSimplePatterns runs the high-precision checks. It returns the
// zero result and false when nothing matched.
func checkSimplePatterns(text string) (models.IntentResult, bool) {
	lower := strings.ToLower(text)
	for _, group := range simplePatterns {
		for _, pattern := range group.patterns {
			if pattern.MatchString(lower) {
				return models.IntentResult{
					Intent:     group.intent,
					Confidence: patternConfidence,
					Entities:   Extract(text),
				}, true
			}
		}
	}
	return models.IntentResult{}, false
}

// classifyByPattern is the pattern-only strategy used when no
// generative backend is configured.
func classifyByPattern(text string) models.IntentResult {
	lower := strings.ToLower(text)

	for _, group := range fallbackPatterns {
		for _, pattern := range group.patterns {
			if pattern.MatchString(lower) {
				return models.IntentResult{
					Intent:     group.intent,
					Confidence: fallbackConfidence,
					Entities:   Extract(text),
				}
			}
		}
	}

	// A question mark with no other signal still reads as a tutoring
	// question.
	if strings.Contains(text, "?") {
		return models.IntentResult{
			Intent:     models.IntentTutor,
			Confidence: 0.6,
			Entities:   Extract(text),
		}
	}

	return models.IntentResult{Intent: models.IntentUnknown, Entities: map[string]any{}}
}
