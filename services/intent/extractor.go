package intent

import (
	"regexp"
	"strconv"
	"strings"

	"mentor/models"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Question-count bounds applied to an explicit "<N> questions" request.
const (
	minQuestions = 1
	maxQuestions = 10
)

// subjects is the fixed vocabulary recognized in free text. Order
// matters: the first match becomes the primary subject.
var subjects = []string{
	"history", "geography", "polity", "economics",
	"science", "environment", "current affairs", "csat",
	"mathematics", "general studies", "essay", "ethics",
	"international relations", "governance", "social justice",
}

var difficultyKeywords = map[string][]string{
	"easy":   {"easy", "simple", "beginner", "basic"},
	"medium": {"medium", "moderate", "intermediate"},
	"hard":   {"hard", "difficult", "tough", "advanced"},
}

var (
	countPattern    = regexp.MustCompile(`(\d+)\s+questions?`)
	durationPattern = regexp.MustCompile(`(\d+)\s+(day|week|month)s?`)
	cadencePattern  = regexp.MustCompile(`\b(daily|weekly|monthly)\b`)
)

// fuzzyStopwords are request words that sit within editing distance of
// a subject ("easy" is two edits from "essay") and must never be
// fuzzy-matched as one.
var fuzzyStopwords = buildFuzzyStopwords()

func buildFuzzyStopwords() map[string]bool {
	words := []string{
		"quiz", "test", "question", "questions",
		"hint", "skip", "quit", "exit", "help", "plan", "study",
		"please", "polite",
	}
	for _, keywords := range difficultyKeywords {
		words = append(words, keywords...)
	}

	stop := make(map[string]bool, len(words))
	for _, w := range words {
		stop[w] = true
	}
	return stop
}

// Extract pulls structured entities out of free text. It is a pure
// function: no I/O, no errors. An empty result means nothing matched
// and callers should fall back to defaults.
func Extract(text string) map[string]any {
	entities := make(map[string]any)
	lower := strings.ToLower(text)

	if matched := matchSubjects(lower); len(matched) > 0 {
		entities[models.EntitySubjects] = matched
		entities[models.EntityPrimarySubject] = matched[0]
	}

	if difficulty := matchDifficulty(lower); difficulty != "" {
		entities[models.EntityDifficulty] = difficulty
	}

	if m := countPattern.FindStringSubmatch(lower); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			if n < minQuestions {
				n = minQuestions
			}
			if n > maxQuestions {
				n = maxQuestions
			}
			entities[models.EntityNumQuestions] = n
		}
	}

	if duration := matchDuration(lower); duration != "" {
		entities[models.EntityDuration] = duration
	}

	return entities
}

func matchSubjects(lower string) []string {
	var matched []string
	for _, subject := range subjects {
		if strings.Contains(lower, subject) {
			matched = append(matched, subject)
		}
	}
	if len(matched) > 0 {
		return matched
	}

	// Typo tolerance: compare each word against single-word subjects
	// with a strict edit distance.
	words := strings.Fields(lower)
	for _, subject := range subjects {
		if strings.Contains(subject, " ") {
			continue
		}
		for _, word := range words {
			word = strings.Trim(word, ".,!?;:()[]{}\"'")
			if len(word) < 4 || fuzzyStopwords[word] {
				continue
			}
			if fuzzy.MatchFold(subject, word) || levenshteinClose(subject, word) {
				matched = append(matched, subject)
				break
			}
		}
	}
	return matched
}

// levenshteinClose accepts a single-character typo, or two adjacent
// characters swapped. Anything looser turns unrelated words into
// subjects ("polite" is two substitutions from "polity").
func levenshteinClose(subject, word string) bool {
	if fuzzy.LevenshteinDistance(subject, word) == 1 {
		return true
	}
	return isTransposition(subject, word)
}

func isTransposition(a, b string) bool {
	if len(a) != len(b) || a == b {
		return false
	}
	for i := 0; i < len(a)-1; i++ {
		if a[i] != b[i] {
			return a[i] == b[i+1] && a[i+1] == b[i] && a[i+2:] == b[i+2:]
		}
	}
	return false
}

func matchDifficulty(lower string) string {
	for _, level := range []string{"easy", "medium", "hard"} {
		for _, keyword := range difficultyKeywords[level] {
			if strings.Contains(lower, keyword) {
				return level
			}
		}
	}
	return ""
}

func matchDuration(lower string) string {
	if m := durationPattern.FindStringSubmatch(lower); m != nil {
		return m[1] + " " + m[2]
	}
	if m := cadencePattern.FindString(lower); m != "" {
		return m
	}
	return ""
}
