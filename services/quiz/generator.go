package quiz

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/samber/lo"

	"mentor/models"
	"mentor/services/llmjson"
)

const generatorSystemPrompt = `You are an expert exam question setter. Generate ONLY a valid JSON array of multiple-choice questions.

CRITICAL REQUIREMENTS:
1. Return ONLY a JSON array - no explanations, no markdown, no other text
2. Each question must have exactly 4 options labeled A, B, C, D
3. Answer must be exactly one letter: A, B, C, or D
4. Use this EXACT format for each question:
{
  "question": "Your question here?",
  "options": ["A. Option 1", "B. Option 2", "C. Option 3", "D. Option 4"],
  "answer": "C"
}

Example:
[
  {
    "question": "What is the capital of India?",
    "options": ["A. Mumbai", "B. Kolkata", "C. New Delhi", "D. Chennai"],
    "answer": "C"
  }
]`

const generatorPromptTemplate = `Create exactly %d multiple-choice questions about %q at %s difficulty, based on this context:

%s

Return ONLY the JSON array. No explanations, no markdown, no other text.`

// Number of context passages retrieved per difficulty. Harder quizzes
// draw on more material.
var difficultyContextSizes = map[string]int{
	"easy":   2,
	"medium": 3,
	"hard":   5,
}

// Completer produces a raw completion for a system/user prompt pair.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ContextProvider retrieves study-material passages relevant to a
// topic. A nil provider means questions are generated from the model's
// own knowledge.
type ContextProvider interface {
	TopicContext(ctx context.Context, topic string, limit int) ([]string, error)
}

// Generator turns a topic into validated multiple-choice questions via
// an LLM, optionally grounded in retrieved study material.
type Generator struct {
	llm       Completer
	retriever ContextProvider
}

func NewGenerator(llm Completer, retriever ContextProvider) *Generator {
	return &Generator{llm: llm, retriever: retriever}
}

// GenerateQuestions requests count questions on the topic and keeps
// only the structurally valid ones. A transport failure returns an
// error; an unusable payload returns a single placeholder question so
// the quiz flow stays alive.
func (g *Generator) GenerateQuestions(ctx context.Context, topic string, count int, difficulty string) ([]models.Question, error) {
	contextText := g.topicContext(ctx, topic, difficulty)

	prompt := fmt.Sprintf(generatorPromptTemplate, count, topic, difficulty, contextText)
	raw, err := g.llm.Complete(ctx, generatorSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions for topic %q: %w", topic, err)
	}

	var parsed []models.Question
	if err := llmjson.UnmarshalArray(raw, &parsed); err != nil {
		log.Printf("[ERROR] Unusable question payload for topic %q: %v", topic, err)
		return []models.Question{fallbackQuestion()}, nil
	}

	valid := lo.FilterMap(parsed, func(q models.Question, i int) (models.Question, bool) {
		q.Answer = strings.ToUpper(strings.TrimSpace(q.Answer))
		q.Text = strings.TrimSpace(q.Text)
		if q.Text == "" {
			log.Printf("[INFO] Dropping question %d: empty text", i)
			return q, false
		}
		if len(q.Options) != 4 {
			log.Printf("[INFO] Dropping question %d: expected 4 options, got %d", i, len(q.Options))
			return q, false
		}
		if q.Answer < "A" || q.Answer > "D" || len(q.Answer) != 1 {
			log.Printf("[INFO] Dropping question %d: invalid answer %q", i, q.Answer)
			return q, false
		}
		q.Options = lo.Map(q.Options, func(opt string, _ int) string { return strings.TrimSpace(opt) })
		return q, true
	})

	if len(valid) == 0 {
		log.Printf("[ERROR] No valid questions survived validation for topic %q", topic)
		return []models.Question{fallbackQuestion()}, nil
	}
	if len(valid) > count {
		valid = valid[:count]
	}

	log.Printf("[INFO] Generated %d/%d questions for topic %q (%s)", len(valid), count, topic, difficulty)
	return valid, nil
}

func (g *Generator) topicContext(ctx context.Context, topic, difficulty string) string {
	if g.retriever == nil {
		return "(no study material available, use your own knowledge)"
	}

	limit := difficultyContextSizes[difficulty]
	if limit == 0 {
		limit = difficultyContextSizes[defaultDifficulty]
	}

	passages, err := g.retriever.TopicContext(ctx, topic, limit)
	if err != nil {
		log.Printf("[ERROR] Failed to retrieve context for topic %q: %v", topic, err)
		return "(no study material available, use your own knowledge)"
	}
	if len(passages) == 0 {
		return "(no study material available, use your own knowledge)"
	}
	return strings.Join(passages, "\n\n")
}

func fallbackQuestion() models.Question {
	return models.Question{
		Text:    "I couldn't generate valid quiz questions for this topic. Please try a different topic.",
		Options: []string{"A. OK", "B. Try again", "C. Different topic", "D. Skip"},
		Answer:  "A",
	}
}
