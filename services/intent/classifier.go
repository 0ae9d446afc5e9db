package intent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"mentor/models"
	"mentor/services/llmjson"
)

const classifierSystemPrompt = `You are a JSON classifier. Return ONLY valid JSON, no explanations or thinking.`

const classifierPromptTemplate = `Classify this user message into one intent and extract entities.

User Message: "%s"

Intents:
- tutor: Educational questions/explanations
- quiz: Wants to take a quiz/test
- plan: Create/view study plan
- track: View progress/stats
- greeting: Hi/hello
- thanks: Thank you
- help: Needs help
- feedback: Giving feedback

Return JSON:
{
    "intent": "intent_name",
    "confidence": 0.95,
    "entities": {"primary_subject": "...", "difficulty": "...", "num_questions": 0},
    "needs_clarification": false,
    "clarification_prompt": null
}

Only include entities that are mentioned. If quiz intent but no subject, set needs_clarification=true.`

// Fixed clarification prompts per intent.
const (
	quizClarificationPrompt = "Which subject would you like to be quizzed on? For example: 'quiz me on history'."
	planClarificationPrompt = "Which subject should your study plan focus on? For example: 'plan my polity revision'."
)

// Completer is the narrow generative backend contract: one blocking
// call with an enforced timeout, returning raw text that must not be
// trusted.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Classifier produces an IntentResult for each inbound message. With a
// nil Completer it runs in pattern-only mode; the strategy is chosen at
// construction, never at runtime.
type Classifier struct {
	llm Completer
}

func NewClassifier(llm Completer) *Classifier {
	if llm == nil {
		log.Printf("[INFO] Intent classifier running in pattern-only mode")
	}
	return &Classifier{llm: llm}
}

type classifierPayload struct {
	Intent              string         `json:"intent"`
	Confidence          float64        `json:"confidence"`
	Entities            map[string]any `json:"entities"`
	NeedsClarification  bool           `json:"needs_clarification"`
	ClarificationPrompt string         `json:"clarification_prompt"`
}

// Classify determines the intent of a message. It never returns an
// error: every failure mode degrades to Unknown with zero confidence.
func (c *Classifier) Classify(ctx context.Context, message string) models.IntentResult {
	if strings.TrimSpace(message) == "" {
		return models.IntentResult{Intent: models.IntentUnknown, Entities: map[string]any{}}
	}

	if result, ok := checkSimplePatterns(message); ok {
		return applyClarificationPolicy(result)
	}

	if c.llm == nil {
		return applyClarificationPolicy(classifyByPattern(message))
	}

	raw, err := c.llm.Complete(ctx, classifierSystemPrompt, fmt.Sprintf(classifierPromptTemplate, message))
	if err != nil {
		log.Printf("[ERROR] Intent classification call failed: %v", err)
		return models.IntentResult{Intent: models.IntentUnknown, Entities: map[string]any{}}
	}

	var payload classifierPayload
	if err := llmjson.UnmarshalObject(raw, &payload); err != nil {
		log.Printf("[ERROR] Failed to parse classifier response: %v", err)
		return models.IntentResult{Intent: models.IntentUnknown, Entities: map[string]any{}}
	}

	result := models.IntentResult{
		Intent:              normalizeIntent(payload.Intent),
		Confidence:          clampConfidence(payload.Confidence),
		Entities:            mergeEntities(payload.Entities, Extract(message)),
		NeedsClarification:  payload.NeedsClarification,
		ClarificationPrompt: payload.ClarificationPrompt,
	}

	return applyClarificationPolicy(result)
}

// applyClarificationPolicy enforces the domain rule: a quiz request
// without a subject, or a plan request without a subject, must be
// answered with a clarification question instead of handler dispatch.
func applyClarificationPolicy(result models.IntentResult) models.IntentResult {
	if result.Subject() != "" {
		result.NeedsClarification = false
		result.ClarificationPrompt = ""
		return result
	}

	switch result.Intent {
	case models.IntentQuiz:
		result.NeedsClarification = true
		if result.ClarificationPrompt == "" {
			result.ClarificationPrompt = quizClarificationPrompt
		}
	case models.IntentPlan:
		result.NeedsClarification = true
		if result.ClarificationPrompt == "" {
			result.ClarificationPrompt = planClarificationPrompt
		}
	default:
		// Only quiz and plan have fixed prompts to fall back on. An
		// untrusted clarification flag on any other intent would make
		// the processor reply with whatever the model put in the
		// prompt field, possibly nothing.
		result.NeedsClarification = false
		result.ClarificationPrompt = ""
	}
	return result
}

// mergeEntities combines model-reported entities with the extractor's
// deterministic pass. The extractor wins on conflicts: its matches come
// from a fixed vocabulary and are already normalized.
func mergeEntities(fromModel, extracted map[string]any) map[string]any {
	merged := make(map[string]any, len(fromModel)+len(extracted))
	for k, v := range fromModel {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			if s == "" {
				continue
			}
			merged[k] = strings.ToLower(s)
			continue
		}
		merged[k] = v
	}
	for k, v := range extracted {
		merged[k] = v
	}
	return merged
}

func normalizeIntent(raw string) models.Intent {
	switch models.Intent(strings.ToLower(strings.TrimSpace(raw))) {
	case models.IntentTutor:
		return models.IntentTutor
	case models.IntentQuiz:
		return models.IntentQuiz
	case models.IntentPlan:
		return models.IntentPlan
	case models.IntentTrack:
		return models.IntentTrack
	case models.IntentGreeting:
		return models.IntentGreeting
	case models.IntentThanks:
		return models.IntentThanks
	case models.IntentHelp:
		return models.IntentHelp
	case models.IntentFeedback:
		return models.IntentFeedback
	default:
		return models.IntentUnknown
	}
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
