package intent

import (
	"context"
	"errors"
	"testing"

	"mentor/models"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	s.calls++
	return s.response, s.err
}

func TestClassifyEmptyInput(t *testing.T) {
	c := NewClassifier(nil)
	for _, text := range []string{"", "   ", "\n\t"} {
		result := c.Classify(context.Background(), text)
		if result.Intent != models.IntentUnknown || result.Confidence != 0 {
			t.Errorf("Classify(%q) = %v/%v, want unknown/0", text, result.Intent, result.Confidence)
		}
	}
}

func TestClassifySimplePatternsSkipLLM(t *testing.T) {
	tests := []struct {
		text string
		want models.Intent
	}{
		{"hello there", models.IntentGreeting},
		{"hey", models.IntentGreeting},
		{"namaste mentor", models.IntentGreeting},
		{"thanks a lot", models.IntentThanks},
		{"thank you so much", models.IntentThanks},
		{"help", models.IntentHelp},
		{"show me the menu", models.IntentHelp},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			stub := &stubCompleter{response: `{"intent": "tutor", "confidence": 0.9, "entities": {}}`}
			c := NewClassifier(stub)

			result := c.Classify(context.Background(), tt.text)
			if result.Intent != tt.want {
				t.Errorf("intent = %v, want %v", result.Intent, tt.want)
			}
			if result.Confidence != patternConfidence {
				t.Errorf("confidence = %v, want %v", result.Confidence, patternConfidence)
			}
			if stub.calls != 0 {
				t.Errorf("generative backend called %d times for a pattern match", stub.calls)
			}
		})
	}
}

func TestClassifyNoisyBackendResponse(t *testing.T) {
	// A response wrapped in fences, preceded by chain-of-thought and
	// carrying a trailing comma must parse the same as its clean form.
	clean := `{"intent": "quiz", "confidence": 0.92, "entities": {"primary_subject": "history"}, "needs_clarification": false, "clarification_prompt": null}`
	noisy := "<think>user wants an mcq session on history</think>\n```json\n" +
		`{"intent": "quiz", "confidence": 0.92, "entities": {"primary_subject": "history",}, "needs_clarification": false, "clarification_prompt": null,}` +
		"\n```"

	message := "put me through an mcq session about the past of india"

	cleanResult := NewClassifier(&stubCompleter{response: clean}).Classify(context.Background(), message)
	noisyResult := NewClassifier(&stubCompleter{response: noisy}).Classify(context.Background(), message)

	if noisyResult.Intent != models.IntentQuiz {
		t.Fatalf("intent = %v, want quiz", noisyResult.Intent)
	}
	if noisyResult.Intent != cleanResult.Intent ||
		noisyResult.Confidence != cleanResult.Confidence ||
		noisyResult.NeedsClarification != cleanResult.NeedsClarification {
		t.Errorf("noisy result %+v differs from clean result %+v", noisyResult, cleanResult)
	}
	if noisyResult.Subject() != "history" {
		t.Errorf("subject = %q, want history", noisyResult.Subject())
	}
}

func TestClassifyBackendFailureDegradesToUnknown(t *testing.T) {
	tests := []struct {
		name string
		stub *stubCompleter
	}{
		{"transport error", &stubCompleter{err: errors.New("request timed out")}},
		{"empty response", &stubCompleter{response: ""}},
		{"prose response", &stubCompleter{response: "I think this is a quiz request."}},
		{"irreparable json", &stubCompleter{response: `{"intent": quiz`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.stub)
			result := c.Classify(context.Background(), "something ambiguous")
			if result.Intent != models.IntentUnknown || result.Confidence != 0 {
				t.Errorf("got %v/%v, want unknown/0", result.Intent, result.Confidence)
			}
		})
	}
}

func TestClarificationPolicy(t *testing.T) {
	t.Run("quiz without subject needs clarification", func(t *testing.T) {
		c := NewClassifier(nil)
		result := c.Classify(context.Background(), "quiz me")
		if result.Intent != models.IntentQuiz {
			t.Fatalf("intent = %v, want quiz", result.Intent)
		}
		if !result.NeedsClarification {
			t.Error("expected needs_clarification = true")
		}
		if result.ClarificationPrompt == "" {
			t.Error("expected a non-empty clarification prompt")
		}
	})

	t.Run("quiz with subject dispatches directly", func(t *testing.T) {
		c := NewClassifier(nil)
		result := c.Classify(context.Background(), "quiz me on Polity")
		if result.Intent != models.IntentQuiz {
			t.Fatalf("intent = %v, want quiz", result.Intent)
		}
		if result.NeedsClarification {
			t.Error("expected needs_clarification = false")
		}
		if got := result.Subject(); got != "polity" {
			t.Errorf("subject = %q, want polity", got)
		}
	})

	t.Run("plan without subject needs clarification", func(t *testing.T) {
		c := NewClassifier(nil)
		result := c.Classify(context.Background(), "i need a study plan")
		if result.Intent != models.IntentPlan {
			t.Fatalf("intent = %v, want plan", result.Intent)
		}
		if !result.NeedsClarification || result.ClarificationPrompt == "" {
			t.Error("expected clarification with a prompt")
		}
	})

	t.Run("clarification flag on other intents is cleared", func(t *testing.T) {
		// The model may set needs_clarification with a null prompt on
		// an intent that has no fixed fallback; relaying that verbatim
		// would send the user an empty reply.
		stub := &stubCompleter{response: `{"intent": "tutor", "confidence": 0.8, "entities": {}, "needs_clarification": true, "clarification_prompt": null}`}
		c := NewClassifier(stub)
		result := c.Classify(context.Background(), "explain the monsoon mechanism")
		if result.Intent != models.IntentTutor {
			t.Fatalf("intent = %v, want tutor", result.Intent)
		}
		if result.NeedsClarification {
			t.Error("expected needs_clarification = false for tutor intent")
		}
		if result.ClarificationPrompt != "" {
			t.Errorf("clarification_prompt = %q, want empty", result.ClarificationPrompt)
		}
	})

	t.Run("backend-reported clarification is honored", func(t *testing.T) {
		stub := &stubCompleter{response: `{"intent": "quiz", "confidence": 0.9, "entities": {}, "needs_clarification": true, "clarification_prompt": null}`}
		c := NewClassifier(stub)
		result := c.Classify(context.Background(), "give me some practice i guess")
		if !result.NeedsClarification {
			t.Error("expected needs_clarification = true")
		}
		if result.ClarificationPrompt == "" {
			t.Error("expected fixed prompt to backfill a null clarification_prompt")
		}
	})
}

func TestClassifyPatternOnlyMode(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		text string
		want models.Intent
	}{
		{"test me on geography", models.IntentQuiz},
		{"show me my progress", models.IntentTrack},
		{"what is the doctrine of basic structure", models.IntentTutor},
		{"asdfghjkl", models.IntentUnknown},
	}

	for _, tt := range tests {
		result := c.Classify(context.Background(), tt.text)
		if result.Intent != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.text, result.Intent, tt.want)
		}
	}
}
