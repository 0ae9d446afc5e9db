package llmjson

import "testing"

type intentPayload struct {
	Intent     string         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   map[string]any `json:"entities"`
}

func TestUnmarshalObject(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantIntent string
		wantErr    bool
	}{
		{
			name:       "plain object",
			raw:        `{"intent": "quiz", "confidence": 0.9, "entities": {}}`,
			wantIntent: "quiz",
		},
		{
			name:       "fenced object",
			raw:        "```json\n{\"intent\": \"tutor\", \"confidence\": 0.8, \"entities\": {}}\n```",
			wantIntent: "tutor",
		},
		{
			name:       "chain of thought prefix",
			raw:        "<think>the user clearly wants a quiz</think>\n{\"intent\": \"quiz\", \"confidence\": 0.9, \"entities\": {}}",
			wantIntent: "quiz",
		},
		{
			name:       "surrounding prose",
			raw:        "Sure! Here is the classification:\n{\"intent\": \"plan\", \"confidence\": 0.7, \"entities\": {}}\nHope that helps.",
			wantIntent: "plan",
		},
		{
			name:       "trailing comma repaired",
			raw:        `{"intent": "quiz", "confidence": 0.9, "entities": {"primary_subject": "history",},}`,
			wantIntent: "quiz",
		},
		{
			name:       "fences plus thought plus trailing comma",
			raw:        "<think>hmm</think>```json\n{\"intent\": \"quiz\", \"confidence\": 0.95, \"entities\": {},}\n```",
			wantIntent: "quiz",
		},
		{
			name:    "no object at all",
			raw:     "I cannot classify this message.",
			wantErr: true,
		},
		{
			name:    "irreparable payload",
			raw:     `{"intent": quiz no quotes and no closing`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got intentPayload
			err := UnmarshalObject(tt.raw, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Intent != tt.wantIntent {
				t.Errorf("intent = %q, want %q", got.Intent, tt.wantIntent)
			}
		})
	}
}

func TestUnmarshalObjectEquivalence(t *testing.T) {
	// A noisy payload must decode identically to its clean form.
	clean := `{"intent": "quiz", "confidence": 0.9, "entities": {"primary_subject": "polity"}}`
	noisy := "<think>reasoning here</think>\n```json\n" +
		`{"intent": "quiz", "confidence": 0.9, "entities": {"primary_subject": "polity",},}` +
		"\n```"

	var a, b intentPayload
	if err := UnmarshalObject(clean, &a); err != nil {
		t.Fatalf("clean payload failed: %v", err)
	}
	if err := UnmarshalObject(noisy, &b); err != nil {
		t.Fatalf("noisy payload failed: %v", err)
	}

	if a.Intent != b.Intent || a.Confidence != b.Confidence {
		t.Errorf("noisy result %+v differs from clean result %+v", b, a)
	}
	if a.Entities["primary_subject"] != b.Entities["primary_subject"] {
		t.Errorf("entities differ: %v vs %v", b.Entities, a.Entities)
	}
}

func TestUnmarshalArray(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{
			name:    "plain array",
			raw:     `[{"question": "Q1?", "options": ["A. a","B. b","C. c","D. d"], "answer": "A"}]`,
			wantLen: 1,
		},
		{
			name:    "fenced array with preamble",
			raw:     "Here are your questions:\n```json\n[{\"question\": \"Q1?\", \"options\": [\"A. a\",\"B. b\",\"C. c\",\"D. d\"], \"answer\": \"B\"}]\n```",
			wantLen: 1,
		},
		{
			name:    "trailing commas across entries",
			raw:     `[{"question": "Q1?", "options": ["A. a","B. b","C. c","D. d"], "answer": "A",}, {"question": "Q2?", "options": ["A. a","B. b","C. c","D. d"], "answer": "D",},]`,
			wantLen: 2,
		},
		{
			name:    "no array",
			raw:     "no questions today",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []map[string]any
			err := UnmarshalArray(tt.raw, &got)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != tt.wantLen {
				t.Errorf("len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestRepair(t *testing.T) {
	got := Repair(`{"a": 1,, "b": [1, 2,],}`)
	want := `{"a": 1,null, "b": [1, 2]}`
	if got != want {
		t.Errorf("Repair() = %q, want %q", got, want)
	}
}
