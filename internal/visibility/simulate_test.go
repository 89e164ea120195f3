package visibility

import (
	"testing"
)

// ========================================
// Simulate Tests
// ========================================

func TestSimulate_Deterministic(t *testing.T) {
	// Same inputs must yield identical results across repeated calls.
	for i := 0; i < 6; i++ {
		first := Simulate("best plumbers near me", "Acme", "target-1", i)
		second := Simulate("best plumbers near me", "Acme", "target-1", i)

		if first.Occurred != second.Occurred {
			t.Fatalf("check %d: occurred differs between calls", i)
		}
		if (first.Position == nil) != (second.Position == nil) {
			t.Fatalf("check %d: position nilness differs between calls", i)
		}
		if first.Position != nil && *first.Position != *second.Position {
			t.Fatalf("check %d: position %d != %d", i, *first.Position, *second.Position)
		}
		if first.ContextRelevance != second.ContextRelevance {
			t.Fatalf("check %d: relevance %v != %v", i, first.ContextRelevance, second.ContextRelevance)
		}
	}
}

func TestSimulate_WellFormed(t *testing.T) {
	tests := []struct {
		name       string
		prompt     string
		brand      string
		targetID   string
		checkIndex int
	}{
		{name: "basic", prompt: "best crm software", brand: "Acme", targetID: "t1", checkIndex: 0},
		{name: "different index", prompt: "best crm software", brand: "Acme", targetID: "t1", checkIndex: 5},
		{name: "empty prompt", prompt: "", brand: "Acme", targetID: "t1", checkIndex: 0},
		{name: "unicode brand", prompt: "top cafes", brand: "Café Bleu", targetID: "t2", checkIndex: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := Simulate(tt.prompt, tt.brand, tt.targetID, tt.checkIndex)

			if check.Prompt != tt.prompt {
				t.Errorf("prompt = %q, want %q", check.Prompt, tt.prompt)
			}
			if check.Keyword != tt.brand {
				t.Errorf("keyword = %q, want %q", check.Keyword, tt.brand)
			}
			if check.Occurred {
				if check.Position == nil {
					t.Fatal("occurred but position is nil")
				}
				if *check.Position < 1 || *check.Position > 100 {
					t.Errorf("position = %d, want within [1, 100]", *check.Position)
				}
				if check.ContextRelevance < 0.5 || check.ContextRelevance > 1.0 {
					t.Errorf("relevance = %v, want within [0.5, 1.0] when occurred", check.ContextRelevance)
				}
			} else {
				if check.Position != nil {
					t.Errorf("not occurred but position = %d", *check.Position)
				}
				if check.ContextRelevance < 0 || check.ContextRelevance >= 0.5 {
					t.Errorf("relevance = %v, want within [0, 0.5) when not occurred", check.ContextRelevance)
				}
			}
		})
	}
}

func TestSimulate_InputsChangeOutcome(t *testing.T) {
	// Not a strict requirement of the hash, but across 100 indexes the
	// results must not all collapse to a single outcome.
	occurred := 0
	for i := 0; i < 100; i++ {
		if Simulate("prompt", "Brand", "target", i).Occurred {
			occurred++
		}
	}
	if occurred == 0 || occurred == 100 {
		t.Errorf("occurred %d/100 simulated checks; expected a mix", occurred)
	}
}
