package experiment

import "testing"

func TestEvaluateAnswerExactMatch(t *testing.T) {
	if got := EvaluateAnswer("Paris", "paris"); got != 100.0 {
		t.Fatalf("exact match should score 100, got %v", got)
	}
}

func TestEvaluateAnswerContainment(t *testing.T) {
	if got := EvaluateAnswer("The capital of France is Paris.", "paris"); got != 80.0 {
		t.Fatalf("containment should score 80, got %v", got)
	}
}

func TestEvaluateAnswerKeywordOverlap(t *testing.T) {
	got := EvaluateAnswer("blue and green", "blue red")
	if got != 50.0 {
		t.Fatalf("one of two expected keywords should score 50, got %v", got)
	}
}

func TestEvaluateAnswerOverlapCapped(t *testing.T) {
	// Every expected keyword appears, but not as a contiguous substring.
	got := EvaluateAnswer("yes the answer is no", "no yes")
	if got != 90.0 {
		t.Fatalf("full keyword overlap without containment should cap at 90, got %v", got)
	}
}

func TestEvaluateAnswerNoExpected(t *testing.T) {
	if got := EvaluateAnswer("anything", ""); got != 100.0 {
		t.Fatalf("non-empty response with no expected answer should score 100, got %v", got)
	}
	if got := EvaluateAnswer("  ", ""); got != 0.0 {
		t.Fatalf("empty response with no expected answer should score 0, got %v", got)
	}
}

func TestAggregateExcludesFailures(t *testing.T) {
	results := []SampleResult{
		{Success: true, Tokens: 100, Cost: 0.01, Accuracy: 90},
		{Success: false, Tokens: 0, Cost: 0, Accuracy: 0, Error: "boom"},
		{Success: true, Tokens: 200, Cost: 0.03, Accuracy: 70},
	}
	accuracy, avgTokens, totalCost := Aggregate(results)
	if accuracy != 80.0 {
		t.Fatalf("expected mean accuracy 80 over successes, got %v", accuracy)
	}
	if avgTokens != 150.0 {
		t.Fatalf("expected avg tokens 150, got %v", avgTokens)
	}
	if totalCost != 0.04 {
		t.Fatalf("expected total cost 0.04, got %v", totalCost)
	}
}

func TestAggregateAllFailed(t *testing.T) {
	results := []SampleResult{{Success: false, Error: "a"}, {Success: false, Error: "b"}}
	accuracy, avgTokens, totalCost := Aggregate(results)
	if accuracy != 0 || avgTokens != 0 || totalCost != 0 {
		t.Fatalf("all-failed aggregate should be zero, got %v %v %v", accuracy, avgTokens, totalCost)
	}
}

func TestClassify(t *testing.T) {
	ok := SampleResult{Success: true}
	bad := SampleResult{Success: false}

	if got := Classify([]SampleResult{bad, bad}); got != OutcomeAllFailed {
		t.Fatalf("expected all failed, got %v", got)
	}
	if got := Classify([]SampleResult{ok, bad}); got != OutcomePartial {
		t.Fatalf("expected partial, got %v", got)
	}
	if got := Classify([]SampleResult{ok, ok}); got != OutcomeAllSucceeded {
		t.Fatalf("expected all succeeded, got %v", got)
	}
}
