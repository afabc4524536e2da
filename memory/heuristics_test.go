package memory_test

import (
	"strings"
	"testing"

	"github.com/rishicds/orinai-sub000/memory"
)

func TestScoreImportance(t *testing.T) {
	if got := memory.ScoreImportance("show me something", "short"); got != 5 {
		t.Fatalf("base score = %d, want 5", got)
	}
	if got := memory.ScoreImportance("remember my budget", "short"); got != 7 {
		t.Fatalf("salience score = %d, want 7", got)
	}
	long := strings.Repeat("x", 501)
	if got := memory.ScoreImportance("remember my budget", long); got != 8 {
		t.Fatalf("salience + long response = %d, want 8", got)
	}
	if got := memory.ScoreImportance("anything", long); got != 6 {
		t.Fatalf("long response only = %d, want 6", got)
	}
}

func TestExtractTopic(t *testing.T) {
	if got := memory.ExtractTopic("Help me plan my budget for March"); got != "budget" {
		t.Fatalf("topic = %q, want budget", got)
	}
	// Vocabulary scan order puts finance terms first.
	if got := memory.ExtractTopic("stock market software"); got != "stock" {
		t.Fatalf("topic = %q, want stock", got)
	}
	// No vocabulary hit falls back to the first three tokens.
	if got := memory.ExtractTopic("plan the garden layout carefully"); got != "plan the garden" {
		t.Fatalf("fallback topic = %q", got)
	}
}

func TestExtractEntities(t *testing.T) {
	got := memory.ExtractEntities("Compare Apple and Samsung revenue, then Apple again")
	want := []string{"Apple", "Samsung"}
	if len(got) != len(want) {
		t.Fatalf("entities = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entities = %v, want %v", got, want)
		}
	}
}

func TestExtractKeywords(t *testing.T) {
	got := memory.ExtractKeywords("Show me the latest budget numbers please")
	want := []string{"latest", "budget", "numbers"}
	if len(got) != len(want) {
		t.Fatalf("keywords = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("keywords = %v, want %v", got, want)
		}
	}
}

func TestExtractKeywordsCap(t *testing.T) {
	text := "alpha bravo charlie delta echo foxtrot golf hotel india juliett kilo lima"
	got := memory.ExtractKeywords(text)
	if len(got) != 10 {
		t.Fatalf("keyword count = %d, want 10", len(got))
	}
}
