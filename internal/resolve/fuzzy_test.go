package resolve_test

import (
	"errors"
	"testing"

	"github.com/hubofallthings/hat-cli/internal/resolve"
)

var tools = []resolve.Named{
	{ID: "data-feed-counter", Name: "Data Feed Counter"},
	{ID: "sentiment-history", Name: "Sentiment History"},
	{ID: "common-words", Name: "Common Words"},
}

func TestFuzzyMatch_ExactID(t *testing.T) {
	id, err := resolve.FuzzyMatch("common-words", tools)
	if err != nil {
		t.Fatal(err)
	}
	if id != "common-words" {
		t.Fatalf("expected common-words, got %s", id)
	}
}

func TestFuzzyMatch_ExactName(t *testing.T) {
	id, err := resolve.FuzzyMatch("sentiment history", tools)
	if err != nil {
		t.Fatal(err)
	}
	if id != "sentiment-history" {
		t.Fatalf("expected sentiment-history, got %s", id)
	}
}

func TestFuzzyMatch_PartialHit(t *testing.T) {
	id, err := resolve.FuzzyMatch("senti", tools)
	if err != nil {
		t.Fatal(err)
	}
	if id != "sentiment-history" {
		t.Fatalf("expected sentiment-history, got %s", id)
	}
}

func TestFuzzyMatch_NoMatch(t *testing.T) {
	if _, err := resolve.FuzzyMatch("xyz", tools); err == nil {
		t.Fatal("expected error for no match")
	}
}

func TestFuzzyMatch_EmptyInputs(t *testing.T) {
	if _, err := resolve.FuzzyMatch("  ", tools); !errors.Is(err, resolve.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := resolve.FuzzyMatch("words", nil); !errors.Is(err, resolve.ErrEmptyItems) {
		t.Fatalf("expected ErrEmptyItems, got %v", err)
	}
}

func TestFuzzyMatch_Ambiguous(t *testing.T) {
	items := []resolve.Named{
		{ID: "a", Name: "Weekly Summary US"},
		{ID: "b", Name: "Weekly Summary EU"},
	}
	_, err := resolve.FuzzyMatch("weekly", items)
	var ae *resolve.AmbiguousError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AmbiguousError, got %T: %v", err, err)
	}
	if len(ae.Matches) != 2 {
		t.Fatalf("expected 2 candidates, got %+v", ae.Matches)
	}
	if msg := ae.Error(); msg == "" {
		t.Fatal("expected error message")
	}
}

func TestFuzzyMatchAll(t *testing.T) {
	matches := resolve.FuzzyMatchAll("o", tools, 2)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if resolve.FuzzyMatchAll("", tools, 2) != nil {
		t.Fatal("expected nil for empty query")
	}
	if resolve.FuzzyMatchAll("o", tools, 0) != nil {
		t.Fatal("expected nil for zero limit")
	}
}
