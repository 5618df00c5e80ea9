package forwarder

import (
	"testing"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

func TestMatchContains(t *testing.T) {
	f := &store.Forwarder{MatchType: store.MatchContains, Keywords: []string{"deploy", "incident"}}

	keyword, ok := Match(f, "we have an INCIDENT in prod")
	if !ok || keyword != "incident" {
		t.Fatalf("want match on incident, got keyword=%q ok=%v", keyword, ok)
	}

	if _, ok := Match(f, "nothing to see here"); ok {
		t.Fatal("expected no match")
	}
}

func TestMatchContainsFirstKeywordWins(t *testing.T) {
	f := &store.Forwarder{MatchType: store.MatchContains, Keywords: []string{"bug", "urgent"}}
	keyword, ok := Match(f, "this is an urgent bug")
	if !ok || keyword != "bug" {
		t.Fatalf("want first matching keyword in list order (bug), got %q", keyword)
	}
}

func TestMatchExactTokenBoundary(t *testing.T) {
	f := &store.Forwarder{MatchType: store.MatchExact, Keywords: []string{"pr review"}}

	keyword, ok := Match(f, "please start a PR review today")
	if !ok || keyword != "pr review" {
		t.Fatalf("want exact token match, got keyword=%q ok=%v", keyword, ok)
	}

	if _, ok := Match(f, "preview the changes"); ok {
		t.Fatal("exact match must not fire on substring across token boundaries")
	}
}

func TestMatchExactPunctuationNormalized(t *testing.T) {
	f := &store.Forwarder{MatchType: store.MatchExact, Keywords: []string{"go live"}}
	if _, ok := Match(f, "when do we go-live?"); !ok {
		t.Fatal("exact match should normalize punctuation between tokens")
	}
}

func TestMatchEmptyKeywordIgnored(t *testing.T) {
	f := &store.Forwarder{MatchType: store.MatchContains, Keywords: []string{""}}
	if _, ok := Match(f, "anything"); ok {
		t.Fatal("an empty keyword must never match")
	}
}
