package opportunity

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSafeExcerpt(t *testing.T) {
	if got := SafeExcerpt("  short   text ", ExcerptLimit); got != "short text" {
		t.Fatalf("expected normalized short text, got %q", got)
	}

	long := strings.Repeat("a", 300)
	got := SafeExcerpt(long, ExcerptLimit)
	if utf8.RuneCountInString(got) != ExcerptLimit {
		t.Fatalf("expected %d runes, got %d", ExcerptLimit, utf8.RuneCountInString(got))
	}
	if !strings.HasSuffix(got, "…") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
}

func TestHashID(t *testing.T) {
	a := HashID("adzuna", "https://example.com/job/1")
	b := HashID("adzuna", "https://example.com/job/1")
	c := HashID("adzuna", "https://example.com/job/2")

	if a != b {
		t.Fatalf("hash must be stable: %q vs %q", a, b)
	}
	if a == c {
		t.Fatalf("distinct inputs must not collide: %q", a)
	}
	if !strings.HasPrefix(a, "adzuna-") {
		t.Fatalf("expected prefix, got %q", a)
	}
}

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		text string
		want Kind
	}{
		{"Software Intern - Python", KindInternship},
		{"Campus Hackathon 2026", KindHackathon},
		{"Cloud Bootcamp for beginners", KindWorkshop},
		{"Graduate Trainee Engineer", KindFullTime},
		{"Backend Engineer", KindOther},
		// Intern beats the later rungs.
		{"Internship with training program", KindInternship},
	}

	for _, tt := range tests {
		if got := ClassifyKind(tt.text); got != tt.want {
			t.Errorf("ClassifyKind(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestLooksClosed(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Applications closed for this role", true},
		{"This offer has expired", true},
		{"No longer accepting candidates", true},
		{"Open until filled", false},
		{"Disclosed salary range", false},
	}

	for _, tt := range tests {
		if got := LooksClosed(tt.text); got != tt.want {
			t.Errorf("LooksClosed(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestLooksSenior(t *testing.T) {
	tests := []struct {
		title string
		want  bool
	}{
		{"Senior Backend Engineer", true},
		{"Sr. Software Engineer", true},
		{"Engineering Manager", true},
		{"Head of Data", true},
		{"Software Intern", false},
		{"Junior Developer", false},
	}

	for _, tt := range tests {
		if got := LooksSenior(tt.title); got != tt.want {
			t.Errorf("LooksSenior(%q) = %v, want %v", tt.title, got, tt.want)
		}
	}
}
