package opportunity

import (
	"crypto/sha1"
	"fmt"
	"regexp"
	"strings"
)

// ExcerptLimit is the character budget for listing excerpts.
const ExcerptLimit = 220

var (
	spaceRe  = regexp.MustCompile(`\s+`)
	closedRe = regexp.MustCompile(`(?i)\b(closed|expired|ended|no longer accepting|applications? closed)\b`)
	seniorRe = regexp.MustCompile(`(?i)\b(sr\.?|senior|staff|lead|principal|manager|director|head|architect)\b`)
)

// NormalizeText collapses all whitespace runs into single spaces.
func NormalizeText(text string) string {
	return spaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
}

// SafeExcerpt normalizes whitespace and truncates to limit runes, ending a
// truncated excerpt with an ellipsis.
func SafeExcerpt(text string, limit int) string {
	text = NormalizeText(text)
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	cut := limit - 1
	if cut < 0 {
		cut = 0
	}
	return strings.TrimRight(string(runes[:cut]), " ") + "…"
}

// HashID derives a stable identifier from the provider-native id or the
// listing URL, so the same posting keeps the same id across runs.
func HashID(prefix, value string) string {
	sum := sha1.Sum([]byte(value))
	return fmt.Sprintf("%s-%x", prefix, sum[:5])
}

// LooksClosed reports whether text contains closure language.
func LooksClosed(text string) bool {
	return closedRe.MatchString(text)
}

// LooksSenior reports whether a title carries seniority markers.
func LooksSenior(title string) bool {
	return seniorRe.MatchString(title)
}

// ClassifyKind maps title+category text onto a Kind using a fixed keyword
// ladder. Earlier rungs win; unclassified text is Other.
func ClassifyKind(text string) Kind {
	low := strings.ToLower(text)
	switch {
	case strings.Contains(low, "intern"):
		return KindInternship
	case strings.Contains(low, "hackathon"):
		return KindHackathon
	case containsAny(low, "workshop", "bootcamp", "training"):
		return KindWorkshop
	case containsAny(low, "graduate", "junior", "entry", "fresher"):
		return KindFullTime
	default:
		return KindOther
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
