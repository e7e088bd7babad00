// Package scoring ranks filtered listings against a student profile.
package scoring

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

// tokenSplitRe splits on anything outside the token alphabet. "+", "#" and
// "." stay inside tokens so "c++", "c#" and "node.js" survive intact.
var tokenSplitRe = regexp.MustCompile(`[^a-z0-9+#.]+`)

// farFuture is the deadline sort key for listings without one, so among
// equally scored listings an explicit deadline never wins over "no deadline".
var farFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Score computes the relevance score for one listing and records the reasons
// on the listing itself. Deterministic: the same listing and profile always
// produce the same score and reason order.
func Score(op *opportunity.Opportunity, profile *opportunity.Profile) {
	listingTokens := tokenize(append([]string{op.Title, op.Company, op.Location}, op.Tags...))
	profileTokens := tokenize(append([]string{profile.Department}, append(profile.Skills, profile.Interests...)...))

	var overlap []string
	for token := range listingTokens {
		if _, ok := profileTokens[token]; ok {
			overlap = append(overlap, token)
		}
	}
	sort.Strings(overlap)

	score := 0.0
	var reasons []string

	if len(overlap) > 0 {
		score += minFloat(6.0, float64(len(overlap))*1.2)
		shown := overlap
		if len(shown) > 6 {
			shown = shown[:6]
		}
		reasons = append(reasons, "keyword match: "+strings.Join(shown, ", "))
	}

	if op.Kind == opportunity.KindInternship || op.Kind == opportunity.KindHackathon {
		score += 1.0
	}

	titleLow := strings.ToLower(op.Title)
	if containsAnyWord(titleLow, "intern", "fresher", "graduate", "entry", "junior") {
		score += 0.8
		reasons = append(reasons, "fresher/intern friendly")
	}

	if containsAnyWord(titleLow, "staff", "principal", "sr", "senior", "lead", "manager", "director") {
		score -= 1.5
		reasons = append(reasons, "seniority down-rank")
	}

	if op.Deadline != nil {
		score += 1.0
		reasons = append(reasons, "has deadline")
	}

	op.Score = score
	op.Reasons = reasons
}

// Rank scores every listing and sorts the list best first: higher score
// wins, ties go to the later deadline (missing deadlines sort as far
// future). The sort is stable, so equal listings keep their arrival order.
func Rank(list *opportunity.List, profile *opportunity.Profile) {
	for _, op := range list.Items {
		Score(op, profile)
	}

	sort.SliceStable(list.Items, func(i, j int) bool {
		a, b := list.Items[i], list.Items[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return deadlineKey(a).After(deadlineKey(b))
	})
}

func deadlineKey(op *opportunity.Opportunity) time.Time {
	if op.Deadline == nil {
		return farFuture
	}
	return *op.Deadline
}

func tokenize(values []string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, v := range values {
		for _, t := range tokenSplitRe.Split(strings.ToLower(v), -1) {
			if t = strings.TrimSpace(t); len(t) >= 2 {
				tokens[t] = struct{}{}
			}
		}
	}
	return tokens
}

func containsAnyWord(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
