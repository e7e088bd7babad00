package scoring

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

var profile = &opportunity.Profile{
	Department: "Computer Science",
	Skills:     []string{"python", "react"},
}

func TestScoreInternScenario(t *testing.T) {
	deadline := time.Now().AddDate(0, 0, 10)
	op := &opportunity.Opportunity{
		Title:    "Software Intern - Python",
		Kind:     opportunity.KindInternship,
		Location: "Chennai, India",
		Deadline: &deadline,
	}

	Score(op, profile)

	// 1.2 keyword + 1.0 internship + 0.8 intern-friendly + 1.0 deadline.
	if op.Score < 3.0 {
		t.Fatalf("expected score >= 3.0, got %.2f", op.Score)
	}

	wantReasons := []string{"keyword match: python", "fresher/intern friendly", "has deadline"}
	if !reflect.DeepEqual(op.Reasons, wantReasons) {
		t.Fatalf("expected reasons %v, got %v", wantReasons, op.Reasons)
	}
}

func TestScoreDeterministic(t *testing.T) {
	op := &opportunity.Opportunity{
		Title:    "React Developer Intern",
		Kind:     opportunity.KindInternship,
		Location: "Bengaluru, Karnataka",
		Tags:     []string{"Engineering", "python"},
	}

	Score(op, profile)
	firstScore, firstReasons := op.Score, append([]string(nil), op.Reasons...)

	Score(op, profile)
	if op.Score != firstScore {
		t.Fatalf("score changed between runs: %.2f vs %.2f", firstScore, op.Score)
	}
	if !reflect.DeepEqual(op.Reasons, firstReasons) {
		t.Fatalf("reasons changed between runs: %v vs %v", firstReasons, op.Reasons)
	}
}

func TestScoreSeniorityDownRank(t *testing.T) {
	op := &opportunity.Opportunity{Title: "Senior Python Engineer"}

	Score(op, profile)

	found := false
	for _, r := range op.Reasons {
		if r == "seniority down-rank" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected seniority down-rank reason, got %v", op.Reasons)
	}
}

func TestScoreKeywordCap(t *testing.T) {
	op := &opportunity.Opportunity{
		Title: "python react computer science engineering data web cloud",
	}
	wide := &opportunity.Profile{
		Department: "engineering",
		Skills:     []string{"python", "react", "data", "web", "cloud", "computer", "science"},
	}

	Score(op, wide)

	if op.Score > 6.0 {
		t.Fatalf("keyword contribution must cap at 6.0, got %.2f", op.Score)
	}
	if len(op.Reasons) == 0 || !strings.HasPrefix(op.Reasons[0], "keyword match: ") {
		t.Fatalf("expected keyword reason, got %v", op.Reasons)
	}
	// At most 6 tokens listed.
	listed := strings.Split(strings.TrimPrefix(op.Reasons[0], "keyword match: "), ", ")
	if len(listed) > 6 {
		t.Fatalf("expected at most 6 listed tokens, got %v", listed)
	}
}

func TestRankOrdering(t *testing.T) {
	early := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	// Titles built so scores come out high / low / tie / tie.
	a := &opportunity.Opportunity{ID: "low", Title: "Backend Engineer", SourceURL: "https://x/1"}
	b := &opportunity.Opportunity{ID: "high", Title: "Python Intern", Kind: opportunity.KindInternship, SourceURL: "https://x/2"}
	c := &opportunity.Opportunity{ID: "tie-early", Title: "Software Trainee Intern", Kind: opportunity.KindInternship, Deadline: &early, SourceURL: "https://x/3"}
	d := &opportunity.Opportunity{ID: "tie-late", Title: "Systems Trainee Intern", Kind: opportunity.KindInternship, Deadline: &late, SourceURL: "https://x/4"}

	list := opportunity.NewList(a, c, d, b)
	Rank(list, profile)

	for i := 1; i < list.Len(); i++ {
		if list.Items[i-1].Score < list.Items[i].Score {
			t.Fatalf("list is not sorted by score desc: %v", listIDs(list))
		}
	}

	// Equal scores: the later deadline sorts first.
	posEarly, posLate := indexOf(list, "tie-early"), indexOf(list, "tie-late")
	if posLate > posEarly {
		t.Fatalf("expected later deadline to rank above earlier on a tie: %v", listIDs(list))
	}
}

func TestRankMissingDeadlineSentinel(t *testing.T) {
	deadline := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	// Both score 2.0: kind + deadline vs keyword + intern-friendly.
	with := &opportunity.Opportunity{ID: "with", Title: "Campus Drive", Kind: opportunity.KindInternship, Deadline: &deadline}
	without := &opportunity.Opportunity{ID: "without", Title: "Python Intern", Kind: opportunity.KindOther}

	list := opportunity.NewList(with, without)
	Rank(list, profile)

	if with.Score != without.Score {
		t.Fatalf("expected a score tie, got %.2f vs %.2f", with.Score, without.Score)
	}
	if list.Items[0].ID != "without" {
		t.Fatalf("missing deadline must sort as far-future on ties: %v", listIDs(list))
	}
}

func listIDs(list *opportunity.List) []string {
	out := make([]string, 0, list.Len())
	for _, op := range list.Items {
		out = append(out, op.ID)
	}
	return out
}

func indexOf(list *opportunity.List, id string) int {
	for i, op := range list.Items {
		if op.ID == id {
			return i
		}
	}
	return -1
}
