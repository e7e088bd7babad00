package gemini

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/kec-hub/opportunities/internal/opportunity"
)

type fakeGenerator struct {
	response string
	err      error
}

func (f *fakeGenerator) GenerateContent(context.Context, string) (string, error) {
	return f.response, f.err
}

var testProfile = &opportunity.Profile{
	Department: "Computer Science",
	Skills:     []string{"python"},
}

func TestExpanderExpand(t *testing.T) {
	gen := &fakeGenerator{
		response: "Here are queries:\n{\"queries\": [\"python intern india\", \"Python Intern India\", \"web dev internship\"]}",
	}
	e := NewExpander(gen, 6, zap.NewNop())

	got, err := e.Expand(context.Background(), testProfile)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"python intern india", "web dev internship"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExpanderGeneratorError(t *testing.T) {
	e := NewExpander(&fakeGenerator{err: errors.New("quota")}, 6, zap.NewNop())
	if _, err := e.Expand(context.Background(), testProfile); err == nil {
		t.Fatal("expected an error")
	}
}

func TestExpanderMalformedResponse(t *testing.T) {
	e := NewExpander(&fakeGenerator{response: "not json at all"}, 6, zap.NewNop())
	if _, err := e.Expand(context.Background(), testProfile); err == nil {
		t.Fatal("expected an error")
	}
}
