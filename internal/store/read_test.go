package store

import (
	"context"
	"testing"

	"github.com/roach88/traitkit/internal/ir"
)

func TestLookupEvaluation_Missing(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.LookupEvaluation(context.Background(), "nope", "cat")
	if err != nil {
		t.Fatalf("LookupEvaluation() failed: %v", err)
	}
	if ok {
		t.Error("found an evaluation that was never written")
	}
}

func TestLookupEvaluation_RoundTrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	outcomes := []ir.Outcome{
		ir.BoolOutcome(false),
		ir.TypeOutcome(ir.MustParse("int32 const&")),
		ir.SizeOutcome(24),
		ir.ErrorOutcome("NEGATIVE_DEPTH", "depth -1 is negative"),
	}
	for i, o := range outcomes {
		id := string(rune('a' + i))
		if _, _, err := s.WriteEvaluation(ctx, testEvaluation(id, "cat", o)); err != nil {
			t.Fatal(err)
		}
		ev, ok, err := s.LookupEvaluation(ctx, id, "cat")
		if err != nil || !ok {
			t.Fatalf("LookupEvaluation(%s) = %v, %v", id, ok, err)
		}
		if ev.Outcome != o {
			t.Errorf("outcome = %+v, want %+v", ev.Outcome, o)
		}
		if ev.Seq != int64(i+1) || ev.SessionID != "session-1" || ev.Query != "test INT int32" {
			t.Errorf("evaluation = %+v", ev)
		}
	}
}

func TestReadEvaluations(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	writes := []ir.Evaluation{
		{ID: "q1", CatalogHash: "cat-a", SessionID: "s1", Query: "q1", Outcome: ir.BoolOutcome(true)},
		{ID: "q2", CatalogHash: "cat-a", SessionID: "s2", Query: "q2", Outcome: ir.BoolOutcome(true)},
		{ID: "q3", CatalogHash: "cat-b", SessionID: "s2", Query: "q3", Outcome: ir.BoolOutcome(true)},
	}
	for _, ev := range writes {
		if _, _, err := s.WriteEvaluation(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name   string
		filter EvaluationFilter
		want   []string
	}{
		{name: "all", want: []string{"q1", "q2", "q3"}},
		{name: "session", filter: EvaluationFilter{SessionID: "s2"}, want: []string{"q2", "q3"}},
		{name: "catalog", filter: EvaluationFilter{CatalogHash: "cat-a"}, want: []string{"q1", "q2"}},
		{name: "both", filter: EvaluationFilter{SessionID: "s2", CatalogHash: "cat-b"}, want: []string{"q3"}},
		{name: "limit", filter: EvaluationFilter{Limit: 2}, want: []string{"q1", "q2"}},
		{name: "none", filter: EvaluationFilter{SessionID: "s9"}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evals, err := s.ReadEvaluations(ctx, tt.filter)
			if err != nil {
				t.Fatal(err)
			}
			if evals == nil {
				t.Fatal("ReadEvaluations() returned nil, want empty slice")
			}
			got := make([]string, len(evals))
			for i, ev := range evals {
				got[i] = ev.ID
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("got %v, want %v", got, tt.want)
					break
				}
			}
		})
	}

	n, err := s.CountEvaluations(ctx)
	if err != nil || n != 3 {
		t.Errorf("CountEvaluations() = %d, %v", n, err)
	}
}

func TestReadSessions_Empty(t *testing.T) {
	s := createTestStore(t)

	sessions, err := s.ReadSessions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if sessions == nil || len(sessions) != 0 {
		t.Errorf("ReadSessions() = %#v, want empty slice", sessions)
	}
}

func TestUnmarshalOutcome_Rejects(t *testing.T) {
	for _, data := range []string{`not json`, `{"kind":"maybe"}`, `{}`} {
		if _, err := unmarshalOutcome(data); err == nil {
			t.Errorf("unmarshalOutcome(%q) accepted bad data", data)
		}
	}
}

func TestMarshalOutcome_Canonical(t *testing.T) {
	got, err := marshalOutcome(ir.ErrorOutcome("NO_SIZE", "void has no size"))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"code":"NO_SIZE","kind":"error","message":"void has no size"}`
	if got != want {
		t.Errorf("marshalOutcome() = %s, want %s", got, want)
	}
}
