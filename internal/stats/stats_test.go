package stats

import (
	"strings"
	"testing"
	"time"

	"nbpulse/internal/event"
)

func rec(id string, name event.Kind, notebook string, at time.Time) *event.Record {
	return &event.Record{
		Identity:   id,
		Name:       name,
		Properties: map[string]string{"notebook_name": notebook},
		CreatedAt:  at,
	}
}

func TestCompute(t *testing.T) {
	t0 := time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)
	records := []*event.Record{
		rec("id-a", event.KindNotebookStarted, "a.ipynb", t0),
		rec("id-a", event.KindPreRunCell, "a.ipynb", t0.Add(time.Minute)),
		rec("id-a", event.KindPostRunCell, "a.ipynb", t0.Add(2*time.Minute)),
		rec("id-b", event.KindNotebookStarted, "b.ipynb", t0.Add(time.Hour)),
		rec("id-b", event.KindPreRunCell, "b.ipynb", t0.Add(time.Hour+time.Minute)),
	}

	s := Compute(records)

	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.Identities != 2 {
		t.Errorf("Identities = %d, want 2", s.Identities)
	}
	if s.Notebooks != 2 {
		t.Errorf("Notebooks = %d, want 2", s.Notebooks)
	}
	if s.ByEvent["pre_run_cell"] != 2 {
		t.Errorf("ByEvent[pre_run_cell] = %d, want 2", s.ByEvent["pre_run_cell"])
	}
	if !s.First.Equal(t0) {
		t.Errorf("First = %v, want %v", s.First, t0)
	}
	if !s.Last.Equal(t0.Add(time.Hour + time.Minute)) {
		t.Errorf("Last = %v", s.Last)
	}
}

func TestCompute_Empty(t *testing.T) {
	s := Compute(nil)
	if s.Total != 0 || s.Identities != 0 || s.Notebooks != 0 {
		t.Errorf("empty summary = %+v", s)
	}
	if !s.First.IsZero() || !s.Last.IsZero() {
		t.Errorf("timestamps should stay zero: %+v", s)
	}
}

func TestString(t *testing.T) {
	s := Compute([]*event.Record{
		rec("id-a", event.KindPreExecute, "a.ipynb", time.Now().UTC()),
	})
	out := s.String()
	for _, want := range []string{"records:    1", "identities: 1", "pre_execute"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() missing %q:\n%s", want, out)
		}
	}
}
