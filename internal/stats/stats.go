// Package stats computes summary statistics over collections of event
// records, matching the aggregates the Postgres store produces in SQL.
package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"nbpulse/internal/event"
)

// Summary describes a set of event records.
type Summary struct {
	Total      int
	ByEvent    map[string]int
	Identities int
	Notebooks  int
	First      time.Time
	Last       time.Time
}

// Compute builds a Summary from records in memory. Notebook counting uses the
// notebook_name property; the "unknown" placeholder counts as one notebook.
func Compute(records []*event.Record) Summary {
	s := Summary{ByEvent: make(map[string]int)}
	identities := make(map[string]struct{})
	notebooks := make(map[string]struct{})
	for _, rec := range records {
		s.Total++
		s.ByEvent[string(rec.Name)]++
		if rec.Identity != "" {
			identities[rec.Identity] = struct{}{}
		}
		if nb := rec.Properties["notebook_name"]; nb != "" {
			notebooks[nb] = struct{}{}
		}
		if t := rec.CreatedAt; !t.IsZero() {
			if s.First.IsZero() || t.Before(s.First) {
				s.First = t
			}
			if t.After(s.Last) {
				s.Last = t
			}
		}
	}
	s.Identities = len(identities)
	s.Notebooks = len(notebooks)
	return s
}

// String renders the summary as the block logstats prints.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "records:    %d\n", s.Total)
	fmt.Fprintf(&b, "identities: %d\n", s.Identities)
	fmt.Fprintf(&b, "notebooks:  %d\n", s.Notebooks)
	if !s.First.IsZero() {
		fmt.Fprintf(&b, "first:      %s\n", s.First.Format(time.RFC3339))
		fmt.Fprintf(&b, "last:       %s\n", s.Last.Format(time.RFC3339))
	}
	names := make([]string, 0, len(s.ByEvent))
	for name := range s.ByEvent {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, "  %-20s %d\n", name, s.ByEvent[name])
	}
	return b.String()
}
