package services

import (
	"route-reconciliation-service/internal/domain"
	"testing"
)

func TestDescribeRoute(t *testing.T) {
	set := domain.NewRouteSet()
	ImportIdentifiers(set.GetOrCreate("R1"), ids("A", "B"), ManifestMeta{})
	ImportIdentifiers(set.GetOrCreate("R2"), ids("Z"), ManifestMeta{ClusterLabel: "C2"})

	Record(set, "R1", "A", t0)
	Record(set, "R1", "A", t0)
	Record(set, "R1", "Z", t0)
	Record(set, "R1", "Q", t0)

	d, ok := DescribeRoute(set, "R1")
	if !ok {
		t.Fatalf("route R1 not described")
	}

	if d.Summary.Confirmed != 1 || d.Summary.Missing != 1 || d.Summary.ProgressPercent != 50 {
		t.Fatalf("summary = %+v", d.Summary)
	}
	if len(d.Duplicates) != 1 || d.Duplicates[0].Identifier != "A" || d.Duplicates[0].Count != 2 {
		t.Fatalf("duplicates = %+v", d.Duplicates)
	}
	if len(d.OutOfRoute) != 2 {
		t.Fatalf("out of route = %+v", d.OutOfRoute)
	}

	q, z := d.OutOfRoute[0], d.OutOfRoute[1]
	if q.Identifier != "Q" || q.Location != nil {
		t.Fatalf("Q entry = %+v, want no location", q)
	}
	if z.Identifier != "Z" || z.Location == nil || z.Location.RouteID != "R2" || z.Location.ClusterLabel != "C2" {
		t.Fatalf("Z entry = %+v, want belongs to R2", z)
	}

	if _, ok := DescribeRoute(set, "nope"); ok {
		t.Fatalf("unknown route described")
	}
}

func TestSummariesSortedByRouteID(t *testing.T) {
	set := domain.NewRouteSet()
	set.GetOrCreate("b")
	set.GetOrCreate("a")

	got := Summaries(set)
	if len(got) != 2 || got[0].RouteID != "a" || got[1].RouteID != "b" {
		t.Fatalf("summaries = %+v", got)
	}
}
