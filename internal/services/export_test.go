package services

import (
	"route-reconciliation-service/internal/domain"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestExportRoute(t *testing.T) {
	set := domain.NewRouteSet()
	r := ImportIdentifiers(set.GetOrCreate("R1"), ids("A", "B", "C", "D"), ManifestMeta{})

	Record(set, "R1", "C", t0)
	Record(set, "R1", "Z", t0.Add(time.Second))
	Record(set, "R1", "A", t0.Add(2*time.Second))
	Record(set, "R1", "Y", t0.Add(2*time.Second))
	Record(set, "R1", "Z", t0.Add(3*time.Second))
	Record(set, "R1", "Z", t0.Add(4*time.Second))
	Record(set, "R1", "C", t0.Add(5*time.Second))

	got := ExportRoute(r)
	want := []ExportRow{
		{Identifier: "B", Status: StatusMissing},
		{Identifier: "D", Status: StatusMissing},
		{Identifier: "A", Status: StatusConfirmed, LastSeenAt: t0.Add(2 * time.Second)},
		{Identifier: "Y", Status: StatusOutOfRoute, LastSeenAt: t0.Add(2 * time.Second)},
		{Identifier: "Z", Status: StatusDuplicate, DuplicateExtra: 2, LastSeenAt: t0.Add(4 * time.Second)},
		{Identifier: "C", Status: StatusConfirmed, DuplicateExtra: 1, LastSeenAt: t0.Add(5 * time.Second)},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("export rows mismatch (-want +got):\n%s", diff)
	}
}

func TestExportRouteEmpty(t *testing.T) {
	if got := ExportRoute(domain.NewRoute("R1")); len(got) != 0 {
		t.Fatalf("rows = %v, want none", got)
	}
}

func TestConfirmedColumns(t *testing.T) {
	set := domain.NewRouteSet()
	ImportIdentifiers(set.GetOrCreate("R2"), ids("X", "Y", "W"), ManifestMeta{ClusterLabel: "B"})
	ImportIdentifiers(set.GetOrCreate("R1"), ids("A"), ManifestMeta{})
	set.GetOrCreate("R0")

	Record(set, "R2", "Y", t0)
	Record(set, "R2", "X", t0.Add(time.Second))
	Record(set, "R2", "W", t0.Add(time.Second))
	Record(set, "R1", "A", t0)

	got := ConfirmedColumns(set)
	want := []RouteColumn{
		{RouteID: "R0", Header: "R0", IDs: []domain.Identifier{}},
		{RouteID: "R1", Header: "R1", IDs: []domain.Identifier{"A"}},
		{RouteID: "R2", Header: "R2-B", IDs: []domain.Identifier{"Y", "W", "X"}},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("columns mismatch (-want +got):\n%s", diff)
	}
}
