package services

import (
	"route-reconciliation-service/internal/domain"
	"testing"
	"time"
)

func TestMergeRouteSetsUnionsState(t *testing.T) {
	left := domain.NewRouteSet()
	ImportIdentifiers(left.GetOrCreate("R1"), ids("A", "B", "C"), ManifestMeta{ClusterLabel: "C1"})
	Record(left, "R1", "A", t0)
	Record(left, "R1", "A", t0.Add(time.Second))

	right := left.Clone()
	Record(right, "R1", "B", t0.Add(2*time.Second))
	Record(right, "R1", "A", t0.Add(3*time.Second))
	Record(right, "R1", "A", t0.Add(4*time.Second))
	ImportIdentifiers(right.GetOrCreate("R2"), ids("Z"), ManifestMeta{})

	Record(left, "R1", "Q", t0.Add(5*time.Second))

	merged := MergeRouteSets(left, right)

	r1, _ := merged.Get("R1")
	assertSet(t, "confirmed", r1.Confirmed, "A", "B")
	assertSet(t, "missing", r1.Missing, "C")
	assertSet(t, "outOfRoute", r1.OutOfRoute, "Q")
	if r1.DuplicateCounts["A"] != 4 {
		t.Fatalf("duplicate count A = %d, want 4", r1.DuplicateCounts["A"])
	}
	if !r1.LastSeenAt["A"].Equal(t0.Add(4 * time.Second)) {
		t.Fatalf("last seen A = %v", r1.LastSeenAt["A"])
	}
	if r1.ClusterLabel != "C1" {
		t.Fatalf("cluster = %q, want C1", r1.ClusterLabel)
	}
	if _, ok := merged.Get("R2"); !ok {
		t.Fatalf("route only known to the right side was dropped")
	}

	// Inputs stay untouched.
	l1, _ := left.Get("R1")
	if l1.Confirmed.Has("B") {
		t.Fatalf("merge mutated its base input")
	}

	assertPartition(t, merged)
	assertSingleOwner(t, merged)
}

func TestMergeRouteSetsResolvesDoubleConfirmation(t *testing.T) {
	left := domain.NewRouteSet()
	ImportIdentifiers(left.GetOrCreate("A"), ids("X"), ManifestMeta{})
	ImportIdentifiers(left.GetOrCreate("B"), ids("X"), ManifestMeta{})
	right := left.Clone()

	// Each terminal confirmed X on a different route.
	Record(left, "B", "X", t0.Add(time.Minute))
	Record(right, "A", "X", t0)

	merged := MergeRouteSets(left, right)

	a, _ := merged.Get("A")
	b, _ := merged.Get("B")
	if !a.Confirmed.Has("X") {
		t.Fatalf("earliest confirmation on A was dropped")
	}
	if b.Confirmed.Has("X") || !b.Missing.Has("X") {
		t.Fatalf("B = confirmed %v missing %v, want X back in missing", b.Confirmed.Sorted(), b.Missing.Sorted())
	}

	assertPartition(t, merged)
	assertSingleOwner(t, merged)
}

func TestMergeRouteSetsPurgesResidueOfConfirmedIDs(t *testing.T) {
	left := domain.NewRouteSet()
	ImportIdentifiers(left.GetOrCreate("A"), ids("X"), ManifestMeta{})
	left.GetOrCreate("B")

	// One terminal saw X on the wrong route twice.
	Record(left, "B", "X", t0)
	Record(left, "B", "X", t0.Add(time.Second))

	// The other terminal then confirmed X on A, which purged B.
	right := left.Clone()
	Record(right, "A", "X", t0.Add(2*time.Second))

	for _, tc := range []struct {
		name        string
		base, other *domain.RouteSet
	}{
		{"stale base", left, right},
		{"stale other", right, left},
	} {
		t.Run(tc.name, func(t *testing.T) {
			merged := MergeRouteSets(tc.base, tc.other)

			a, _ := merged.Get("A")
			b, _ := merged.Get("B")
			if !a.Confirmed.Has("X") {
				t.Fatalf("X not confirmed on A")
			}
			if b.OutOfRoute.Has("X") {
				t.Fatalf("merge brought back X as out of route on B")
			}
			if _, ok := b.DuplicateCounts["X"]; ok {
				t.Fatalf("merge brought back duplicate count on B")
			}
			if _, ok := b.LastSeenAt["X"]; ok {
				t.Fatalf("B still remembers X")
			}

			assertPartition(t, merged)
			assertSingleOwner(t, merged)
		})
	}
}
