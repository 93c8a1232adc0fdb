package domain

import "testing"

func routeIDs(rs []*Route) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.RouteID)
	}
	return ids
}

func TestRouteSetKeepsInsertionOrder(t *testing.T) {
	s := NewRouteSet()
	s.GetOrCreate("B")
	s.GetOrCreate("A")
	s.GetOrCreate("C")
	s.GetOrCreate("A")

	got := routeIDs(s.Routes())
	want := []string{"B", "A", "C"}
	if len(got) != len(want) {
		t.Fatalf("routes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("routes = %v, want %v", got, want)
		}
	}

	sorted := routeIDs(s.SortedRoutes())
	if sorted[0] != "A" || sorted[1] != "B" || sorted[2] != "C" {
		t.Fatalf("sorted routes = %v", sorted)
	}
}

func TestRouteSetDeleteAndClear(t *testing.T) {
	s := NewRouteSet()
	s.GetOrCreate("A")
	s.GetOrCreate("B")

	if !s.Delete("A") {
		t.Fatalf("delete A reported missing")
	}
	if s.Delete("A") {
		t.Fatalf("second delete of A reported success")
	}
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	if _, ok := s.Get("A"); ok {
		t.Fatalf("A still present after delete")
	}

	s.Clear()
	if s.Len() != 0 || len(s.Routes()) != 0 {
		t.Fatalf("clear left %d routes", s.Len())
	}
}

func TestRouteSetOwnerPriority(t *testing.T) {
	s := NewRouteSet()
	a := s.GetOrCreate("A")
	b := s.GetOrCreate("B")

	a.Expected.Add("X")
	a.Missing.Add("X")

	owner, ok := s.Owner("X")
	if !ok || owner != "A" {
		t.Fatalf("owner = %q (%v), want A", owner, ok)
	}

	// Confirmation elsewhere outranks manifest membership.
	b.Confirmed.Add("X")
	owner, _ = s.Owner("X")
	if owner != "B" {
		t.Fatalf("owner = %q, want B", owner)
	}

	// Out-of-route residue never makes a route the owner.
	a.OutOfRoute.Add("Y")
	if owner, ok := s.Owner("Y"); ok {
		t.Fatalf("owner of out-of-route id = %q, want none", owner)
	}
}

func TestRouteSetOwnerTieUsesIterationOrder(t *testing.T) {
	s := NewRouteSet()
	for _, id := range []string{"B", "A"} {
		r := s.GetOrCreate(id)
		r.Expected.Add("X")
		r.Missing.Add("X")
	}

	owner, _ := s.Owner("X")
	if owner != "B" {
		t.Fatalf("owner = %q, want B (first inserted)", owner)
	}
}

func TestRouteSetLocate(t *testing.T) {
	s := NewRouteSet()
	a := s.GetOrCreate("A")
	b := s.GetOrCreate("B")
	c := s.GetOrCreate("C")
	b.ClusterLabel = "CL-B"
	c.ClusterLabel = "CL-C"

	a.OutOfRoute.Add("X")
	c.Expected.Add("X")
	c.Missing.Add("X")

	loc, ok := s.Locate("X", "A")
	if !ok {
		t.Fatalf("expected X to be located")
	}
	if loc.Where != PlacementBelongs || loc.RouteID != "C" || loc.ClusterLabel != "CL-C" {
		t.Fatalf("location = %+v", loc)
	}

	b.Confirmed.Add("X")
	loc, _ = s.Locate("X", "A")
	if loc.Where != PlacementConfirmed || loc.RouteID != "B" {
		t.Fatalf("location = %+v, want confirmed on B", loc)
	}

	loc, _ = s.Locate("X", "B")
	if loc.Where != PlacementBelongs || loc.RouteID != "C" {
		t.Fatalf("location excluding B = %+v, want belongs to C", loc)
	}

	if _, ok := s.Locate("nope", ""); ok {
		t.Fatalf("unknown id located")
	}

	d := s.GetOrCreate("D")
	d.OutOfRoute.Add("Q")
	loc, ok = s.Locate("Q", "A")
	if !ok || loc.Where != PlacementOutOfRoute || loc.RouteID != "D" {
		t.Fatalf("location = %+v (%v), want out of route on D", loc, ok)
	}
}

func TestScopeKey(t *testing.T) {
	day := mustDay(t, "2026-03-04")
	if got := ScopeKey("sorting", day); got != "sorting:2026-03-04" {
		t.Fatalf("scope = %q", got)
	}
	if got := ScopeKey("  ", day); got != "default:2026-03-04" {
		t.Fatalf("scope = %q", got)
	}
}
