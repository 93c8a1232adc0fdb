package services

import (
	"errors"
	"route-reconciliation-service/internal/domain"
	"testing"
)

const routePage = `<html><body>
<div class="route">ROUTE</div>
<script>window.__STATE__ = {"routes":[
{"routeId":918,"cluster":"C7","facility":{"destinationFacilityId":"XPT2","name":"North Hub"},
 "shipments":[{"id":41111111111,"receiver_id":"R-1"},{"id":42222222222,"receiver_id":"R_2"},{"id":43333333333,"receiver_id":"R-3"}]},
{"routeId":919,"shipments":[]},
{"routeId":920,"cluster":"C8","shipments":[{"id":44444444444,"receiver_id":"R-4"},{"id":44444444444,"receiver_id":"R-4"}]}
]};</script>
</body></html>`

func TestParseManifestHTML(t *testing.T) {
	got, err := ParseManifestHTML(routePage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("manifests = %d, want 2: %+v", len(got), got)
	}

	first := got[0]
	if first.RouteID != "918" {
		t.Fatalf("route id = %q, want 918", first.RouteID)
	}
	if first.Meta.ClusterLabel != "C7" || first.Meta.DestinationID != "XPT2" || first.Meta.DestinationName != "North Hub" {
		t.Fatalf("meta = %+v", first.Meta)
	}
	want := []domain.Identifier{"41111111111", "43333333333"}
	if len(first.IDs) != len(want) || first.IDs[0] != want[0] || first.IDs[1] != want[1] {
		t.Fatalf("ids = %v, want %v", first.IDs, want)
	}

	second := got[1]
	if second.RouteID != "920" || second.Meta.ClusterLabel != "C8" {
		t.Fatalf("second manifest = %+v", second)
	}
	if len(second.IDs) != 1 || second.IDs[0] != "44444444444" {
		t.Fatalf("second ids = %v", second.IDs)
	}
}

func TestParseManifestHTMLWithoutRoutes(t *testing.T) {
	_, err := ParseManifestHTML("<p>nothing here</p>")
	if !errors.Is(err, ErrNoManifestRoutes) {
		t.Fatalf("err = %v, want ErrNoManifestRoutes", err)
	}
}

func TestParseManifestHTMLImportsIntoSet(t *testing.T) {
	manifests, err := ParseManifestHTML(routePage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	set := domain.NewRouteSet()
	if n := ImportManifests(set, manifests); n != 2 {
		t.Fatalf("imported = %d, want 2", n)
	}

	r, ok := set.Get("918")
	if !ok {
		t.Fatalf("route 918 not created")
	}
	assertSet(t, "missing", r.Missing, "41111111111", "43333333333")
	if r.ExpectedCountAtImport != 2 {
		t.Fatalf("expected count at import = %d, want 2", r.ExpectedCountAtImport)
	}
}
