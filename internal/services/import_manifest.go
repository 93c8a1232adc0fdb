package services

import (
	"route-reconciliation-service/internal/domain"
	"strings"
	"unicode"
)

// ManifestMeta carries the descriptive fields of a route.
// Empty values never blank out what a route already has.
type ManifestMeta struct {
	ClusterLabel    string
	DestinationID   string
	DestinationName string
}

// Manifest is one route's worth of expected identifiers.
type Manifest struct {
	RouteID string
	Meta    ManifestMeta
	IDs     []domain.Identifier
}

// ImportIdentifiers merges newIDs into the route's manifest.
//
// Identifiers already confirmed stay confirmed; new ones start out missing.
// The progress denominator is reset to the merged manifest size. Importing
// the same ids again changes nothing.
func ImportIdentifiers(route *domain.Route, newIDs []domain.Identifier, meta ManifestMeta) *domain.Route {
	if route == nil {
		return nil
	}

	for _, id := range newIDs {
		if id == "" || route.Expected.Has(id) {
			continue
		}
		route.Expected.Add(id)
		if !route.Confirmed.Has(id) {
			route.Missing.Add(id)
		}
	}

	route.ExpectedCountAtImport = route.Expected.Len()

	if v := strings.TrimSpace(meta.ClusterLabel); v != "" {
		route.ClusterLabel = v
	}
	if v := strings.TrimSpace(meta.DestinationID); v != "" {
		route.DestinationID = v
	}
	if v := strings.TrimSpace(meta.DestinationName); v != "" {
		route.DestinationName = v
	}

	return route
}

// ImportManifests creates or extends a route for every manifest that names a
// route and carries at least one identifier. It returns how many manifests
// were applied.
func ImportManifests(set *domain.RouteSet, manifests []Manifest) int {
	imported := 0
	for _, m := range manifests {
		routeID := strings.TrimSpace(m.RouteID)
		if routeID == "" || len(m.IDs) == 0 {
			continue
		}

		ImportIdentifiers(set.GetOrCreate(routeID), m.IDs, m.Meta)
		imported++
	}
	return imported
}

// ParseManualIdentifiers splits operator-typed text on whitespace, commas and
// semicolons. Tokens are kept verbatim and deduplicated in input order.
func ParseManualIdentifiers(text string) []domain.Identifier {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ';' || unicode.IsSpace(r)
	})

	seen := make(map[domain.Identifier]struct{}, len(fields))
	out := make([]domain.Identifier, 0, len(fields))
	for _, f := range fields {
		id := domain.Identifier(f)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
