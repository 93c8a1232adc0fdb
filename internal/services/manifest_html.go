package services

import (
	"errors"
	"regexp"
	"route-reconciliation-service/internal/domain"
	"strings"

	"golang.org/x/net/html"
)

// ErrNoManifestRoutes is returned when a pasted page names no route at all.
var ErrNoManifestRoutes = errors.New("parse manifest html: no routeId found")

var (
	routeIDPattern  = regexp.MustCompile(`"routeId":(\d+)`)
	clusterPattern  = regexp.MustCompile(`"cluster":"([^"]+)"`)
	facilityPattern = regexp.MustCompile(`"destinationFacilityId":"([^"]+)","name":"([^"]+)"`)

	// A shipment id followed, lazily, by the receiver it ships to.
	shipmentPattern = regexp.MustCompile(`"id":(4\d{10})[\s\S]*?"receiver_id":"([^"]+)"`)
)

// ParseManifestHTML extracts route manifests from a carrier's route page.
//
// The page embeds route data as JSON inside markup. Its text is split into one
// block per "routeId" occurrence; each block yields the route id, cluster,
// destination facility and the shipment ids it carries. Shipments whose
// receiver id contains an underscore are not deliveries and are skipped, as
// are blocks with no shipments. The same route may appear in several blocks;
// ImportManifests merges them.
func ParseManifestHTML(raw string) ([]Manifest, error) {
	text := htmlText(raw)

	starts := routeIDPattern.FindAllStringIndex(text, -1)
	if len(starts) == 0 {
		return nil, ErrNoManifestRoutes
	}

	manifests := make([]Manifest, 0, len(starts))
	for i, loc := range starts {
		end := len(text)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		block := text[loc[0]:end]

		m, ok := parseManifestBlock(block)
		if !ok {
			continue
		}
		manifests = append(manifests, m)
	}

	return manifests, nil
}

func parseManifestBlock(block string) (Manifest, bool) {
	routeMatch := routeIDPattern.FindStringSubmatch(block)
	if routeMatch == nil {
		return Manifest{}, false
	}

	m := Manifest{RouteID: routeMatch[1]}

	if c := clusterPattern.FindStringSubmatch(block); c != nil {
		m.Meta.ClusterLabel = c[1]
	}
	if f := facilityPattern.FindStringSubmatch(block); f != nil {
		m.Meta.DestinationID = f[1]
		m.Meta.DestinationName = f[2]
	}

	seen := make(map[domain.Identifier]struct{})
	for _, s := range shipmentPattern.FindAllStringSubmatch(block, -1) {
		if strings.Contains(s[2], "_") {
			continue
		}
		id := domain.Identifier(s[1])
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		m.IDs = append(m.IDs, id)
	}

	return m, len(m.IDs) > 0
}

// htmlText concatenates every text node, script bodies included, separated by
// spaces so tags never glue two values together.
func htmlText(raw string) string {
	z := html.NewTokenizer(strings.NewReader(raw))

	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
			b.WriteByte(' ')
		}
	}
}
