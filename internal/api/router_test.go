package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"route-reconciliation-service/internal/adapters/repositories"
	"route-reconciliation-service/internal/api/dto"
	"route-reconciliation-service/internal/session"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 2, 7, 45, 0, 0, time.UTC)

func newTestServer(t *testing.T) (*httptest.Server, *session.Manager) {
	t.Helper()

	manager := session.NewManager(repositories.NewMemoryRouteSetStore(), session.Options{
		Now: func() time.Time { return testNow },
	})
	srv := httptest.NewServer(NewRouter(manager, RouterOptions{
		Operation: "hub",
		Now:       func() time.Time { return testNow },
	}))
	t.Cleanup(srv.Close)
	return srv, manager
}

func do(t *testing.T, method, url, contentType string, body string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(res.Body).Decode(&v))
	return v
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	res := do(t, http.MethodGet, srv.URL+"/health", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NotEmpty(t, res.Header.Get("X-Request-ID"))
	require.Equal(t, map[string]string{"status": "ok"}, decode[map[string]string](t, res))

	res = do(t, http.MethodPost, srv.URL+"/health", "", "")
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "station-4-scan-17")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, "station-4-scan-17", res.Header.Get("X-Request-ID"))
}

func TestScanWorkflow(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/scopes/hub:2026-03-02"

	res := do(t, http.MethodPut, base+"/routes/R1/manifest", "application/json",
		`{"ids":["40000000001"],"text":"40000000002, 40000000003","cluster_label":"C1"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	sum := decode[dto.RouteSummaryResponse](t, res)
	require.Equal(t, 3, sum.ExpectedTotal)
	require.Equal(t, "C1", sum.ClusterLabel)

	res = do(t, http.MethodPut, base+"/routes/R2/manifest", "application/json", `{"ids":["40000000009"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = do(t, http.MethodPost, base+"/routes/R1/scans", "application/json", `{"code":"]C140000000001"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	scan := decode[dto.ScanResponse](t, res)
	require.Equal(t, "confirmed", scan.Kind)
	require.Equal(t, "40000000001", scan.ID)
	require.False(t, scan.NeedsAttention)
	require.NotNil(t, scan.Route)
	require.Equal(t, 33, scan.Route.ProgressPercent)

	res = do(t, http.MethodPost, base+"/routes/R1/scans", "application/json", `{"code":"40000000009"}`)
	scan = decode[dto.ScanResponse](t, res)
	require.Equal(t, "out_of_route", scan.Kind)
	require.True(t, scan.NeedsAttention)
	require.NotNil(t, scan.BelongsTo)
	require.Equal(t, "R2", scan.BelongsTo.RouteID)

	res = do(t, http.MethodPost, base+"/routes/R1/scans", "application/json", `{"code":"no digits"}`)
	scan = decode[dto.ScanResponse](t, res)
	require.Equal(t, "skipped", scan.Kind)
	require.Equal(t, "invalid_identifier", scan.Reason)

	res = do(t, http.MethodGet, base+"/routes", "", "")
	list := decode[dto.ListRoutesResponse](t, res)
	require.Equal(t, "hub:2026-03-02", list.Scope)
	require.Len(t, list.Routes, 2)
	require.Equal(t, "R1", list.Routes[0].RouteID)

	res = do(t, http.MethodGet, base+"/routes/R1", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	detail := decode[dto.RouteDetailResponse](t, res)
	require.Equal(t, []string{"40000000001"}, detail.Confirmed)
	require.Equal(t, []string{"40000000002", "40000000003"}, detail.Missing)
	require.Len(t, detail.OutOfRoute, 1)
	require.Equal(t, "R2", detail.OutOfRoute[0].BelongsTo.RouteID)

	res = do(t, http.MethodGet, base+"/routes/R1/export.csv", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, `attachment; filename="route_R1.csv"`, res.Header.Get("Content-Disposition"))
	var csvBody bytes.Buffer
	_, err := csvBody.ReadFrom(res.Body)
	require.NoError(t, err)
	require.Equal(t, "ID,STATUS,DUPLICATE_X\r\n"+
		"40000000002,MISSING,\r\n"+
		"40000000003,MISSING,\r\n"+
		"40000000001,CONFIRMED,\r\n"+
		"40000000009,OUT_OF_ROUTE,\r\n", csvBody.String())

	res = do(t, http.MethodGet, base+"/export.xlsx", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, xlsxContentTypeForTest, res.Header.Get("Content-Type"))

	res = do(t, http.MethodGet, base+"/sync", "", "")
	st := decode[dto.SyncStatusResponse](t, res)
	require.True(t, st.Pending)
	require.Nil(t, st.LastSavedAt)

	res = do(t, http.MethodDelete, base+"/routes/R2", "", "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	res = do(t, http.MethodDelete, base+"/routes/R2", "", "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = do(t, http.MethodDelete, base+"/routes", "", "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)
	res = do(t, http.MethodGet, base+"/routes/R1", "", "")
	require.Equal(t, http.StatusNotFound, res.StatusCode)
}

const xlsxContentTypeForTest = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func TestTodayScope(t *testing.T) {
	srv, manager := newTestServer(t)

	res := do(t, http.MethodGet, srv.URL+"/scopes/today/routes", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, "hub:2026-03-02", decode[dto.ListRoutesResponse](t, res).Scope)
	require.Equal(t, []string{"hub:2026-03-02"}, manager.Scopes())
}

func TestClearScopeDeletesStoredCopy(t *testing.T) {
	store := repositories.NewMemoryRouteSetStore()
	manager := session.NewManager(store, session.Options{
		Now: func() time.Time { return testNow },
	})
	srv := httptest.NewServer(NewRouter(manager, RouterOptions{Operation: "hub"}))
	t.Cleanup(srv.Close)
	base := srv.URL + "/scopes/hub:2026-03-02"

	res := do(t, http.MethodPut, base+"/routes/R1/manifest", "application/json", `{"ids":["40000000001"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.NoError(t, manager.Flush(context.Background()))

	stored, err := store.LoadRouteSet(context.Background(), "hub:2026-03-02")
	require.NoError(t, err)
	require.Equal(t, 1, stored.Len())

	res = do(t, http.MethodDelete, base+"/routes", "", "")
	require.Equal(t, http.StatusNoContent, res.StatusCode)

	stored, err = store.LoadRouteSet(context.Background(), "hub:2026-03-02")
	require.NoError(t, err)
	require.Zero(t, stored.Len())
}

func TestManifestValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/scopes/s"

	res := do(t, http.MethodPut, base+"/routes/R1/manifest", "application/json", `{"ids":[]}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = do(t, http.MethodPut, base+"/routes/R1/manifest", "application/json", `{"idz":["1"]}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)

	res = do(t, http.MethodPut, base+"/routes/R1/manifest", "application/json", `{"ids":["1"]}{}`)
	require.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestImportHTML(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/scopes/s"

	res := do(t, http.MethodPost, base+"/manifests/html", "text/html", "<p>empty</p>")
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	page := `<script>{"routeId":5,"cluster":"K","shipments":[{"id":40000000005,"receiver_id":"77"}]}</script>`
	res = do(t, http.MethodPost, base+"/manifests/html", "text/html", page)
	require.Equal(t, http.StatusOK, res.StatusCode)
	imp := decode[dto.ImportResponse](t, res)
	require.Equal(t, 1, imp.Imported)
	require.Len(t, imp.Routes, 1)
	require.Equal(t, "5", imp.Routes[0].RouteID)
}

func TestScanCSVEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)
	base := srv.URL + "/scopes/s"

	res := do(t, http.MethodPost, base+"/routes/R1/scans/csv", "text/csv", "id\n40000000001\n")
	require.Equal(t, http.StatusNotFound, res.StatusCode)

	res = do(t, http.MethodPut, base+"/routes/R1/manifest", "application/json", `{"ids":["40000000001"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = do(t, http.MethodPost, base+"/routes/R1/scans/csv", "text/csv", "when,code\n")
	require.Equal(t, http.StatusUnprocessableEntity, res.StatusCode)

	res = do(t, http.MethodPost, base+"/routes/R1/scans/csv", "text/csv", "time,Text\n1,40000000001\n2,40000000001\n")
	require.Equal(t, http.StatusOK, res.StatusCode)
	tally := decode[dto.ScanTallyResponse](t, res)
	require.Equal(t, 2, tally.Rows)
	require.Equal(t, 1, tally.Confirmed)
	require.Equal(t, 1, tally.Duplicate)
}

func TestSnapshotAndMerge(t *testing.T) {
	srv, _ := newTestServer(t)

	res := do(t, http.MethodPut, srv.URL+"/scopes/a/routes/R1/manifest", "application/json", `{"ids":["40000000001"]}`)
	require.Equal(t, http.StatusOK, res.StatusCode)
	res = do(t, http.MethodPost, srv.URL+"/scopes/a/routes/R1/scans", "application/json", `{"code":"40000000001"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = do(t, http.MethodGet, srv.URL+"/scopes/a/snapshot", "", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var snap bytes.Buffer
	_, err := snap.ReadFrom(res.Body)
	require.NoError(t, err)

	res = do(t, http.MethodPost, srv.URL+"/scopes/b/merge", "application/json", snap.String())
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, 1, decode[dto.MergeResponse](t, res).Routes)

	res = do(t, http.MethodGet, srv.URL+"/scopes/b/routes/R1", "", "")
	detail := decode[dto.RouteDetailResponse](t, res)
	require.Equal(t, []string{"40000000001"}, detail.Confirmed)
}
