package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UnownHash/ParcelFinder/index"
	"github.com/UnownHash/ParcelFinder/index_manager"
	"github.com/UnownHash/ParcelFinder/parcels"
	"github.com/UnownHash/ParcelFinder/stats_collector"
)

type staticLoader struct {
	expedientes []*parcels.Expediente
}

func (*staticLoader) LoaderName() string { return "static" }

func (l *staticLoader) LoadExpedientes(context.Context) ([]*parcels.Expediente, error) {
	return l.expedientes, nil
}

func testExpedientes() []*parcels.Expediente {
	return []*parcels.Expediente{
		{
			Id:   "EXP-1",
			Name: "Huerta norte",
			Parcels: []*parcels.Parcel{
				{
					Id:           "A",
					CadastralRef: "46001A00100001",
					Attributes:   map[string]any{"crop": "citrus"},
					GeometryRaw:  "-0.50,39.00 -0.49,39.00 -0.49,39.01 -0.50,39.01",
				},
				{
					Id:          "B",
					GeometryRaw: `{"type":"Polygon","coordinates":[[[-0.48,39.00],[-0.47,39.00],[-0.47,39.01],[-0.48,39.01],[-0.48,39.00]]]}`,
				},
				{
					Id:          "broken",
					GeometryRaw: `{"type":"Point","coordinates":[-0.5,39.0]}`,
				},
			},
		},
	}
}

func newTestServer(t *testing.T, reloadFn func() error) (*HTTPServer, *index_manager.IndexManager) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	idx, err := index.NewParcelIndex(logger, index.GetDefaultConfig())
	require.NoError(t, err)
	t.Cleanup(idx.Close)

	mgr, err := index_manager.NewIndexManager(index_manager.IndexManagerConfig{
		Logger:       logger,
		ParcelLoader: &staticLoader{testExpedientes()},
		ParcelIndex:  idx,
	}, index_manager.GetDefaultConfig())
	require.NoError(t, err)

	srv, err := NewHTTPServer(logger, mgr, stats_collector.NewNoopStatsCollector(), reloadFn)
	require.NoError(t, err)
	return srv, mgr
}

func doRequest(t *testing.T, srv *HTTPServer, method, path string, out any) int {
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestMatchBeforeLoad(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var resp map[string]any
	code := doRequest(t, srv, http.MethodGet, "/api/parcels/match?lat=39.005&lng=-0.495", &resp)
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, resp, "parcel")
	assert.Nil(t, resp["parcel"])
}

func TestMatch(t *testing.T) {
	srv, mgr := newTestServer(t, nil)
	require.NoError(t, mgr.Reload(context.Background()))

	var resp matchParcelResponse
	code := doRequest(t, srv, http.MethodGet, "/api/parcels/match?lat=39.005&lng=-0.495", &resp)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Parcel)
	assert.Equal(t, "EXP-1", resp.Parcel.ExpedienteId)
	assert.Equal(t, "A", resp.Parcel.ParcelId)
	assert.Equal(t, "46001A00100001", resp.Parcel.CadastralRef)
	assert.Equal(t, "citrus", resp.Parcel.Attributes["crop"])

	resp = matchParcelResponse{}
	code = doRequest(t, srv, http.MethodGet, "/api/parcels/match?lat=39.015&lng=-0.485", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Nil(t, resp.Parcel)
}

func TestMatchBadParams(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	for _, path := range []string{
		"/api/parcels/match",
		"/api/parcels/match?lat=39.0",
		"/api/parcels/match?lat=abc&lng=-0.5",
		"/api/parcels/match?lat=91&lng=-0.5",
		"/api/parcels/match?lat=39&lng=NaN",
		"/api/parcels/candidates?lat=39",
	} {
		var resp APIErrorResponse
		code := doRequest(t, srv, http.MethodGet, path, &resp)
		assert.Equal(t, http.StatusBadRequest, code, path)
		assert.NotEmpty(t, resp.Error, path)
	}
}

func TestCandidates(t *testing.T) {
	srv, mgr := newTestServer(t, nil)
	require.NoError(t, mgr.Reload(context.Background()))

	var resp getCandidatesResponse
	code := doRequest(t, srv, http.MethodGet, "/api/parcels/candidates?lat=39.005&lng=-0.475", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []parcels.Ref{{ExpedienteId: "EXP-1", ParcelId: "B"}}, resp.Candidates)

	resp = getCandidatesResponse{}
	doRequest(t, srv, http.MethodGet, "/api/parcels/candidates?lat=10&lng=10", &resp)
	assert.NotNil(t, resp.Candidates)
	assert.Empty(t, resp.Candidates)
}

func TestGetParcel(t *testing.T) {
	srv, mgr := newTestServer(t, nil)
	require.NoError(t, mgr.Reload(context.Background()))

	var resp getParcelResponse
	code := doRequest(t, srv, http.MethodGet, "/api/expedientes/EXP-1/parcels/B", &resp)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Parcel)

	detail := resp.Parcel
	assert.True(t, detail.Indexed)
	assert.Equal(t, "Polygon", detail.Kind)
	require.NotNil(t, detail.Bounds)
	assert.InDelta(t, 39.00, detail.Bounds.MinLat, 1e-9)
	assert.InDelta(t, -0.47, detail.Bounds.MaxLng, 1e-9)
	assert.Greater(t, detail.AreaM2, 900_000.0)
	require.NotNil(t, detail.LabelPoint)
	assert.InDelta(t, 39.005, detail.LabelPoint.Lat, 1e-6)
	assert.InDelta(t, -0.475, detail.LabelPoint.Lng, 1e-6)
	require.Len(t, detail.Paths, 1)
	assert.Equal(t, [2]float64{39.00, -0.48}, detail.Paths[0][0])
	assert.NotNil(t, detail.Geometry)

	// present in the collection but not indexed.
	resp = getParcelResponse{}
	code = doRequest(t, srv, http.MethodGet, "/api/expedientes/EXP-1/parcels/broken", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, resp.Parcel.Indexed)
	assert.Nil(t, resp.Parcel.Bounds)

	code = doRequest(t, srv, http.MethodGet, "/api/expedientes/EXP-1/parcels/nope", nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestGetIndex(t *testing.T) {
	srv, mgr := newTestServer(t, nil)

	var resp getIndexResponse
	doRequest(t, srv, http.MethodGet, "/api/index", &resp)
	assert.False(t, resp.Index.Loaded)
	assert.NotNil(t, resp.Index.Skipped)

	require.NoError(t, mgr.Reload(context.Background()))

	resp = getIndexResponse{}
	code := doRequest(t, srv, http.MethodGet, "/api/index", &resp)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Index.Loaded)
	assert.NotEmpty(t, resp.Index.SnapshotId)
	assert.Equal(t, 2, resp.Index.NumIndexed)
	assert.Equal(t, 1, resp.Index.NumSkipped)
	require.Len(t, resp.Index.Skipped, 1)
	assert.Equal(t, "broken", resp.Index.Skipped[0].Ref.ParcelId)
	assert.Equal(t, "unsupported_type", resp.Index.Skipped[0].Kind)
}

func TestRebuildIndex(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	code := doRequest(t, srv, http.MethodPut, "/api/index/rebuild", nil)
	assert.Equal(t, http.StatusAccepted, code)
}

func TestReload(t *testing.T) {
	calls := 0
	srv, _ := newTestServer(t, func() error {
		calls++
		if calls > 1 {
			return errors.New("bad config")
		}
		return nil
	})

	assert.Equal(t, http.StatusOK, doRequest(t, srv, http.MethodPut, "/api/config/reload", nil))
	assert.Equal(t, http.StatusInternalServerError, doRequest(t, srv, http.MethodGet, "/api/config/reload", nil))
	assert.Equal(t, 2, calls)

	noReload, _ := newTestServer(t, nil)
	assert.Equal(t, http.StatusNotImplemented, doRequest(t, noReload, http.MethodPut, "/api/config/reload", nil))
}
