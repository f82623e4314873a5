package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/quest/internal/registry"
	"github.com/mesh-intelligence/quest/pkg/types"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	reg := registry.New(t.TempDir(), zap.NewNop())
	require.NoError(t, reg.EnsureDefault())

	server, err := NewServer(reg, zap.NewNop(), nil)
	require.NoError(t, err)
	return server
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)
	return rec
}

func TestNewServer(t *testing.T) {
	t.Run("creates server with valid config", func(t *testing.T) {
		reg := registry.New(t.TempDir(), zap.NewNop())
		cfg := &Config{Host: "localhost", Port: 8080}

		server, err := NewServer(reg, zap.NewNop(), cfg)
		require.NoError(t, err)
		assert.NotNil(t, server)
		assert.NotNil(t, server.echo)
		assert.Equal(t, cfg, server.config)
	})

	t.Run("uses defaults when config is nil", func(t *testing.T) {
		reg := registry.New(t.TempDir(), zap.NewNop())

		server, err := NewServer(reg, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 8080, server.config.Port)
	})

	t.Run("returns error when registry is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "registry cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestProjectEndpoints(t *testing.T) {
	t.Run("list includes seeded default", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodGet, "/v1/projects", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ProjectListResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, types.DefaultProjectName, resp.Active)
		assert.Contains(t, resp.Projects, types.DefaultProjectName)
	})

	t.Run("create then fetch", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPost, "/v1/projects", CreateProjectRequest{
			Name:        "Watersheds",
			Description: "river basin studies",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, server, http.MethodGet, "/v1/projects/watersheds", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var project types.Project
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &project))
		assert.Equal(t, "watersheds", project.Name)
		assert.Equal(t, "river basin studies", project.Description)
	})

	t.Run("duplicate create conflicts", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPost, "/v1/projects", CreateProjectRequest{Name: "p1"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, server, http.MethodPost, "/v1/projects", CreateProjectRequest{Name: "P1"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("missing name is bad request", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPost, "/v1/projects", CreateProjectRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown project is not found", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodGet, "/v1/projects/nope", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("activate and read back pointer", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPost, "/v1/projects", CreateProjectRequest{Name: "p1"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, server, http.MethodPut, "/v1/projects/active", ActiveProjectResponse{Name: "p1"})
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, server, http.MethodGet, "/v1/projects/active", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ActiveProjectResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "p1", resp.Name)
	})

	t.Run("activating unknown project is not found", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPut, "/v1/projects/active", ActiveProjectResponse{Name: "nope"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("deleting active falls back to default", func(t *testing.T) {
		server := setupTestServer(t)

		rec := doJSON(t, server, http.MethodPost, "/v1/projects", CreateProjectRequest{Name: "p1", Activate: true})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, server, http.MethodDelete, "/v1/projects/p1", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp DeleteProjectResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{types.DefaultProjectName}, resp.Remaining)

		rec = doJSON(t, server, http.MethodGet, "/v1/projects/active", nil)
		var active ActiveProjectResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &active))
		assert.Equal(t, types.DefaultProjectName, active.Name)
	})
}

func TestCollectionAndFeatureEndpoints(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/v1/collections", types.Collection{Name: "gauges"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/v1/collections", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var collections []types.Collection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &collections))
	require.Len(t, collections, 1)
	assert.Equal(t, "gauges", collections[0].Name)

	rec = doJSON(t, server, http.MethodPost, "/v1/features", types.Feature{
		Collection:  "gauges",
		DisplayName: "Chemung River at Corning",
		GeomType:    types.GeomPoint,
		GeomCoords:  json.RawMessage(`[-77.05, 42.14]`),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var feature types.Feature
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feature))
	assert.Len(t, feature.FeatureID, 32)
	assert.Equal(t, byte('f'), feature.FeatureID[0])

	rec = doJSON(t, server, http.MethodGet, "/v1/features/"+feature.FeatureID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// A feature in an unknown collection is rejected.
	rec = doJSON(t, server, http.MethodPost, "/v1/features", types.Feature{Collection: "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// A body with service URIs creates one feature per URI.
	rec = doJSON(t, server, http.MethodPost, "/v1/features", map[string]any{
		"collection": "gauges",
		"uris":       []string{"svc://usgs-nwis:iv/01529500", "svc://usgs-nwis:iv/01529950"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created CreateFeaturesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Len(t, created.FeatureIDs, 2)

	rec = doJSON(t, server, http.MethodGet, "/v1/features/"+created.FeatureIDs[0], nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var fromURI types.Feature
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fromURI))
	assert.Equal(t, "svc://usgs-nwis:iv/01529500", fromURI.Service)

	// Non-service URIs in a batch are rejected.
	rec = doJSON(t, server, http.MethodPost, "/v1/features", map[string]any{
		"collection": "gauges",
		"uris":       []string{"just-a-name"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodDelete, "/v1/collections/gauges", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/v1/features/"+feature.FeatureID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFilterEndpoints(t *testing.T) {
	server := setupTestServer(t)

	rec := doJSON(t, server, http.MethodGet, "/v1/filters", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Contains(t, names, "raster-unit-conversion")

	rec = doJSON(t, server, http.MethodPost, "/v1/collections", types.Collection{Name: "gauges"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/v1/features", types.Feature{Collection: "gauges"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var feature types.Feature
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feature))

	rec = doJSON(t, server, http.MethodPost, "/v1/datasets", types.Dataset{
		FeatureID: feature.FeatureID,
		Unit:      "ft",
		Values:    []float64{1, 2},
		Status:    types.DatasetStatusDownloaded,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var dataset types.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dataset))

	rec = doJSON(t, server, http.MethodPost, "/v1/filters/raster-unit-conversion", ApplyFilterRequest{
		DatasetID: dataset.DatasetID,
		Options:   map[string]string{"to_units": "m"},
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var derived types.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &derived))
	assert.Equal(t, "m", derived.Unit)
	assert.Equal(t, types.DatasetStatusFiltered, derived.Status)
	assert.NotEqual(t, dataset.DatasetID, derived.DatasetID)

	// The derived dataset is persisted next to its parent.
	rec = doJSON(t, server, http.MethodGet, "/v1/datasets?feature="+feature.FeatureID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var datasets []types.Dataset
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &datasets))
	assert.Len(t, datasets, 2)

	t.Run("unknown filter", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/v1/filters/nope", ApplyFilterRequest{DatasetID: dataset.DatasetID})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing option", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/v1/filters/raster-unit-conversion", ApplyFilterRequest{
			DatasetID: dataset.DatasetID,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestURIEndpoints(t *testing.T) {
	server := setupTestServer(t)

	t.Run("parse service uri", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/v1/uri?uri=svc://usgs-nwis:iv/01529500", nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp ParsedURIResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "services", resp.Kind)
		assert.Equal(t, "usgs-nwis", resp.Provider)
		assert.Equal(t, "iv", resp.Service)
		assert.Equal(t, "01529500", resp.Feature)
	})

	t.Run("empty uri is bad request", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodGet, "/v1/uri", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("classify buckets", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/v1/uri/classify", ClassifyURIsRequest{
			URIs: []string{
				"svc://usgs-nwis:iv",
				"f0000000000040008000000000000000",
				"my-collection",
			},
		})
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string][]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, []string{"svc://usgs-nwis:iv"}, resp["services"])
		assert.Equal(t, []string{"f0000000000040008000000000000000"}, resp["features"])
		assert.Equal(t, []string{"my-collection"}, resp["collections"])
	})

	t.Run("classify with exclusion", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/v1/uri/classify", ClassifyURIsRequest{
			URIs:    []string{"svc://usgs-nwis:iv"},
			Exclude: []string{"services"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("classify mixed when same kind required", func(t *testing.T) {
		rec := doJSON(t, server, http.MethodPost, "/v1/uri/classify", ClassifyURIsRequest{
			URIs:        []string{"svc://a:b", "my-collection"},
			RequireSame: true,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
