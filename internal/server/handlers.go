package server

import (
	"errors"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/quest/internal/filters"
	"github.com/mesh-intelligence/quest/internal/registry"
	"github.com/mesh-intelligence/quest/internal/sqlite"
	"github.com/mesh-intelligence/quest/pkg/ref"
	"github.com/mesh-intelligence/quest/pkg/types"
)

// httpError maps catalog errors onto HTTP status codes. Unrecognized
// errors become 500s.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, types.ErrNotFound),
		errors.Is(err, types.ErrUnknownProject),
		errors.Is(err, filters.ErrFilterNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrDuplicateName):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, types.ErrInvalidData),
		errors.Is(err, types.ErrInvalidProject),
		errors.Is(err, filters.ErrMissingOption),
		errors.Is(err, filters.ErrNoUnit),
		errors.Is(err, filters.ErrUnknownUnit),
		errors.Is(err, filters.ErrIncompatibleUnits),
		errors.Is(err, ref.ErrEmptyRef),
		errors.Is(err, ref.ErrInvalidRef),
		errors.Is(err, ref.ErrKindExcluded),
		errors.Is(err, ref.ErrMixedKinds):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

// withStore opens the store of the project named in the "project" query
// parameter, defaulting to the active project, and runs fn against it.
func (s *Server) withStore(c echo.Context, fn func(store *sqlite.Store) error) error {
	name := c.QueryParam("project")
	if name == "" {
		active, err := s.reg.Active()
		if err != nil {
			return httpError(err)
		}
		name = active
	}

	store, err := s.reg.OpenStore(name)
	if err != nil {
		return httpError(err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			s.logger.Warn("closing project store", zap.Error(closeErr))
		}
	}()

	return fn(store)
}

// --- projects ---

// CreateProjectRequest is the request body for POST /v1/projects.
type CreateProjectRequest struct {
	Name        string         `json:"name"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Folder      string         `json:"folder"`
	Activate    bool           `json:"activate"`
}

// ProjectListResponse is the response body for GET /v1/projects.
type ProjectListResponse struct {
	Active   string                   `json:"active"`
	Projects map[string]types.Project `json:"projects"`
}

// ActiveProjectResponse carries the active-project pointer.
type ActiveProjectResponse struct {
	Name string `json:"name"`
}

// DeleteProjectResponse is the response body for DELETE /v1/projects/:name.
type DeleteProjectResponse struct {
	Remaining []string `json:"remaining"`
}

func (s *Server) handleListProjects(c echo.Context) error {
	if err := s.reg.EnsureDefault(); err != nil {
		return httpError(err)
	}
	records, err := s.reg.ProjectRecords()
	if err != nil {
		return httpError(err)
	}
	active, err := s.reg.Active()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ProjectListResponse{Active: active, Projects: records})
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name field is required")
	}

	project, err := s.reg.Create(req.Name, registry.CreateOptions{
		DisplayName: req.DisplayName,
		Description: req.Description,
		Metadata:    req.Metadata,
		Folder:      req.Folder,
		Activate:    req.Activate,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, project)
}

func (s *Server) handleGetProject(c echo.Context) error {
	project, err := s.reg.Project(c.Param("name"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, project)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	name := c.Param("name")

	var remaining []string
	var err error
	if c.QueryParam("keep_data") == "true" {
		remaining, err = s.reg.Unregister(name)
	} else {
		remaining, err = s.reg.Delete(name)
	}
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, DeleteProjectResponse{Remaining: remaining})
}

func (s *Server) handleGetActive(c echo.Context) error {
	active, err := s.reg.Active()
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ActiveProjectResponse{Name: active})
}

func (s *Server) handleSetActive(c echo.Context) error {
	var req ActiveProjectResponse
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := s.reg.SetActive(req.Name); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ActiveProjectResponse{Name: req.Name})
}

// --- collections ---

func (s *Server) handleListCollections(c echo.Context) error {
	return s.withStore(c, func(store *sqlite.Store) error {
		collections, err := store.Collections()
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, collections)
	})
}

func (s *Server) handleCreateCollection(c echo.Context) error {
	var collection types.Collection
	if err := c.Bind(&collection); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return s.withStore(c, func(store *sqlite.Store) error {
		if err := store.NewCollection(&collection); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, collection)
	})
}

func (s *Server) handleGetCollection(c echo.Context) error {
	return s.withStore(c, func(store *sqlite.Store) error {
		collection, err := store.Collection(c.Param("name"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, collection)
	})
}

func (s *Server) handleDeleteCollection(c echo.Context) error {
	return s.withStore(c, func(store *sqlite.Store) error {
		if err := store.DeleteCollection(c.Param("name")); err != nil {
			return httpError(err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// --- features ---

func (s *Server) handleListFeatures(c echo.Context) error {
	return s.withStore(c, func(store *sqlite.Store) error {
		var collections []string
		if col := c.QueryParam("collection"); col != "" {
			collections = append(collections, col)
		}
		features, err := store.Features(collections...)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, features)
	})
}

// CreateFeaturesResponse is the response body for a batch POST
// /v1/features from service URIs.
type CreateFeaturesResponse struct {
	FeatureIDs []string `json:"feature_ids"`
}

// handleCreateFeature creates features in a collection. A body carrying
// a "uris" list creates one feature per service URI; otherwise the body
// is a single feature record.
func (s *Server) handleCreateFeature(c echo.Context) error {
	var req struct {
		types.Feature
		URIs []string `json:"uris"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return s.withStore(c, func(store *sqlite.Store) error {
		if len(req.URIs) > 0 {
			ids, err := store.AddFeatures(req.Collection, req.URIs)
			if err != nil {
				return httpError(err)
			}
			return c.JSON(http.StatusCreated, CreateFeaturesResponse{FeatureIDs: ids})
		}

		if err := store.AddFeature(&req.Feature); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, req.Feature)
	})
}

func (s *Server) handleGetFeature(c echo.Context) error {
	return s.withStore(c, func(store *sqlite.Store) error {
		feature, err := store.Feature(c.Param("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, feature)
	})
}

func (s *Server) handleDeleteFeature(c echo.Context) error {
	return s.withStore(c, func(store *sqlite.Store) error {
		if err := store.DeleteFeature(c.Param("id")); err != nil {
			return httpError(err)
		}
		return c.NoContent(http.StatusNoContent)
	})
}

// --- datasets ---

func (s *Server) handleListDatasets(c echo.Context) error {
	feature := c.QueryParam("feature")
	if feature == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "feature query parameter is required")
	}
	return s.withStore(c, func(store *sqlite.Store) error {
		datasets, err := store.Datasets(feature)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, datasets)
	})
}

func (s *Server) handleCreateDataset(c echo.Context) error {
	var dataset types.Dataset
	if err := c.Bind(&dataset); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return s.withStore(c, func(store *sqlite.Store) error {
		if err := store.AddDataset(&dataset); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, dataset)
	})
}

func (s *Server) handleGetDataset(c echo.Context) error {
	return s.withStore(c, func(store *sqlite.Store) error {
		dataset, err := store.Dataset(c.Param("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, dataset)
	})
}

// --- filters ---

// ApplyFilterRequest is the request body for POST /v1/filters/:name.
type ApplyFilterRequest struct {
	DatasetID string          `json:"dataset_id"`
	Options   filters.Options `json:"options"`
}

func (s *Server) handleListFilters(c echo.Context) error {
	return c.JSON(http.StatusOK, filters.Names())
}

// handleApplyFilter runs a filter over a stored dataset and persists the
// derived dataset alongside its parent.
func (s *Server) handleApplyFilter(c echo.Context) error {
	filter, err := filters.Get(c.Param("name"))
	if err != nil {
		return httpError(err)
	}

	var req ApplyFilterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.DatasetID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "dataset_id field is required")
	}

	return s.withStore(c, func(store *sqlite.Store) error {
		dataset, err := store.Dataset(req.DatasetID)
		if err != nil {
			return httpError(err)
		}

		derived, err := filter.Apply(dataset, req.Options)
		if err != nil {
			return httpError(err)
		}
		if err := store.AddDataset(&derived); err != nil {
			return httpError(err)
		}

		s.logger.Info("applied filter",
			zap.String("filter", filter.Name()),
			zap.String("parent", dataset.DatasetID),
			zap.String("dataset", derived.DatasetID))

		return c.JSON(http.StatusCreated, derived)
	})
}

// --- uris ---

// ParsedURIResponse is the response body for GET /v1/uri.
type ParsedURIResponse struct {
	URI      string `json:"uri"`
	Kind     string `json:"kind"`
	Provider string `json:"provider,omitempty"`
	Service  string `json:"service,omitempty"`
	Feature  string `json:"feature,omitempty"`
	ID       string `json:"id,omitempty"`
}

// ClassifyURIsRequest is the request body for POST /v1/uri/classify.
type ClassifyURIsRequest struct {
	URIs        []string `json:"uris"`
	Exclude     []string `json:"exclude"`
	RequireSame bool     `json:"require_same_type"`
}

func (s *Server) handleParseURI(c echo.Context) error {
	uri := c.QueryParam("uri")
	parsed, err := ref.Parse(uri)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, ParsedURIResponse{
		URI:      parsed.String(),
		Kind:     string(parsed.Kind),
		Provider: parsed.Provider,
		Service:  parsed.Service,
		Feature:  parsed.Feature,
		ID:       parsed.ID,
	})
}

func (s *Server) handleClassifyURIs(c echo.Context) error {
	var req ClassifyURIsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	exclude := make([]ref.Kind, 0, len(req.Exclude))
	for _, k := range req.Exclude {
		exclude = append(exclude, ref.Kind(k))
	}

	grouped, err := ref.Classify(req.URIs, ref.ClassifyOptions{
		Exclude:     exclude,
		RequireSame: req.RequireSame,
	})
	if err != nil {
		return httpError(err)
	}

	out := make(map[string][]string, len(grouped))
	for kind, uris := range grouped {
		sort.Strings(uris)
		out[string(kind)] = uris
	}
	return c.JSON(http.StatusOK, out)
}
