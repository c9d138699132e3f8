package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/recipeflow/pkg/buildinfo"
	"github.com/matzehuels/recipeflow/pkg/errors"
	"github.com/matzehuels/recipeflow/pkg/flow"
	"github.com/matzehuels/recipeflow/pkg/pipeline"
	"github.com/matzehuels/recipeflow/pkg/render"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Items  int    `json:"items"`
	Uptime string `json:"uptime"`
}

// FlowsRequest is the body of POST /api/flows.
type FlowsRequest struct {
	Items        []string `json:"items"`
	Barrels      *bool    `json:"barrels,omitempty"`
	DetectCycles bool     `json:"detect_cycles,omitempty"`
	Validate     bool     `json:"validate,omitempty"`
}

// FlowsResponse is the body of a successful POST /api/flows.
type FlowsResponse struct {
	Flows map[string]json.RawMessage `json:"flows"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Items:  s.catalog.Len(),
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Categories())
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	opts, err := s.itemOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	g, hit, err := s.runner.FlattenWithCacheInfo(r.Context(), s.catalog, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := encodeGraph(opts.Item, g)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(hit))
	writeRaw(w, http.StatusOK, render.ContentType(render.FormatJSON), data)
}

func (s *Server) handleDiagram(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := s.itemOptions(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Formats = []string{format}
		opts.Detailed = queryBool(r, "detailed", false)

		res, err := s.runner.Execute(r.Context(), s.catalog, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set("X-Cache", cacheHeader(res.CacheInfo.FlattenHit && res.CacheInfo.RenderHit))
		writeRaw(w, http.StatusOK, render.ContentType(format), res.Artifacts[format])
	}
}

func (s *Server) handleFlows(w http.ResponseWriter, r *http.Request) {
	var req FlowsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if len(req.Items) == 0 {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "items must not be empty"))
		return
	}
	if len(req.Items) > s.cfg.MaxBatch {
		s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "at most %d items per request, got %d", s.cfg.MaxBatch, len(req.Items)))
		return
	}
	for _, id := range req.Items {
		if err := errors.ValidateItemID(id); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	barrels := s.cfg.Barrels
	if req.Barrels != nil {
		barrels = *req.Barrels
	}
	opts := pipeline.Options{
		LiquidInBarrels: barrels,
		DetectCycles:    req.DetectCycles || s.cyclic,
		Validate:        req.Validate,
	}

	graphs, err := s.runner.FlattenAll(r.Context(), s.catalog, req.Items, opts, s.cfg.Concurrency)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := FlowsResponse{Flows: make(map[string]json.RawMessage, len(graphs))}
	for id, g := range graphs {
		data, err := encodeGraph(id, g)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.Flows[id] = data
	}
	writeJSON(w, http.StatusOK, resp)
}

// itemOptions reads the item ID from the path and the walk options from
// the query string.
func (s *Server) itemOptions(r *http.Request) (pipeline.Options, error) {
	opts := pipeline.Options{
		Item:            chi.URLParam(r, "id"),
		LiquidInBarrels: queryBool(r, "barrels", s.cfg.Barrels),
		DetectCycles:    s.cyclic || queryBool(r, "detect_cycles", false),
		Validate:        queryBool(r, "validate", false),
	}
	return opts, errors.ValidateItemID(opts.Item)
}

// queryBool parses a boolean query parameter. A bare "?barrels" counts as
// true; unparsable values fall back to def.
func queryBool(r *http.Request, key string, def bool) bool {
	q := r.URL.Query()
	if !q.Has(key) {
		return def
	}
	v := q.Get(key)
	if v == "" {
		return true
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// encodeGraph marshals g, reporting unbounded rates as a recipe error.
func encodeGraph(item string, g *flow.Graph) ([]byte, error) {
	data, err := flow.MarshalGraph(g)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidRecipe, err, "flow of %s has unbounded rates", item)
	}
	return data, nil
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
