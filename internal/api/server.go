// Package api serves map generation over HTTP.
// GET endpoints are public. Mutating endpoints require a bearer token.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talgya/hexmap/internal/mapgen"
	"github.com/talgya/hexmap/internal/persistence"
)

// Defaults and bounds for generation requests.
const (
	DefaultWidth    = 40
	DefaultHeight   = 24
	DefaultMaxTiles = 1 << 16
)

var errBadRequest = errors.New("bad request")

// Server serves map generation and stored maps over HTTP.
type Server struct {
	Presets  *mapgen.PresetBook // nil = mapgen.DefaultPresetBook()
	Registry *mapgen.Registry   // nil = mapgen.DefaultRegistry()
	DB       *persistence.DB    // nil = storage endpoints return 503
	Port     int
	AdminKey string // Bearer token for mutating endpoints. Empty = disabled.
	MaxTiles int    // Upper bound on width*height. Zero = DefaultMaxTiles.

	// Requests per minute per client IP on generation endpoints. Zero = 60.
	GenerateRate int
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	rate := s.GenerateRate
	if rate <= 0 {
		rate = 60
	}
	generateLimiter := NewRateLimiter(rate, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints.
	mux.HandleFunc("/api/v1/generate", RateLimitMiddleware(generateLimiter, s.handleGenerate))
	mux.HandleFunc("/api/v1/generate/debug", RateLimitMiddleware(generateLimiter, s.handleGenerateDebug))
	mux.HandleFunc("/api/v1/presets", s.handlePresets)

	// Stored maps: GET is public, POST and DELETE need the admin token.
	// Only POST generates, so only POST counts against the generation limit.
	mux.HandleFunc("/api/v1/maps", s.adminOnly(RateLimitMethod(http.MethodPost, generateLimiter, s.handleMaps)))
	mux.HandleFunc("/api/v1/maps/", s.adminOnly(s.handleMapDetail))

	return corsMiddleware(mux)
}

// Start begins serving the HTTP API and returns the server so the caller can
// shut it down.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "storage", s.DB != nil)

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST and DELETE.
// GET requests pass through.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost || r.Method == http.MethodDelete {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no MAPGEN_ADMIN_KEY set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) presets() *mapgen.PresetBook {
	if s.Presets == nil {
		return mapgen.DefaultPresetBook()
	}
	return s.Presets
}

func (s *Server) registry() *mapgen.Registry {
	if s.Registry == nil {
		return mapgen.DefaultRegistry()
	}
	return s.Registry
}

// generateRequest is the JSON body of POST /api/v1/maps. The GET endpoints
// take the same fields as query parameters.
type generateRequest struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Preset  string `json:"preset"`
	Seed    string `json:"seed"`
	Players int    `json:"players"`
}

func (s *Server) options(req generateRequest) (mapgen.Options, error) {
	if req.Width == 0 {
		req.Width = DefaultWidth
	}
	if req.Height == 0 {
		req.Height = DefaultHeight
	}
	maxTiles := s.MaxTiles
	if maxTiles <= 0 {
		maxTiles = DefaultMaxTiles
	}
	if req.Width > 0 && req.Height > 0 && req.Width > maxTiles/req.Height {
		return mapgen.Options{}, fmt.Errorf("%w: %dx%d exceeds %d tiles", errBadRequest, req.Width, req.Height, maxTiles)
	}
	if req.Players < 0 {
		return mapgen.Options{}, fmt.Errorf("%w: players %d is negative", errBadRequest, req.Players)
	}
	return mapgen.Options{
		Width:       req.Width,
		Height:      req.Height,
		Preset:      req.Preset,
		Seed:        req.Seed,
		PlayerCount: req.Players,
	}, nil
}

func queryRequest(r *http.Request) (generateRequest, error) {
	q := r.URL.Query()
	req := generateRequest{Preset: q.Get("preset"), Seed: q.Get("seed")}
	for name, dst := range map[string]*int{"width": &req.Width, "height": &req.Height, "players": &req.Players} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, fmt.Errorf("%w: %s %q is not an integer", errBadRequest, name, raw)
		}
		*dst = n
	}
	return req, nil
}

// generate runs one request through a fresh generator.
func (s *Server) generate(req generateRequest) (mapgen.GenerationConfig, *mapgen.Report, error) {
	opts, err := s.options(req)
	if err != nil {
		return mapgen.GenerationConfig{}, nil, err
	}
	cfg, err := mapgen.BuildConfig(opts, s.presets())
	if err != nil {
		return mapgen.GenerationConfig{}, nil, err
	}
	g, err := mapgen.NewGeneratorWithConfig(cfg, s.registry())
	if err != nil {
		return cfg, nil, err
	}
	report, err := g.GenerateDetailed()
	return cfg, report, err
}

// writeError maps generation and storage errors onto HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, mapgen.ErrInvalidDimensions),
		errors.Is(err, mapgen.ErrUnknownPreset):
		status = http.StatusBadRequest
	case errors.Is(err, persistence.ErrMapNotFound):
		status = http.StatusNotFound
	default:
		slog.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

// handleGenerate returns the generated map.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := queryRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	_, report, err := s.generate(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report.Map)
}

// handleGenerateDebug returns the resolved config and the per-pass report.
func (s *Server) handleGenerateDebug(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := queryRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	cfg, report, err := s.generate(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"config":               cfg,
		"map":                  report.Map,
		"results":              report.Results,
		"total_tiles_modified": report.TotalTilesModified,
		"elapsed_ms":           float64(report.Elapsed.Microseconds()) / 1000,
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	book := s.presets()
	presets := make([]mapgen.Preset, 0)
	for _, name := range book.Names() {
		p, err := book.Lookup(name)
		if err != nil {
			continue
		}
		presets = append(presets, p)
	}
	writeJSON(w, map[string]any{
		"default": mapgen.DefaultPreset,
		"presets": presets,
		"passes":  s.registry().Names(),
	})
}

// handleMaps lists stored maps (GET) or generates and stores one (POST).
func (s *Server) handleMaps(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit := 20
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				http.Error(w, "invalid limit", http.StatusBadRequest)
				return
			}
			limit = min(n, 100)
		}
		maps, err := s.DB.ListMaps(limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"maps": maps})

	case http.MethodPost:
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		_, report, err := s.generate(req)
		if err != nil {
			writeError(w, err)
			return
		}
		id, err := s.DB.SaveMap(report.Map)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSONStatus(w, http.StatusCreated, map[string]any{
			"id":     id,
			"width":  report.Map.Width,
			"height": report.Map.Height,
			"seed":   report.Map.Seed,
			"preset": report.Map.Preset,
			"spawns": report.Map.Spawns(),
		})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleMapDetail serves GET and DELETE /api/v1/maps/:id.
func (s *Server) handleMapDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1/maps/"), "/")
	if id == "" || strings.Contains(id, "/") {
		http.Error(w, "usage: /api/v1/maps/:id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		m, err := s.DB.LoadMap(id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"id": id, "map": m})
	case http.MethodDelete:
		if err := s.DB.DeleteMap(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
