package main

import (
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/bytedance/sonic"
)

// Server exposes one navigation session over HTTP. Session operations are
// serialized by mu.
type Server struct {
	mu            sync.Mutex
	graph         *Graph
	index         *SpatialIndex
	session       *NavigationSession
	arrivalRadius float64
}

// StepResponse is returned by every endpoint that moves the session
type StepResponse struct {
	Success  bool           `json:"success"`
	Progress string         `json:"progress,omitempty"`
	Step     *DirectionStep `json:"step,omitempty"`
	Path     []string       `json:"path,omitempty"`
	Distance float64        `json:"distance,omitempty"`
	Node     string         `json:"node,omitempty"`
	Message  string         `json:"message,omitempty"`
}

type nodeRequest struct {
	Node string   `json:"node"`
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
}

type navigateRequest struct {
	Destination string `json:"destination"`
}

// NewServer creates a server around an already loaded graph and session
func NewServer(graph *Graph, session *NavigationSession, arrivalRadius float64) *Server {
	return &Server{
		graph:         graph,
		index:         NewSpatialIndex(graph),
		session:       session,
		arrivalRadius: arrivalRadius,
	}
}

// Routes registers every endpoint
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", corsMiddleware(s.healthHandler))
	mux.HandleFunc("/session", corsMiddleware(s.sessionHandler))
	mux.HandleFunc("/start", corsMiddleware(s.startHandler))
	mux.HandleFunc("/heading", corsMiddleware(s.headingHandler))
	mux.HandleFunc("/navigate", corsMiddleware(s.navigateHandler))
	mux.HandleFunc("/advance", corsMiddleware(s.advanceHandler))
	mux.HandleFunc("/reached", corsMiddleware(s.reachedHandler))
	mux.HandleFunc("/nearest", corsMiddleware(s.nearestHandler))
	mux.HandleFunc("/map/lines", corsMiddleware(s.mapLinesHandler))
	mux.HandleFunc("/map/geojson", corsMiddleware(s.mapGeoJSONHandler))
	return mux
}

// corsMiddleware adds CORS headers to allow frontend requests
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// Handle preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := sonic.ConfigStd.NewEncoder(w).Encode(v); err != nil {
		Logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), StepResponse{Success: false, Message: err.Error()})
}

// statusFor maps navigation errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownNode):
		return http.StatusNotFound
	case errors.Is(err, ErrNoPath):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrGraphNotReady):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		Logger.Warn().Str("method", r.Method).Str("path", r.URL.Path).Msg("method not allowed")
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := sonic.ConfigStd.NewDecoder(r.Body).Decode(v); err != nil {
		Logger.Warn().Err(err).Str("path", r.URL.Path).Msg("invalid request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func stepResponse(step DirectionStep, progress Progress) StepResponse {
	resp := StepResponse{Success: true, Progress: progress.String()}
	if progress == ProgressNextStep {
		resp.Step = &step
	}
	return resp
}

// GET /health - Health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ready"
	if s.graph.Len() == 0 {
		status = "waiting for map"
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   status,
		"numNodes": s.graph.Len(),
	})
}

// GET /session - Current session state
func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	s.mu.Lock()
	snapshot := s.session.Snapshot()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, snapshot)
}

// POST /start - Move the user to a node
func (s *Server) startHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req nodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	err := s.session.SetStartNode(req.Node)
	s.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}

	Logger.Info().Str("node", req.Node).Msg("start node set")
	writeJSON(w, http.StatusOK, StepResponse{Success: true, Node: req.Node})
}

// POST /heading - Set the direction the user is facing
func (s *Server) headingHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var heading Point
	if !decodeBody(w, r, &heading) {
		return
	}

	s.mu.Lock()
	s.session.SetHeading(heading)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"heading": heading,
	})
}

// POST /navigate - Plan a route and return its first step
func (s *Server) navigateHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req navigateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	s.mu.Lock()
	step, progress, err := s.session.NavigateTo(req.Destination)
	path := s.session.Path()
	s.mu.Unlock()

	if err != nil {
		writeError(w, err)
		return
	}

	resp := stepResponse(step, progress)
	resp.Path = path
	resp.Distance, _ = s.graph.PathLength(path)

	Logger.Info().
		Str("destination", req.Destination).
		Str("progress", resp.Progress).
		Float64("distance", resp.Distance).
		Msg("navigate")
	writeJSON(w, http.StatusOK, resp)
}

// POST /advance - Skip to the next step without an arrival event
func (s *Server) advanceHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	s.mu.Lock()
	step, progress := s.session.AdvanceStep()
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, stepResponse(step, progress))
}

// POST /reached - Arrival event, by node ID or by position
func (s *Server) reachedHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req nodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	node := req.Node
	if node == "" && req.X != nil && req.Y != nil {
		id, dist, ok := s.index.NearestNode(Point{X: *req.X, Y: *req.Y})
		if ok && (s.arrivalRadius == 0 || dist <= s.arrivalRadius) {
			node = id
		}
	}

	s.mu.Lock()
	step, progress := s.session.OnNodeReached(node)
	s.mu.Unlock()

	resp := stepResponse(step, progress)
	resp.Node = node
	writeJSON(w, http.StatusOK, resp)
}

// GET /nearest?x=..&y=..[&radius=..] - Nearest node to a position
func (s *Server) nearestHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	query := r.URL.Query()
	x, errX := strconv.ParseFloat(query.Get("x"), 64)
	y, errY := strconv.ParseFloat(query.Get("y"), 64)
	if errX != nil || errY != nil {
		http.Error(w, "x and y query parameters are required", http.StatusBadRequest)
		return
	}
	point := Point{X: x, Y: y}

	id, dist, ok := s.index.NearestNode(point)
	if !ok {
		writeError(w, ErrGraphNotReady)
		return
	}

	resp := map[string]interface{}{
		"success":  true,
		"node":     id,
		"distance": dist,
	}
	if v := query.Get("radius"); v != "" {
		radius, err := strconv.ParseFloat(v, 64)
		if err != nil {
			http.Error(w, "radius must be a number", http.StatusBadRequest)
			return
		}
		resp["within"] = s.index.QueryRadius(point, radius)
	}

	writeJSON(w, http.StatusOK, resp)
}

// GET /map/lines - Graph edges as line segments for visualization
func (s *Server) mapLinesHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	lines := s.graph.EdgeLines()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"lines":    lines,
		"numNodes": s.graph.Len(),
		"numEdges": len(lines),
	})
}

// GET /map/geojson - Graph as a GeoJSON feature collection
func (s *Server) mapGeoJSONHandler(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	data, err := GraphToGeoJSON(s.graph).MarshalJSON()
	if err != nil {
		Logger.Error().Err(err).Msg("failed to marshal geojson")
		http.Error(w, "failed to marshal geojson", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(data)
}
