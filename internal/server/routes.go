package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/soyeahso/toolforge/internal/agents"
	"github.com/soyeahso/toolforge/internal/funcstore"
	"github.com/soyeahso/toolforge/internal/version"
	"github.com/soyeahso/toolforge/internal/weather"
)

// routes builds the server mux. /health is public; everything under /api
// and /ws goes through token auth when a token is configured.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/tools", s.requireAuth(s.handleToolList))
	mux.HandleFunc("POST /api/tools", s.requireAuth(s.handleToolCreate))
	mux.HandleFunc("GET /api/tools/{name}", s.requireAuth(s.handleToolGet))
	mux.HandleFunc("PUT /api/tools/{name}", s.requireAuth(s.handleToolUpdate))
	mux.HandleFunc("DELETE /api/tools/{name}", s.requireAuth(s.handleToolDelete))
	mux.HandleFunc("GET /api/tools/{name}/history", s.requireAuth(s.handleToolHistory))

	mux.HandleFunc("GET /api/agents", s.requireAuth(s.handleAgentList))
	mux.HandleFunc("POST /api/agents", s.requireAuth(s.handleAgentCreate))
	mux.HandleFunc("GET /api/agents/{name}", s.requireAuth(s.handleAgentGet))
	mux.HandleFunc("PUT /api/agents/{name}", s.requireAuth(s.handleAgentUpdate))
	mux.HandleFunc("DELETE /api/agents/{name}", s.requireAuth(s.handleAgentDelete))

	mux.HandleFunc("GET /api/models", s.requireAuth(s.handleModels))

	mux.HandleFunc("GET /api/lookup/weather", s.requireAuth(s.handleLookupWeather))
	mux.HandleFunc("GET /api/lookup/time", s.requireAuth(s.handleLookupTime))

	mux.HandleFunc("GET /ws", s.requireAuth(s.hub.handleWebSocket))

	mux.HandleFunc("/", handleNotFound)
	return mux
}

// HealthResponse is returned by the public health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: version.Version})
}

// handleNotFound returns a 404 for unknown routes.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not_found", "no such route: "+r.URL.Path)
}

// errorResponse is the JSON error envelope for every non-2xx response.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// writeMappedError translates store and lookup errors to HTTP statuses.
func writeMappedError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, funcstore.ErrNotFound),
		errors.Is(err, agents.ErrNotFound),
		errors.Is(err, weather.ErrCityNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, funcstore.ErrAlreadyExists),
		errors.Is(err, agents.ErrExists):
		writeError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, funcstore.ErrInvalidDefinition),
		errors.Is(err, funcstore.ErrNameMismatch),
		errors.Is(err, agents.ErrNameMismatch),
		errors.Is(err, agents.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, funcstore.ErrStorageCorrupt):
		writeError(w, http.StatusInternalServerError, "storage_corrupt", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", err.Error())
	}
}

// readBody decodes a JSON request body, rejecting unknown fields.
func readBody(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
