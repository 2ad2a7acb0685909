package server

import (
	"net/http"
	"strconv"

	"github.com/soyeahso/toolforge/internal/domain"
)

// --- Tool functions ---

type toolRequest struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

func (s *Server) handleToolList(w http.ResponseWriter, r *http.Request) {
	names, err := s.tools.List()
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tools": names})
}

func (s *Server) handleToolCreate(w http.ResponseWriter, r *http.Request) {
	var req toolRequest
	if err := readBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}

	fn, err := s.tools.Create(req.Name, req.Code)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	s.recordRevision(fn.Name, domain.RevisionCreate, fn.Code)
	s.hub.Broadcast(EventToolCreated, fn.Name)
	writeJSON(w, http.StatusCreated, fn)
}

func (s *Server) handleToolGet(w http.ResponseWriter, r *http.Request) {
	fn, err := s.tools.Get(r.PathValue("name"))
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fn)
}

func (s *Server) handleToolUpdate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var req toolRequest
	if err := readBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: "+err.Error())
		return
	}
	// A body name, when present, must agree with the addressed name.
	if req.Name != "" && req.Name != name {
		writeError(w, http.StatusBadRequest, "invalid_request",
			"body names "+strconv.Quote(req.Name)+", addressed as "+strconv.Quote(name))
		return
	}

	fn, err := s.tools.Update(name, req.Code)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	s.recordRevision(fn.Name, domain.RevisionUpdate, fn.Code)
	s.hub.Broadcast(EventToolUpdated, fn.Name)
	writeJSON(w, http.StatusOK, fn)
}

func (s *Server) handleToolDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.tools.Delete(name); err != nil {
		writeMappedError(w, err)
		return
	}

	s.recordRevision(name, domain.RevisionDelete, "")
	s.hub.Broadcast(EventToolDeleted, name)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToolHistory(w http.ResponseWriter, r *http.Request) {
	if s.revisions == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "revision history is disabled")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	revs, err := s.revisions.ListByName(r.PathValue("name"), limit)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"revisions": revs})
}

// recordRevision logs the mutation to the history store when enabled.
func (s *Server) recordRevision(name, op, code string) {
	if s.revisions != nil {
		s.revisions.Record(name, op, code)
	}
}

// --- Agents ---

func (s *Server) handleAgentList(w http.ResponseWriter, r *http.Request) {
	names, err := s.agents.List()
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"agents": names})
}

func (s *Server) handleAgentCreate(w http.ResponseWriter, r *http.Request) {
	var cfg domain.AgentConfig
	if err := readBody(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: "+err.Error())
		return
	}

	created, err := s.agents.Create(cfg)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	s.hub.Broadcast(EventAgentCreated, created.Name)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleAgentGet(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.agents.Get(r.PathValue("name"))
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleAgentUpdate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	var cfg domain.AgentConfig
	if err := readBody(r, &cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body: "+err.Error())
		return
	}

	updated, err := s.agents.Update(name, cfg)
	if err != nil {
		writeMappedError(w, err)
		return
	}

	s.hub.Broadcast(EventAgentUpdated, updated.Name)
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleAgentDelete(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.agents.Delete(name); err != nil {
		writeMappedError(w, err)
		return
	}

	s.hub.Broadcast(EventAgentDeleted, name)
	w.WriteHeader(http.StatusNoContent)
}

// --- Models / lookup ---

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"default":   s.cfg.Models.Default,
		"available": s.cfg.Models.Available,
	})
}

func (s *Server) handleLookupWeather(w http.ResponseWriter, r *http.Request) {
	s.handleLookup(w, r, func(city string) (string, error) {
		return s.lookup.Current(r.Context(), city)
	})
}

func (s *Server) handleLookupTime(w http.ResponseWriter, r *http.Request) {
	s.handleLookup(w, r, func(city string) (string, error) {
		return s.lookup.LocalTime(r.Context(), city)
	})
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request, fn func(string) (string, error)) {
	city := r.URL.Query().Get("city")
	if city == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "city query parameter is required")
		return
	}
	if s.lookup == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", "lookup services are disabled")
		return
	}

	report, err := fn(city)
	if err != nil {
		writeMappedError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"city": city, "report": report})
}
