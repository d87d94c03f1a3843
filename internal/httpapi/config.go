package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/lotar-dev/lotar/internal/config"
)

func (s *Server) registerConfigRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/config/show", s.handleConfigShow)
	mux.HandleFunc("POST /api/config/set", s.handleConfigSet)
}

func (s *Server) handleConfigShow(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")

	resolved, err := config.Resolve(s.tasksRoot, project)
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataWithMeta(w, resolved, map[string]any{"sources": resolved.Sources})
}

type setConfigRequest struct {
	Values  map[string]string `json:"values"`
	Global  bool              `json:"global"`
	Project string            `json:"project"`
}

func (s *Server) handleConfigSet(w http.ResponseWriter, r *http.Request) {
	var req setConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if len(req.Values) == 0 {
		badRequest(w, "values must contain at least one field")
		return
	}

	scope := config.ScopeProject
	if req.Global {
		scope = config.ScopeGlobal
	}
	if scope == config.ScopeProject && req.Project == "" {
		badRequest(w, "project scope requires project")
		return
	}

	for field, value := range req.Values {
		if err := config.Set(s.bus, s.tasksRoot, req.Project, scope, field, value); err != nil {
			writeError(w, err)
			return
		}
	}
	writeData(w, map[string]any{"set": req.Values})
}
