package httpapi

import (
	"net/http"

	"github.com/lotar-dev/lotar/internal/storage"
)

func (s *Server) registerProjectRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects/list", s.handleProjectsList)
	mux.HandleFunc("GET /api/projects/stats", s.handleProjectsStats)
}

func (s *Server) handleProjectsList(w http.ResponseWriter, r *http.Request) {
	projects, err := s.engine.ListProjects()
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, projects)
}

type projectStats struct {
	Project    string         `json:"project"`
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByPriority map[string]int `json:"by_priority"`
	ByType     map[string]int `json:"by_type"`
}

func (s *Server) handleProjectsStats(w http.ResponseWriter, r *http.Request) {
	project := r.URL.Query().Get("project")
	if project == "" {
		badRequest(w, "project is required")
		return
	}

	found, err := s.service.List(storage.Filter{Project: project})
	if err != nil {
		writeError(w, err)
		return
	}

	stats := computeStats(project, found)
	writeData(w, stats)
}

func computeStats(project string, found []storage.Found) projectStats {
	stats := projectStats{
		Project:    project,
		Total:      len(found),
		ByStatus:   map[string]int{},
		ByPriority: map[string]int{},
		ByType:     map[string]int{},
	}
	for _, f := range found {
		stats.ByStatus[f.Task.Status]++
		stats.ByPriority[f.Task.Priority]++
		stats.ByType[f.Task.Type]++
	}
	return stats
}
