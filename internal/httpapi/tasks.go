package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lotar-dev/lotar/internal/identity"
	"github.com/lotar-dev/lotar/internal/storage"
	"github.com/lotar-dev/lotar/internal/task"
)

func (s *Server) registerTaskRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/tasks/add", s.handleTasksAdd)
	mux.HandleFunc("GET /api/tasks/list", s.handleTasksList)
	mux.HandleFunc("GET /api/tasks/get", s.handleTasksGet)
	mux.HandleFunc("POST /api/tasks/update", s.handleTasksUpdate)
	mux.HandleFunc("POST /api/tasks/delete", s.handleTasksDelete)
}

type addTaskRequest struct {
	Project     string         `json:"project"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      string         `json:"status"`
	Priority    string         `json:"priority"`
	Type        string         `json:"type"`
	Assignee    string         `json:"assignee"`
	Reporter    string         `json:"reporter"`
	DueDate     string         `json:"due_date"`
	Effort      string         `json:"effort"`
	Tags        []string       `json:"tags"`
	Category    string         `json:"category"`
	Custom      map[string]any `json:"custom_fields"`
}

func (s *Server) handleTasksAdd(w http.ResponseWriter, r *http.Request) {
	var req addTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if req.Title == "" {
		badRequest(w, "title is required")
		return
	}

	t, err := s.service.Create(task.CreateInput{
		Project:      req.Project,
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		Type:         req.Type,
		Assignee:     req.Assignee,
		Reporter:     req.Reporter,
		DueDate:      req.DueDate,
		Effort:       req.Effort,
		Tags:         req.Tags,
		Category:     req.Category,
		CustomFields: req.Custom,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, t)
}

func (s *Server) handleTasksList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	found, err := s.service.List(storage.Filter{
		Project:  q.Get("project"),
		Status:   splitQueryCSV(q.Get("status")),
		Priority: splitQueryCSV(q.Get("priority")),
		Type:     splitQueryCSV(q.Get("type")),
		Tags:     splitQueryCSV(q.Get("tags")),
		Text:     q.Get("q"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeDataWithMeta(w, found, map[string]int{"count": len(found)})
}

func (s *Server) handleTasksGet(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		badRequest(w, "id is required")
		return
	}
	t, err := s.service.Get(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, t)
}

type updateTaskRequest struct {
	ID          string         `json:"id"`
	Actor       string         `json:"actor"`
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Status      *string        `json:"status"`
	Priority    *string        `json:"priority"`
	Type        *string        `json:"type"`
	Assignee    *string        `json:"assignee"`
	DueDate     *string        `json:"due_date"`
	Effort      *string        `json:"effort"`
	Tags        []string       `json:"tags"`
	Category    *string        `json:"category"`
	Custom      map[string]any `json:"custom_fields"`
}

func (s *Server) handleTasksUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if req.ID == "" {
		badRequest(w, "id is required")
		return
	}

	actor := req.Actor
	if actor == "" {
		actor = identity.CurrentUser(s.repoRoot)
	}

	t, err := s.service.Update(req.ID, actor, task.Patch{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		Type:         req.Type,
		Assignee:     req.Assignee,
		DueDate:      req.DueDate,
		Effort:       req.Effort,
		Tags:         req.Tags,
		Category:     req.Category,
		CustomFields: req.Custom,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeData(w, t)
}

type deleteTaskRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleTasksDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body: "+err.Error())
		return
	}
	if req.ID == "" {
		badRequest(w, "id is required")
		return
	}
	if err := s.service.Delete(req.ID); err != nil {
		writeError(w, err)
		return
	}
	writeData(w, map[string]string{"id": req.ID})
}

func splitQueryCSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
