package projects

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	projectstore "github.com/staffhub/staffhub/internal/app/store/projects"
	"github.com/staffhub/staffhub/internal/app/system/httpjson"
	"github.com/staffhub/staffhub/internal/app/system/normalize"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler handles project CRUD and search.
type Handler struct {
	Projects *projectstore.Store
	Log      *zap.Logger
}

// NewHandler constructs a projects Handler.
func NewHandler(projects *projectstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Projects: projects, Log: logger}
}

// projectRequest is the JSON body for create and full update.
type projectRequest struct {
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	RequiredSkills []string  `json:"requiredSkills"`
	TeamSize       int       `json:"teamSize"`
	StartDate      time.Time `json:"startDate"`
	EndDate        time.Time `json:"endDate"`
	Status         string    `json:"status"`
}

// ServeCreate handles POST /projects (managers only, enforced by the route).
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httpjson.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		httpjson.Error(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Projects.Create(ctx, models.Project{
		Name:           req.Name,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		TeamSize:       req.TeamSize,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         req.Status,
	})
	if err != nil {
		if errors.Is(err, projectstore.ErrBadStatus) || errors.Is(err, projectstore.ErrBadTeamSize) {
			httpjson.Error(w, http.StatusBadRequest, err.Error())
			return
		}
		h.Log.Error("projects: create failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("project created",
		zap.String("project_id", created.ID.Hex()),
		zap.String("name", created.Name))

	httpjson.Write(w, http.StatusCreated, created)
}

// ServeList handles GET /projects with an optional ?status= filter.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	st := normalize.QueryParam(r.URL.Query().Get("status"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Projects.List(ctx, st)
	if err != nil {
		h.Log.Error("projects: list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []models.Project{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ServeListBySkills handles GET /projects/skills?skills=go,mongodb.
// A project matches when it requires at least one of the given skills.
func (h *Handler) ServeListBySkills(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("skills")

	var skills []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	if len(skills) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "skills query parameter is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Projects.ListBySkills(ctx, skills)
	if err != nil {
		h.Log.Error("projects: skills search failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []models.Project{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ServeGet handles GET /projects/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	project, err := h.Projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "project not found")
			return
		}
		h.Log.Error("projects: get failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.Write(w, http.StatusOK, project)
}

// ServeUpdate handles PUT /projects/{id} (managers only).
func (h *Handler) ServeUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req projectRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		httpjson.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Projects.Update(ctx, id, projectstore.Update{
		Name:           req.Name,
		Description:    req.Description,
		RequiredSkills: req.RequiredSkills,
		TeamSize:       req.TeamSize,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, mongo.ErrNoDocuments):
			httpjson.Error(w, http.StatusNotFound, "project not found")
		case errors.Is(err, projectstore.ErrBadStatus), errors.Is(err, projectstore.ErrBadTeamSize):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error("projects: update failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// ServeDelete handles DELETE /projects/{id} (managers only).
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Projects.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "project not found")
			return
		}
		h.Log.Error("projects: delete failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	h.Log.Info("project deleted", zap.String("project_id", id.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
