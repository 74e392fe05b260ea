package assignments

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	assignmentstore "github.com/staffhub/staffhub/internal/app/store/assignments"
	"github.com/staffhub/staffhub/internal/app/system/authz"
	"github.com/staffhub/staffhub/internal/app/system/httpjson"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler handles assignment CRUD and capacity queries.
type Handler struct {
	Assignments *assignmentstore.Store
	Log         *zap.Logger
}

// NewHandler constructs an assignments Handler.
func NewHandler(assignments *assignmentstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Assignments: assignments, Log: logger}
}

// createRequest is the JSON body for creating an assignment.
type createRequest struct {
	EngineerID           string    `json:"engineerId"`
	ProjectID            string    `json:"projectId"`
	AllocationPercentage int       `json:"allocationPercentage"`
	StartDate            time.Time `json:"startDate"`
	EndDate              time.Time `json:"endDate"`
	Role                 string    `json:"role"`
}

// patchRequest is the JSON body for a partial update. Pointer fields
// distinguish "omitted" from an explicit zero value: a 0% allocation is
// applied (after the capacity re-check), not skipped.
type patchRequest struct {
	Role                 *string    `json:"role"`
	AllocationPercentage *int       `json:"allocationPercentage"`
	StartDate            *time.Time `json:"startDate"`
	EndDate              *time.Time `json:"endDate"`
}

func writeStoreError(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	var capErr *assignmentstore.CapacityError
	switch {
	case errors.As(err, &capErr):
		httpjson.Error(w, http.StatusBadRequest, capErr.Error())
	case errors.Is(err, assignmentstore.ErrNotAnEngineer),
		errors.Is(err, assignmentstore.ErrBadAllocation):
		httpjson.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, assignmentstore.ErrEngineerNotFound),
		errors.Is(err, assignmentstore.ErrProjectNotFound),
		errors.Is(err, assignmentstore.ErrAssignmentNotFound):
		httpjson.Error(w, http.StatusNotFound, err.Error())
	default:
		log.Error("assignments: "+op+" failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
	}
}

// ServeCreate handles POST /assignments (managers only).
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	engineerID, err := primitive.ObjectIDFromHex(req.EngineerID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid engineer id")
		return
	}
	projectID, err := primitive.ObjectIDFromHex(req.ProjectID)
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid project id")
		return
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() {
		httpjson.Error(w, http.StatusBadRequest, "startDate and endDate are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Assignments.Create(ctx, assignmentstore.CreateParams{
		EngineerID:           engineerID,
		ProjectID:            projectID,
		AllocationPercentage: req.AllocationPercentage,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
		Role:                 req.Role,
	})
	if err != nil {
		writeStoreError(w, h.Log, "create", err)
		return
	}

	h.Log.Info("assignment created",
		zap.String("assignment_id", created.ID.Hex()),
		zap.String("engineer_id", engineerID.Hex()),
		zap.Int("allocation", created.AllocationPercentage))

	httpjson.Write(w, http.StatusCreated, created)
}

// ServeList handles GET /assignments. Managers see every assignment;
// engineers see only their own.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role, _, userID, ok := authz.UserCtx(r)
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	var (
		list []models.AssignmentDetail
		err  error
	)
	if role == models.RoleManager {
		list, err = h.Assignments.ListAll(ctx)
	} else {
		list, err = h.Assignments.ListByEngineer(ctx, userID)
	}
	if err != nil {
		h.Log.Error("assignments: list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []models.AssignmentDetail{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ServeGet handles GET /assignments/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid assignment id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	detail, err := h.Assignments.GetByID(ctx, id)
	if err != nil {
		writeStoreError(w, h.Log, "get", err)
		return
	}

	// Engineers may only read their own assignments.
	if role, _, userID, ok := authz.UserCtx(r); ok && role != models.RoleManager && detail.EngineerID != userID {
		httpjson.Error(w, http.StatusForbidden, "forbidden")
		return
	}
	httpjson.Write(w, http.StatusOK, detail)
}

// capacityResponse is the JSON structure for the capacity endpoint.
type capacityResponse struct {
	EngineerID        string `json:"engineerId"`
	AvailableCapacity int    `json:"availableCapacity"`
}

// ServeCapacity handles GET /assignments/engineers/{id}/capacity.
//
// The value is computed fresh from assignment documents on every call;
// it can be negative when seed data over-commits an engineer.
func (h *Handler) ServeCapacity(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid engineer id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	available, err := h.Assignments.AvailableCapacity(ctx, id, time.Now().UTC())
	if err != nil {
		writeStoreError(w, h.Log, "capacity", err)
		return
	}

	httpjson.Write(w, http.StatusOK, capacityResponse{
		EngineerID:        id.Hex(),
		AvailableCapacity: available,
	})
}

// ServePatch handles PATCH /assignments/{id} (managers only).
func (h *Handler) ServePatch(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid assignment id")
		return
	}

	var req patchRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	updated, err := h.Assignments.Update(ctx, id, assignmentstore.Patch{
		Role:                 req.Role,
		AllocationPercentage: req.AllocationPercentage,
		StartDate:            req.StartDate,
		EndDate:              req.EndDate,
	})
	if err != nil {
		writeStoreError(w, h.Log, "update", err)
		return
	}
	httpjson.Write(w, http.StatusOK, updated)
}

// ServeDelete handles DELETE /assignments/{id} (managers only). The freed
// allocation is visible to the next capacity check immediately.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid assignment id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Assignments.Delete(ctx, id); err != nil {
		writeStoreError(w, h.Log, "delete", err)
		return
	}

	h.Log.Info("assignment deleted", zap.String("assignment_id", id.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
