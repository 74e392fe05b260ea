package users

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	userstore "github.com/staffhub/staffhub/internal/app/store/users"
	"github.com/staffhub/staffhub/internal/app/system/httpjson"
	"github.com/staffhub/staffhub/internal/app/system/normalize"
	"github.com/staffhub/staffhub/internal/app/system/timeouts"
	"github.com/staffhub/staffhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler handles user registration and directory lookups.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a users Handler.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

// createRequest is the JSON body for registration.
type createRequest struct {
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	Skills      []string `json:"skills"`
	Seniority   string   `json:"seniority"`
	MaxCapacity *int     `json:"maxCapacity"`
	Department  string   `json:"department"`
}

// ServeCreate handles POST /users. Registration is open; the store
// defaults a bare signup to an engineer.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpjson.Decode(r, &req); err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Name == "" || req.Password == "" {
		httpjson.Error(w, http.StatusBadRequest, "email, name and password are required")
		return
	}
	if len(req.Password) < 6 {
		httpjson.Error(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Log.Error("users: password hashing failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Absent maxCapacity means full availability; an explicit 0 is kept.
	maxCapacity := 100
	if req.MaxCapacity != nil {
		maxCapacity = *req.MaxCapacity
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Users.Create(ctx, models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: string(hash),
		Role:         req.Role,
		Skills:       req.Skills,
		Seniority:    req.Seniority,
		MaxCapacity:  maxCapacity,
		Department:   req.Department,
	})
	if err != nil {
		switch {
		case errors.Is(err, userstore.ErrDuplicateEmail):
			httpjson.Error(w, http.StatusConflict, err.Error())
		case errors.Is(err, userstore.ErrBadRole),
			errors.Is(err, userstore.ErrBadSeniority),
			errors.Is(err, userstore.ErrBadCapacity):
			httpjson.Error(w, http.StatusBadRequest, err.Error())
		default:
			h.Log.Error("users: create failed", zap.Error(err))
			httpjson.Error(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	h.Log.Info("user registered",
		zap.String("user_id", created.ID.Hex()),
		zap.String("role", created.Role))

	httpjson.Write(w, http.StatusCreated, created)
}

// ServeList handles GET /users with an optional ?role= filter.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	role := normalize.QueryParam(r.URL.Query().Get("role"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	list, err := h.Users.List(ctx, role)
	if err != nil {
		h.Log.Error("users: list failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	if list == nil {
		list = []models.User{}
	}
	httpjson.Write(w, http.StatusOK, list)
}

// ServeGet handles GET /users/{id}.
func (h *Handler) ServeGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		httpjson.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			httpjson.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Log.Error("users: get failed", zap.Error(err))
		httpjson.Error(w, http.StatusInternalServerError, "internal error")
		return
	}
	httpjson.Write(w, http.StatusOK, user)
}
