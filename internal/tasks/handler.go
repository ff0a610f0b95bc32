package tasks

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-io/gatehouse/internal/rbac"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Handler wires the task CRUD endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	authz    rbac.Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, authz rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, authz: authz, validate: validator.New()}
}

// MountRoutes registers task routes. The collection-level gate covers the
// whole subtree; object-level checks run in the service once the target
// record is known.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authz.RequireCollection(ResourceCode))

	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.show)
		r.Put("/", h.update)
		r.Patch("/", h.patch)
		r.Delete("/", h.remove)
	})
}

type taskRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=4000"`
}

type taskPatchRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=4000"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	p := auth.PrincipalFromContext(r.Context())
	items, err := h.service.List(r.Context(), p)
	if err != nil {
		h.respondServiceError(w, "list tasks", err)
		return
	}
	if items == nil {
		items = []Task{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p := auth.PrincipalFromContext(r.Context())
	task, err := h.service.Get(r.Context(), p, id)
	if err != nil {
		h.respondServiceError(w, "get task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !h.decode(w, r, &req) {
		return
	}
	p := auth.PrincipalFromContext(r.Context())
	task, err := h.service.Create(r.Context(), p, req.Title, req.Description)
	if err != nil {
		h.respondServiceError(w, "create task", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req taskRequest
	if !h.decode(w, r, &req) {
		return
	}
	p := auth.PrincipalFromContext(r.Context())
	task, err := h.service.Update(r.Context(), p, id, req.Title, req.Description)
	if err != nil {
		h.respondServiceError(w, "update task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) patch(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req taskPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	p := auth.PrincipalFromContext(r.Context())
	task, err := h.service.Patch(r.Context(), p, id, req.Title, req.Description)
	if err != nil {
		h.respondServiceError(w, "patch task", err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p := auth.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), p, id); err != nil {
		h.respondServiceError(w, "delete task", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request payload")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request payload")
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound),
		errors.Is(err, shared.ErrForbidden),
		errors.Is(err, shared.ErrUnauthenticated):
	default:
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
