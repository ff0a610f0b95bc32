package rbac

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse-io/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Handler exposes administrative CRUD for roles, resources and access rules.
type Handler struct {
	logger   *slog.Logger
	repo     Repository
	authz    Middleware
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, repo Repository, authz Middleware) *Handler {
	return &Handler{logger: logger, repo: repo, authz: authz, validate: validator.New()}
}

// MountRoutes registers the admin routes. The whole subtree requires the
// admin role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.authz.RequireAdmin)

	r.Route("/roles", func(r chi.Router) {
		r.Get("/", h.listRoles)
		r.Post("/", h.createRole)
		r.Delete("/{id}", h.deleteRole)
	})
	r.Route("/resources", func(r chi.Router) {
		r.Get("/", h.listResources)
		r.Post("/", h.createResource)
		r.Delete("/{id}", h.deleteResource)
	})
	r.Route("/rules", func(r chi.Router) {
		r.Get("/", h.listRules)
		r.Post("/", h.createRule)
		r.Put("/{id}", h.updateRule)
		r.Delete("/{id}", h.deleteRule)
	})
}

type roleRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type resourceRequest struct {
	Code string `json:"code" validate:"required,max=100"`
	Name string `json:"name" validate:"required,max=255"`
}

type ruleRequest struct {
	RoleID     int64 `json:"role_id" validate:"required,gt=0"`
	ResourceID int64 `json:"resource_id" validate:"required,gt=0"`
	Read       bool  `json:"can_read"`
	ReadAll    bool  `json:"can_read_all"`
	Create     bool  `json:"can_create"`
	Update     bool  `json:"can_update"`
	UpdateAll  bool  `json:"can_update_all"`
	Delete     bool  `json:"can_delete"`
	DeleteAll  bool  `json:"can_delete_all"`
}

type ruleGrantsRequest struct {
	Read      bool `json:"can_read"`
	ReadAll   bool `json:"can_read_all"`
	Create    bool `json:"can_create"`
	Update    bool `json:"can_update"`
	UpdateAll bool `json:"can_update_all"`
	Delete    bool `json:"can_delete"`
	DeleteAll bool `json:"can_delete_all"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.repo.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roles)
}

func (h *Handler) createRole(w http.ResponseWriter, r *http.Request) {
	var req roleRequest
	if !h.decode(w, r, &req) {
		return
	}
	role, err := h.repo.CreateRole(r.Context(), req.Name)
	if err != nil {
		h.respondWriteError(w, "create role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) deleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteRole(r.Context(), id); err != nil {
		h.respondWriteError(w, "delete role", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listResources(w http.ResponseWriter, r *http.Request) {
	resources, err := h.repo.ListResources(r.Context())
	if err != nil {
		h.logger.Error("list resources", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, resources)
}

func (h *Handler) createResource(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if !h.decode(w, r, &req) {
		return
	}
	res, err := h.repo.CreateResource(r.Context(), req.Code, req.Name)
	if err != nil {
		h.respondWriteError(w, "create resource", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, res)
}

func (h *Handler) deleteResource(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteResource(r.Context(), id); err != nil {
		h.respondWriteError(w, "delete resource", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	rules, err := h.repo.ListRules(r.Context())
	if err != nil {
		h.logger.Error("list rules", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rules)
}

func (h *Handler) createRule(w http.ResponseWriter, r *http.Request) {
	var req ruleRequest
	if !h.decode(w, r, &req) {
		return
	}
	rule, err := h.repo.CreateRule(r.Context(), Rule{
		RoleID:     req.RoleID,
		ResourceID: req.ResourceID,
		Read:       req.Read,
		ReadAll:    req.ReadAll,
		Create:     req.Create,
		Update:     req.Update,
		UpdateAll:  req.UpdateAll,
		Delete:     req.Delete,
		DeleteAll:  req.DeleteAll,
	})
	if err != nil {
		h.respondWriteError(w, "create rule", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rule)
}

func (h *Handler) updateRule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req ruleGrantsRequest
	if !h.decode(w, r, &req) {
		return
	}
	rule, err := h.repo.UpdateRule(r.Context(), Rule{
		ID:        id,
		Read:      req.Read,
		ReadAll:   req.ReadAll,
		Create:    req.Create,
		Update:    req.Update,
		UpdateAll: req.UpdateAll,
		Delete:    req.Delete,
		DeleteAll: req.DeleteAll,
	})
	if err != nil {
		h.respondWriteError(w, "update rule", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rule)
}

func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.repo.DeleteRule(r.Context(), id); err != nil {
		h.respondWriteError(w, "delete rule", err)
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

func (h *Handler) respondWriteError(w http.ResponseWriter, op string, err error) {
	if !errors.Is(err, shared.ErrNotFound) && !errors.Is(err, shared.ErrDuplicate) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
