package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse-io/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Handler wires HTTP endpoints for registration, login and profile flows.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountAuthRoutes registers authentication routes.
func (h *Handler) MountAuthRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
}

// MountMeRoutes registers the current-profile routes.
func (h *Handler) MountMeRoutes(r chi.Router) {
	r.Get("/", h.showMe)
	r.Patch("/", h.updateMe)
	r.Delete("/", h.deactivateMe)
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,max=255"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FullName *string `json:"full_name" validate:"omitempty,min=1,max=255"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        *Account  `json:"user"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	acct, err := h.service.Register(r.Context(), req.Email, req.FullName, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrDuplicate) {
			h.logger.Error("register account", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, acct)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	acct, token, expiresAt, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("login", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
		User:        acct,
	})
}

// handleLogout exists for API symmetry: tokens are stateless, so the server
// holds nothing to invalidate and the client simply discards its token.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"detail": "logged out"})
}

func (h *Handler) showMe(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p.IsAnonymous() {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	acct := p.Account()
	httpx.JSON(w, http.StatusOK, &acct)
}

func (h *Handler) updateMe(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p.IsAnonymous() {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}

	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid request payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validationDetail(err))
		return
	}

	acct := p.Account()
	fullName := acct.FullName
	email := acct.Email
	if req.FullName != nil {
		fullName = *req.FullName
	}
	if req.Email != nil {
		email = *req.Email
	}

	updated, err := h.service.UpdateProfile(r.Context(), acct.ID, fullName, email)
	if err != nil {
		if !errors.Is(err, shared.ErrDuplicate) && !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("update profile", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deactivateMe(w http.ResponseWriter, r *http.Request) {
	p := PrincipalFromContext(r.Context())
	if p.IsAnonymous() {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	if err := h.service.Deactivate(r.Context(), p.AccountID()); err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			h.logger.Error("deactivate account", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validationDetail(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		return "invalid fields: " + strings.Join(fields, ", ")
	}
	return "invalid request payload"
}
