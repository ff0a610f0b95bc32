package rbac

import (
	"log/slog"
	"net/http"

	"github.com/gatehouse-io/gatehouse/internal/auth"
	"github.com/gatehouse-io/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Middleware wires authorization helpers for HTTP handlers.
type Middleware struct {
	Enforcer *Enforcer
	Logger   *slog.Logger
}

// RequireCollection applies the collection-level gate for a resource,
// deriving the action from the request method. Anonymous principals get
// 401, denied principals 403, store failures 500. Object-level checks stay
// with the handlers, which know the target record.
func (m Middleware) RequireCollection(resource string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := auth.PrincipalFromContext(r.Context())
			if p.IsAnonymous() {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			action, ok := ActionFromMethod(r.Method)
			if !ok {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			allowed, err := m.Enforcer.AuthorizeCollection(r.Context(), p, resource, action)
			if err != nil {
				if m.Logger != nil {
					m.Logger.Error("collection authorization", slog.String("resource", resource), slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if !allowed {
				httpx.RespondError(w, shared.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin restricts a subtree to authenticated principals holding the
// admin role. Rule administration itself cannot depend on the rule table.
func (m Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := auth.PrincipalFromContext(r.Context())
		if p.IsAnonymous() {
			httpx.RespondError(w, shared.ErrUnauthenticated)
			return
		}
		if p.Account().RoleName != AdminRole {
			httpx.RespondError(w, shared.ErrForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
