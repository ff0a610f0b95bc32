package auth

import "net/http"

// WithPrincipal resolves the request principal once and stores it in the
// request context so handlers and authorization checks share the same
// resolution for the lifetime of the request.
func WithPrincipal(resolver *Resolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := ContextWithPrincipal(r.Context(), resolver.Resolve(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
