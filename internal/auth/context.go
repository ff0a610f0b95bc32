package auth

import "context"

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context. A context that
// never passed through the resolver middleware yields Anonymous.
func PrincipalFromContext(ctx context.Context) Principal {
	p, _ := ctx.Value(principalContextKey{}).(Principal)
	return p
}
