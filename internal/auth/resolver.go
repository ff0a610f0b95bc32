package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Directory is the narrow view of the user store the resolver needs.
type Directory interface {
	FindActiveByID(ctx context.Context, id int64) (*Account, error)
}

// Resolver maps the bearer credential on an inbound request to a Principal.
type Resolver struct {
	codec     *TokenCodec
	directory Directory
	logger    *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(codec *TokenCodec, directory Directory, logger *slog.Logger) *Resolver {
	return &Resolver{codec: codec, directory: directory, logger: logger}
}

// Resolve extracts and validates the Authorization header. Every failure
// path (missing or repeated header, wrong scheme, malformed structure,
// invalid or expired token, absent or deactivated account, unreachable
// directory) resolves to Anonymous; resolution never aborts the request
// pipeline. Calling Resolve twice on the same input yields the same result.
func (r *Resolver) Resolve(req *http.Request) Principal {
	if len(req.Header.Values("Authorization")) > 1 {
		return Anonymous()
	}
	header := strings.TrimSpace(req.Header.Get("Authorization"))
	if header == "" {
		return Anonymous()
	}
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return Anonymous()
	}

	accountID, err := r.codec.Verify(parts[1])
	if err != nil {
		return Anonymous()
	}

	acct, err := r.directory.FindActiveByID(req.Context(), accountID)
	if err != nil {
		// A store failure is treated the same as an absent account: the
		// request proceeds anonymously rather than with a guessed identity.
		if !errors.Is(err, shared.ErrNotFound) && r.logger != nil {
			r.logger.Warn("principal lookup failed", slog.Any("error", err))
		}
		return Anonymous()
	}
	return Authenticated(*acct)
}
