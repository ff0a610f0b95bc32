package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is the only error surfaced for a credential that fails
// verification, whatever the underlying cause.
var ErrInvalidToken = errors.New("invalid token")

// accessClaims is the wire shape of a minted access token.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// TokenCodec mints and verifies signed access tokens using a single
// process-wide HMAC secret. Tokens are stateless; validity is fully
// determined by signature and expiry at verification time.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec constructs a codec for the given secret and token lifetime.
func NewTokenCodec(secret string, ttl time.Duration) *TokenCodec {
	return &TokenCodec{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Mint issues a signed token for the given account ID and returns the token
// together with its expiry.
func (c *TokenCodec) Mint(accountID int64) (string, time.Time, error) {
	now := c.now().UTC()
	exp := now.Add(c.ttl)
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID: accountID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify checks signature and expiry and returns the embedded account ID.
// Any failure (bad signature, expired, malformed payload, missing claim)
// returns ErrInvalidToken.
func (c *TokenCodec) Verify(raw string) (int64, error) {
	var claims accessClaims
	_, err := jwt.ParseWithClaims(raw, &claims,
		func(t *jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if claims.UserID <= 0 {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}
