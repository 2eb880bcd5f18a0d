// Package auth issues and verifies bearer tokens, hashes passwords and guards
// protected routes.
//
// AUTHENTICATION FLOW:
//  1. Client registers or logs in with email + password (or GitHub sign-in).
//  2. Server answers with a signed JWT carrying the user's id and username.
//  3. Client sends it back on every protected call as
//     "Authorization: Bearer <token>".
//  4. RequireAuth verifies the signature and puts the Identity in the request
//     context, where handlers read it with IdentityFromContext.
//
// The token is self-contained: verifying it needs only the secret, no DB lookup.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Ly-yang/wechat-editor/internal/apperror"
)

const issuer = "wechat-editor"

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID   int64
	Username string
}

// TokenService signs and verifies HS256 tokens.
//
// ttl == 0 issues tokens without an "exp" claim; they stay valid until the
// secret is rotated. A positive ttl sets "exp" and makes it mandatory during
// verification, so a token minted without expiry is rejected once a TTL is
// configured.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenService creates a TokenService. The secret must be at least
// 16 characters; generate one with `openssl rand -hex 32`.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl < 0 {
		return nil, errors.New("auth: token TTL must not be negative")
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

// claims is the JWT payload. "id" and "username" are kept as top-level claims
// so browser code can read them without a second request; "sub" mirrors the id
// as the standard subject claim.
type claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue signs a token for the given identity.
func (s *TokenService) Issue(id Identity) (string, error) {
	now := s.now()

	c := claims{
		UserID:   id.UserID,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  strconv.FormatInt(id.UserID, 10),
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if s.ttl > 0 {
		c.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}
	return signed, nil
}

// Verify parses and checks a token string.
//
// Errors are *apperror.AppError values: ErrUnauthenticated for an empty token,
// ErrInvalidToken for everything else (bad signature, "alg" other than HS256,
// wrong issuer, expired, or a payload without a user id).
func (s *TokenService) Verify(tokenStr string) (Identity, error) {
	if tokenStr == "" {
		return Identity{}, apperror.Unauthenticated("authentication token required")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	}
	if s.ttl > 0 {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	var c claims
	token, err := jwt.ParseWithClaims(tokenStr, &c, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, apperror.InvalidToken("token expired")
		}
		return Identity{}, apperror.InvalidToken("invalid token")
	}
	if !token.Valid || c.UserID <= 0 {
		return Identity{}, apperror.InvalidToken("invalid token")
	}
	if c.Subject != strconv.FormatInt(c.UserID, 10) {
		return Identity{}, apperror.InvalidToken("invalid token")
	}

	return Identity{UserID: c.UserID, Username: c.Username}, nil
}
