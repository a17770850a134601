package identity

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/ridemyway/ridemyway/domain"
)

// Claims is what an identity token carries.
type Claims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies identity tokens with HS256.
type TokenIssuer struct {
	signingMethod jwt.SigningMethod
	key           []byte
	expiry        time.Duration
	now           func() time.Time
}

func NewTokenIssuer(secret string, expiry time.Duration) *TokenIssuer {
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenIssuer{
		signingMethod: jwt.SigningMethodHS256,
		key:           []byte(secret),
		expiry:        expiry,
		now:           time.Now,
	}
}

// Expiry is how long an issued token stays valid.
func (t *TokenIssuer) Expiry() time.Duration {
	return t.expiry
}

func (t *TokenIssuer) Issue(p domain.Principal) (string, time.Time, error) {
	now := t.now()
	expiresAt := now.Add(t.expiry)

	claims := Claims{
		Role: p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(uint64(p.ID), 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(t.signingMethod, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (t *TokenIssuer) Validate(tokenString string) (domain.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != t.signingMethod.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.key, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Principal{}, fmt.Errorf("%w: invalid token", domain.ErrUnauthenticated)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || !claims.Role.Valid() {
		return domain.Principal{}, fmt.Errorf("%w: malformed claims", domain.ErrUnauthenticated)
	}

	return domain.Principal{ID: uint(id), Role: claims.Role}, nil
}
