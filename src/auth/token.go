package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID     int64  `json:"user_id"`
	Username   string `json:"username"`
	SuperAdmin bool   `json:"super_admin"`
	jwt.RegisteredClaims
}

// Blocklist tracks revoked token ids.
type Blocklist interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Issuer signs and verifies HS256 session tokens.
type Issuer struct {
	secret    []byte
	ttl       time.Duration
	blocklist Blocklist
	now       func() time.Time
}

func NewIssuer(secret string, ttl time.Duration, blocklist Blocklist) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: ttl, blocklist: blocklist, now: time.Now}
}

func (i *Issuer) Issue(userID int64, username string, superAdmin bool) (string, error) {
	now := i.now()
	claims := Claims{
		UserID:     userID,
		Username:   username,
		SuperAdmin: superAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies the signature, expiry and revocation state of a token.
func (i *Issuer) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signing method")
		}
		return i.secret, nil
	}, jwt.WithTimeFunc(i.now), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if i.blocklist != nil {
		revoked, err := i.blocklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}
	return claims, nil
}

// Revoke blocks the token until it expires.
func (i *Issuer) Revoke(ctx context.Context, claims *Claims) error {
	if i.blocklist == nil || claims.ExpiresAt == nil {
		return nil
	}
	return i.blocklist.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
