// Package token issues and verifies the HS256 access/refresh token pair used
// for API authentication. Tokens are stateless; a refresh re-issues the pair
// without any server-side session.
package token

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry, or
// claim checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the JWT claims carried by both token kinds.
type Claims struct {
	UserID  int64 `json:"uid"`
	IsStaff bool  `json:"staff"`
	jwt.RegisteredClaims
}

// Pair is an issued access/refresh token pair.
type Pair struct {
	Access  string
	Refresh string
}

// Issuer signs and verifies token pairs. Access and refresh tokens use
// separate secrets so a leaked access secret cannot mint refresh tokens.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer creates an Issuer with the given secrets and lifetimes.
func NewIssuer(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// Issue signs a fresh pair for the given user.
func (i *Issuer) Issue(userID int64, staff bool) (Pair, error) {
	access, err := i.sign(userID, staff, i.accessSecret, i.accessTTL)
	if err != nil {
		return Pair{}, errors.Wrap(err, "sign access token")
	}
	refresh, err := i.sign(userID, staff, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return Pair{}, errors.Wrap(err, "sign refresh token")
	}
	return Pair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (i *Issuer) VerifyAccess(raw string) (*Claims, error) {
	return verify(raw, i.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (i *Issuer) VerifyRefresh(raw string) (*Claims, error) {
	return verify(raw, i.refreshSecret)
}

func (i *Issuer) sign(userID int64, staff bool, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		IsStaff: staff,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func verify(raw string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
