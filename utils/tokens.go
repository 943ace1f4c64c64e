package utils

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const (
	accessTokenMaxAge  = 24 * time.Hour
	refreshTokenMaxAge = 365 * 24 * time.Hour
)

var ErrInvalidRefreshToken = errors.New("invalid or revoked refresh token")

type AccessToken struct {
	ID       uint   `json:"ID"`
	Role     string `json:"role"`
	Username string `json:"username"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshStore tracks which refresh tokens are still usable.
type RefreshStore interface {
	Save(ctx context.Context, token string, ttl time.Duration) error
	// Consume reports whether token was usable and makes it unusable.
	Consume(ctx context.Context, token string) (bool, error)
	Revoke(ctx context.Context, token string) error
}

// TokenIssuer signs access/refresh token pairs. Refresh tokens are single use.
type TokenIssuer struct {
	accessSigner    *jwt.Signer
	refreshSigner   *jwt.Signer
	refreshVerifier *jwt.Verifier
	store           RefreshStore
}

func NewTokenIssuer(accessSecret, refreshSecret string, store RefreshStore) *TokenIssuer {
	return &TokenIssuer{
		accessSigner:    jwt.NewSigner(jwt.HS256, []byte(accessSecret), accessTokenMaxAge),
		refreshSigner:   jwt.NewSigner(jwt.HS256, []byte(refreshSecret), refreshTokenMaxAge),
		refreshVerifier: jwt.NewVerifier(jwt.HS256, []byte(refreshSecret)),
		store:           store,
	}
}

func (i *TokenIssuer) CreateTokenPair(ctx context.Context, claims AccessToken) (*TokenPair, error) {
	accessToken, err := i.accessSigner.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	refreshClaims := jwt.Claims{
		ID:      uuid.NewString(),
		Subject: strconv.FormatUint(uint64(claims.ID), 10),
	}
	refreshToken, err := i.refreshSigner.Sign(refreshClaims)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := i.store.Save(ctx, string(refreshToken), refreshTokenMaxAge+5*time.Minute); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{AccessToken: string(accessToken), RefreshToken: string(refreshToken)}, nil
}

// ConsumeRefreshToken verifies token, burns it and returns the user id it was issued for.
func (i *TokenIssuer) ConsumeRefreshToken(ctx context.Context, token string) (uint, error) {
	verified, err := i.refreshVerifier.VerifyToken([]byte(token))
	if err != nil {
		return 0, ErrInvalidRefreshToken
	}

	ok, err := i.store.Consume(ctx, token)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrInvalidRefreshToken
	}

	userID, err := strconv.ParseUint(verified.StandardClaims.Subject, 10, 32)
	if err != nil {
		return 0, ErrInvalidRefreshToken
	}
	return uint(userID), nil
}

func (i *TokenIssuer) RevokeRefreshToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return i.store.Revoke(ctx, token)
}
