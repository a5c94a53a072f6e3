package service

import (
	"context"
	"errors"

	"github.com/wayplanhq/wayplan-backend/internal/domain"
	"github.com/wayplanhq/wayplan-backend/internal/util"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService is the edge of the external identity provider: it only
// validates bearer tokens issued elsewhere and yields the actor for trip
// ownership checks. No accounts live in this service.
type AuthService struct {
	jwt *util.JWTManager
}

func NewAuthService(jwt *util.JWTManager) *AuthService {
	return &AuthService{jwt: jwt}
}

func (s *AuthService) Authenticate(_ context.Context, token string) (*domain.User, error) {
	claims, err := s.jwt.Parse(token)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return &domain.User{ID: claims.UserID, Email: claims.Email}, nil
}
