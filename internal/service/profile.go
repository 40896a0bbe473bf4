package service

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/msomdec/limur-users/internal/domain"
)

// ProfileTTL is how long a profile token stays valid.
const ProfileTTL = 365 * 24 * time.Hour

// ProfileService issues and validates signed profile tokens. A profile
// scopes one browser's persisted collections; it carries no identity.
type ProfileService struct {
	secret []byte
	now    func() time.Time
}

// NewProfileService creates a ProfileService signing with secret.
func NewProfileService(secret string) *ProfileService {
	return &ProfileService{secret: []byte(secret), now: time.Now}
}

// Issue creates a new profile and returns its ID and signed token.
func (s *ProfileService) Issue() (id, token string, err error) {
	id = uuid.NewString()
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ProfileTTL)),
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", "", fmt.Errorf("sign profile token: %w", err)
	}
	return id, token, nil
}

// Validate returns the profile ID carried by token, or
// domain.ErrUnauthorized when the token is not acceptable.
func (s *ProfileService) Validate(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", domain.ErrUnauthorized
	}
	return claims.Subject, nil
}
