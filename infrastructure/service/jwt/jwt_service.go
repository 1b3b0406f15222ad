package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/juju/clock"

	"github.com/complyance/governance/application/port/outbound"
)

const tokenTypeAccess = "access"

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
	ErrMissingSecret = errors.New("jwt secret is empty")
)

// actorClaims identifies who performs an operation. It grants nothing.
type actorClaims struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

func NewJWTService(secret string, ttl time.Duration, clk clock.Clock) (*JWTService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &JWTService{
		secret: []byte(secret),
		ttl:    ttl,
		clock:  clk,
	}, nil
}

var _ outbound.TokenService = (*JWTService)(nil)

func (s *JWTService) GenerateAccessToken(claims outbound.TokenClaims) (string, error) {
	now := s.clock.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, actorClaims{
		Name: claims.Name,
		Type: tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*outbound.TokenClaims, error) {
	claims := &actorClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.Type != tokenTypeAccess || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &outbound.TokenClaims{
		Subject: claims.Subject,
		Name:    claims.Name,
	}, nil
}
