package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cloudkeep/authd/config"
	"github.com/cloudkeep/authd/services/logging"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrMalformedToken   = errors.New("malformed token")
	ErrInvalidSignature = errors.New("invalid token signature")
	ErrWrongKind        = errors.New("unexpected token kind")
)

const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims is the self-contained claim set carried by both token kinds.
type Claims struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Kind      string `json:"kind"`
	jwt.RegisteredClaims
}

// Pair is a freshly issued access/refresh token pair. Issuing is always
// all-or-nothing; there is no partial-refresh mode.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	config *config.JWTConfig
	logger *logging.Service
}

func NewService(cfg *config.JWTConfig, logger *logging.Service) *Service {
	return &Service{
		config: cfg,
		logger: logger,
	}
}

func (s *Service) AccessExpirySeconds() int {
	return int(s.config.AccessExpiry.Seconds())
}

func (s *Service) RefreshExpirySeconds() int {
	return int(s.config.RefreshExpiry.Seconds())
}

func (s *Service) IssueAccessToken(accountID, email string) (string, error) {
	return s.issue(accountID, email, KindAccess, s.config.AccessExpiry)
}

func (s *Service) IssueRefreshToken(accountID, email string) (string, error) {
	return s.issue(accountID, email, KindRefresh, s.config.RefreshExpiry)
}

// IssuePair mints a fresh access/refresh pair bound to the account
// identity.
func (s *Service) IssuePair(accountID, email string) (*Pair, error) {
	access, err := s.IssueAccessToken(accountID, email)
	if err != nil {
		return nil, err
	}

	refresh, err := s.IssueRefreshToken(accountID, email)
	if err != nil {
		return nil, err
	}

	return &Pair{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

func (s *Service) issue(accountID, email, kind string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		AccountID: accountID,
		Email:     email,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.config.Issuer,
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		s.logger.Error("failed to sign token",
			zap.Error(err),
			zap.String("kind", kind))
		return "", fmt.Errorf("failed to sign %s token: %w", kind, err)
	}

	return tokenString, nil
}

// Validate parses and verifies a token, returning its claims. Failures
// map onto ErrExpiredToken, ErrMalformedToken and ErrInvalidSignature.
func (s *Service) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != "HS256" {
			return nil, fmt.Errorf("unexpected algorithm: expected HS256, got %s", token.Method.Alg())
		}
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid algorithm family: %v", token.Header["alg"])
		}
		return []byte(s.config.SecretKey), nil
	})

	if err != nil {
		s.logger.Warn("token validation failed", zap.Error(err))

		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, ErrMalformedToken
		case errors.Is(err, jwt.ErrSignatureInvalid):
			return nil, ErrInvalidSignature
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ValidateKind validates the token and additionally checks that it is
// of the expected kind, so a refresh token cannot stand in for an
// access token or vice versa.
func (s *Service) ValidateKind(tokenString, kind string) (*Claims, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Kind != kind {
		s.logger.Warn("token kind mismatch",
			zap.String("expected", kind),
			zap.String("got", claims.Kind))
		return nil, ErrWrongKind
	}

	return claims, nil
}
