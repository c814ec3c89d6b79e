package credentials

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cloudkeep/authd/config"
	"github.com/cloudkeep/authd/services/logging"
)

var (
	ErrPasswordHashingFailed = errors.New("failed to hash password")
	ErrInvalidCredentials    = errors.New("invalid credentials")
)

// Service hashes and verifies account passwords and enforces the
// structural rules on registration input.
type Service struct {
	config *config.PasswordConfig
	logger *logging.Service
}

func NewService(cfg *config.PasswordConfig, logger *logging.Service) *Service {
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		config: cfg,
		logger: logger,
	}
}

// ValidatePassword enforces the password policy: length between the
// configured bounds and no Cyrillic letters.
func (s *Service) ValidatePassword(password string) error {
	if len(password) < s.config.MinLength || len(password) > s.config.MaxLength {
		s.logger.Warn("password validation failed: length out of bounds",
			zap.Int("length", len(password)),
			zap.Int("min", s.config.MinLength),
			zap.Int("max", s.config.MaxLength))
		return fmt.Errorf("password must be between %d and %d characters", s.config.MinLength, s.config.MaxLength)
	}

	for _, r := range password {
		if unicode.Is(unicode.Cyrillic, r) {
			s.logger.Warn("password validation failed: cyrillic characters")
			return errors.New("password must not contain Cyrillic characters")
		}
	}

	return nil
}

// ValidEmail reports whether s is a plain, well-formed email address.
func (s *Service) ValidEmail(address string) bool {
	if address == "" || strings.ContainsAny(address, " \t") {
		return false
	}

	parsed, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}

	// reject display-name forms like "Name <a@b.com>"
	return parsed.Address == address
}

func (s *Service) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		return "", ErrPasswordHashingFailed
	}

	return string(hash), nil
}

func (s *Service) VerifyPassword(hashedPassword, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)); err != nil {
		s.logger.Warn("password verification failed")
		return ErrInvalidCredentials
	}
	return nil
}

func (s *Service) MustHashPassword(password string) string {
	hash, err := s.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return hash
}
