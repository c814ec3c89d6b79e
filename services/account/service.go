package account

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cloudkeep/authd/services/logging"
)

var (
	ErrNotFound   = errors.New("account not found")
	ErrEmailTaken = errors.New("email address already registered")
)

type Service struct {
	db     *gorm.DB
	logger *logging.Service
}

func NewService(db *gorm.DB, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		logger: logger,
	}
}

func (s *Service) Create(email, name, surname, passwordHash string) (*Account, error) {
	existing, err := s.FindByEmail(email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	acc := Account{
		Email:        email,
		Name:         name,
		Surname:      surname,
		PasswordHash: passwordHash,
	}

	if err := s.db.Create(&acc).Error; err != nil {
		s.logger.Error("failed to create account",
			zap.Error(err),
			zap.String("email", email))
		return nil, err
	}

	s.logger.Info("account registered",
		zap.String("account_id", acc.ID),
		zap.String("email", acc.Email))
	return &acc, nil
}

func (s *Service) FindByEmail(email string) (*Account, error) {
	var acc Account
	err := s.db.Where("email = ?", email).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (s *Service) FindByID(id string) (*Account, error) {
	var acc Account
	err := s.db.Where("id = ?", id).First(&acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// SaveSession mirrors a freshly issued token pair onto the account and
// records the login moment. The previously stored pair is simply
// overwritten; old tokens stay cryptographically valid until expiry.
func (s *Service) SaveSession(accountID, accessToken, refreshToken string, stamp LastLoginStamp) error {
	err := s.db.Model(&Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"access_token":       accessToken,
			"refresh_token":      refreshToken,
			"last_login":         stamp.Timestamp,
			"last_login_date":    stamp.Date,
			"last_login_pattern": stamp.Pattern,
			"updated_at":         time.Now(),
		}).Error
	if err != nil {
		s.logger.Error("failed to persist session tokens",
			zap.Error(err),
			zap.String("account_id", accountID))
		return err
	}
	return nil
}

// SaveTokens overwrites only the mirrored token pair, used on silent
// session refresh where the login moment is left untouched.
func (s *Service) SaveTokens(accountID, accessToken, refreshToken string) error {
	return s.db.Model(&Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"access_token":  accessToken,
			"refresh_token": refreshToken,
			"updated_at":    time.Now(),
		}).Error
}

// ClearTokens drops the mirrored token pair on logout.
func (s *Service) ClearTokens(accountID string) error {
	return s.db.Model(&Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"access_token":  nil,
			"refresh_token": nil,
			"updated_at":    time.Now(),
		}).Error
}
