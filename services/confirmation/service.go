package confirmation

import (
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/cloudkeep/authd/config"
	"github.com/cloudkeep/authd/services/logging"
)

var (
	ErrNotFound = errors.New("no pending confirmation for account")
	ErrExpired  = errors.New("confirmation window elapsed")
)

type Service struct {
	db     *gorm.DB
	config *config.ConfirmationConfig
	logger *logging.Service
}

func NewService(db *gorm.DB, cfg *config.ConfirmationConfig, logger *logging.Service) *Service {
	return &Service{
		db:     db,
		config: cfg,
		logger: logger,
	}
}

// OpenOrRenew ensures a live pending confirmation exists for the
// account. A missing record is created with the configured TTL; an
// existing record is extended in place only when its deadline has
// already passed, so repeated untrusted attempts within the window are
// idempotent.
func (s *Service) OpenOrRenew(accountID string) error {
	now := time.Now()

	var pending PendingConfirmation
	err := s.db.Where("account_id = ?", accountID).First(&pending).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		pending = PendingConfirmation{
			AccountID: accountID,
			Die:       now.Add(s.config.TTL),
		}
		if err := s.db.Create(&pending).Error; err != nil {
			s.logger.Error("failed to create pending confirmation",
				zap.Error(err),
				zap.String("account_id", accountID))
			return err
		}

		s.logger.Info("pending confirmation opened",
			zap.String("account_id", accountID),
			zap.Time("die", pending.Die))
		return nil
	}

	if pending.Expired(now) {
		newDie := now.Add(s.config.TTL)
		if err := s.db.Model(&pending).Update("die", newDie).Error; err != nil {
			return err
		}
		s.logger.Info("pending confirmation renewed",
			zap.String("account_id", accountID),
			zap.Time("die", newDie))
	}

	return nil
}

// Require returns the account's live pending confirmation. It reports
// ErrNotFound when none exists and ErrExpired when the window has
// elapsed; an expired record stays in place so the login flow can renew
// it.
func (s *Service) Require(accountID string) (*PendingConfirmation, error) {
	var pending PendingConfirmation
	err := s.db.Where("account_id = ?", accountID).First(&pending).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if pending.Expired(time.Now()) {
		return nil, ErrExpired
	}

	return &pending, nil
}

// Consume deletes the account's pending confirmation once the challenge
// has been satisfied.
func (s *Service) Consume(accountID string) error {
	result := s.db.Where("account_id = ?", accountID).Delete(&PendingConfirmation{})
	if result.Error != nil {
		return result.Error
	}

	s.logger.Info("pending confirmation consumed",
		zap.String("account_id", accountID))
	return nil
}
