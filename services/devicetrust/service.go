package devicetrust

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cloudkeep/authd/services/fingerprint"
	"github.com/cloudkeep/authd/services/logging"
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

// FindByAccount returns the account's trust record, or nil when none
// exists yet. A missing record means "device unknown", which callers
// must treat differently from "device known but mismatched".
func (s *Service) FindByAccount(accountID string) (*TrustRecord, error) {
	var record TrustRecord
	err := s.db.Where("account_id = ?", accountID).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// Evaluate decides whether the incoming fingerprint and address are
// already trusted by record. When they are not, the returned evaluation
// carries the augmented lists; persisting them is the caller's job and
// happens only once trust is re-confirmed.
func (s *Service) Evaluate(record *TrustRecord, fp fingerprint.Fingerprint, address string) Evaluation {
	if record == nil {
		return Evaluation{
			Trusted:       false,
			RecordMissing: true,
		}
	}

	devices := make([]fingerprint.Fingerprint, len(record.Devices))
	copy(devices, record.Devices)
	addresses := make([]string, len(record.Addresses))
	copy(addresses, record.Addresses)

	hasDevice := false
	for _, known := range devices {
		if known.SameDevice(fp) {
			hasDevice = true
			break
		}
	}

	hasAddress := false
	for _, known := range addresses {
		if known == address {
			hasAddress = true
			break
		}
	}

	needsUpdate := !hasDevice || !hasAddress

	if !hasDevice {
		s.logger.Info("login from unknown device",
			zap.String("account_id", record.AccountID))
		devices = append(devices, fp)
	}
	if !hasAddress {
		s.logger.Info("login from unknown address",
			zap.String("account_id", record.AccountID),
			zap.String("address", address))
		addresses = append(addresses, address)
	}

	return Evaluation{
		Trusted:     !needsUpdate,
		NeedsUpdate: needsUpdate,
		Devices:     devices,
		Addresses:   addresses,
	}
}

// Upsert writes the given lists as the account's trust record, creating
// it when absent. Existing entries are never removed.
func (s *Service) Upsert(accountID string, devices []fingerprint.Fingerprint, addresses []string) (*TrustRecord, error) {
	record := TrustRecord{
		AccountID: accountID,
		Devices:   devices,
		Addresses: addresses,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"devices", "addresses", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		s.logger.Error("failed to upsert trust record",
			zap.Error(err),
			zap.String("account_id", accountID))
		return nil, err
	}

	return &record, nil
}
