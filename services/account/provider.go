package account

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/cloudkeep/authd/services/logging"
)

func ProvideAccountService(db *gorm.DB, logger *logging.Service) *Service {
	return NewService(db, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideAccountService),
)
