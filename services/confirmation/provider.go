package confirmation

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/cloudkeep/authd/config"
	"github.com/cloudkeep/authd/services/logging"
)

func ProvideConfirmationService(db *gorm.DB, cfg *config.Config, logger *logging.Service) *Service {
	return NewService(db, &cfg.Confirmation, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideConfirmationService),
)
