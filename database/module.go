package database

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/cloudkeep/authd/config"
	"github.com/cloudkeep/authd/services/logging"
)

var Module = fx.Options(
	fx.Provide(ProvideDatabaseFx),
)

func ProvideDatabaseFx(cfg *config.Config, modelsOpt *ModelsOption, logger *logging.Service) (*gorm.DB, error) {
	return ProvideDatabase(cfg.Database, modelsOpt, logger)
}
