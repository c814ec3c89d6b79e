package credentials

import (
	"go.uber.org/fx"

	"github.com/cloudkeep/authd/config"
	"github.com/cloudkeep/authd/services/logging"
)

func ProvideCredentialsService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(&cfg.Password, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideCredentialsService),
)
