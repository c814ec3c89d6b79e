package tokens

import (
	"go.uber.org/fx"

	"github.com/cloudkeep/authd/config"
	"github.com/cloudkeep/authd/services/logging"
)

func ProvideTokenService(cfg *config.Config, logger *logging.Service) *Service {
	return NewService(&cfg.JWT, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideTokenService),
)
