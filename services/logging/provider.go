package logging

import (
	"github.com/cloudkeep/authd/config"
	"go.uber.org/fx"
)

func ProvideLoggingService(cfg *config.Config) (*Service, error) {
	return NewService(cfg.Log)
}

var Module = fx.Options(
	fx.Provide(ProvideLoggingService),
)
