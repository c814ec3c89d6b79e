package session

import (
	"go.uber.org/fx"

	"github.com/cloudkeep/authd/services/account"
	"github.com/cloudkeep/authd/services/confirmation"
	"github.com/cloudkeep/authd/services/credentials"
	"github.com/cloudkeep/authd/services/devicetrust"
	"github.com/cloudkeep/authd/services/logging"
	"github.com/cloudkeep/authd/services/mail"
	"github.com/cloudkeep/authd/services/tokens"
)

func ProvideSessionService(
	accounts *account.Service,
	creds *credentials.Service,
	trust *devicetrust.Service,
	confirmations *confirmation.Service,
	tokenSvc *tokens.Service,
	mailSvc *mail.Service,
	logger *logging.Service,
) *Service {
	return NewService(accounts, creds, trust, confirmations, tokenSvc, mailSvc, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideSessionService),
)
