package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/cloudkeep/authd/config"
	"github.com/cloudkeep/authd/database"
	"github.com/cloudkeep/authd/openapi"
	"github.com/cloudkeep/authd/server"
	"github.com/cloudkeep/authd/services/account"
	"github.com/cloudkeep/authd/services/confirmation"
	"github.com/cloudkeep/authd/services/credentials"
	"github.com/cloudkeep/authd/services/devicetrust"
	"github.com/cloudkeep/authd/services/logging"
	"github.com/cloudkeep/authd/services/mail"
	"github.com/cloudkeep/authd/services/session"
	"github.com/cloudkeep/authd/services/tokens"
)

// App wires the configuration, database, services and HTTP server into
// a single fx application.
type App struct {
	fx     *fx.App
	logger *logging.Service
}

// New assembles the application. Pass a nil config to load it from the
// environment.
func New(cfg *config.Config) *App {
	a := &App{}

	a.fx = fx.New(
		fx.NopLogger,
		config.NewProvider(cfg),
		logging.Module,
		fx.Supply(database.WithModels(
			&account.Account{},
			&devicetrust.TrustRecord{},
			&confirmation.PendingConfirmation{},
		)),
		database.Module,
		credentials.Module,
		account.Module,
		devicetrust.Module,
		confirmation.Module,
		tokens.Module,
		mail.Module,
		session.Module,
		openapi.Module,
		server.NewProvider(),
		fx.Invoke(func(logger *logging.Service) {
			a.logger = logger
		}),
	)

	return a
}

func (a *App) Start(ctx context.Context) error {
	return a.fx.Start(ctx)
}

func (a *App) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.fx.Stop(ctx); err != nil {
		if a.logger != nil {
			a.logger.Errorw("failed to stop application gracefully", "error", err)
		} else {
			log.Printf("failed to stop application gracefully: %v", err)
		}
	}
}

// Run starts the application and blocks until SIGINT or SIGTERM.
func (a *App) Run() {
	if err := a.Start(context.Background()); err != nil {
		log.Fatalf("failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	if a.logger != nil {
		a.logger.Info("received shutdown signal, stopping gracefully")
	}

	a.Stop()
}
