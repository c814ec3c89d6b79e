package mail

import (
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/cloudkeep/authd/config"
	"github.com/cloudkeep/authd/services/fingerprint"
	"github.com/cloudkeep/authd/services/logging"
)

// Service sends security notifications over SMTP. A nil *Service is a
// valid no-op sender, used when mail is disabled.
type Service struct {
	config *config.MailConfig
	client *mail.Client
	logger *logging.Service
}

func NewService(cfg *config.MailConfig, logger *logging.Service) (*Service, error) {
	if !cfg.Enabled {
		logger.Info("mail notifications disabled")
		return nil, nil
	}

	if cfg.FromAddress == "" {
		return nil, fmt.Errorf("MAIL_FROM_ADDRESS is required when mail is enabled")
	}

	clientOpts := []mail.Option{
		mail.WithPort(cfg.Port),
	}

	switch cfg.Encryption {
	case "ssl":
		clientOpts = append(clientOpts, mail.WithSSL())
	case "none":
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.NoTLS))
	default:
		clientOpts = append(clientOpts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}

	if cfg.Username != "" {
		clientOpts = append(clientOpts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username))
	}
	if cfg.Password != "" {
		clientOpts = append(clientOpts, mail.WithPassword(cfg.Password))
	}

	client, err := mail.NewClient(cfg.Host, clientOpts...)
	if err != nil {
		logger.Error("failed to create mail client",
			zap.Error(err),
			zap.String("host", cfg.Host))
		return nil, fmt.Errorf("failed to create mail client: %w", err)
	}

	logger.Info("mail service initialized",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port))

	return &Service{
		config: cfg,
		client: client,
		logger: logger,
	}, nil
}

// NotifyUnknownDevice tells the account owner that a login was blocked
// pending confirmation. Send failures are logged and swallowed; the
// login flow must not depend on SMTP availability.
func (s *Service) NotifyUnknownDevice(to string, fp fingerprint.Fingerprint, address string) {
	if s == nil || s.client == nil {
		return
	}

	body := fmt.Sprintf(
		"A sign-in to your account from an unrecognized device or network was blocked.\n\n"+
			"Browser: %s\nOperating system: %s\nIP address: %s\n\n"+
			"If this was you, confirm your password to finish signing in. "+
			"If not, consider changing your password.",
		describe(fp.Browser.Name, fp.Browser.Version),
		describe(fp.OS.Name, fp.OS.Version),
		address,
	)

	msg := mail.NewMsg()

	from := s.config.FromAddress
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	if err := msg.From(from); err != nil {
		s.logger.Error("failed to set mail FROM address", zap.Error(err))
		return
	}
	if err := msg.To(to); err != nil {
		s.logger.Error("failed to set mail TO address", zap.Error(err))
		return
	}

	msg.Subject("New sign-in attempt blocked")
	msg.SetBodyString(mail.TypeTextPlain, body)

	start := time.Now()
	if err := s.client.DialAndSend(msg); err != nil {
		s.logger.Error("failed to send unknown-device notification",
			zap.Error(err),
			zap.Duration("attempt_duration", time.Since(start)))
		return
	}

	s.logger.Info("unknown-device notification sent",
		zap.Duration("send_duration", time.Since(start)))
}

func describe(name, version *string) string {
	switch {
	case name == nil:
		return "Unknown"
	case version == nil:
		return *name
	default:
		return *name + " " + *version
	}
}
