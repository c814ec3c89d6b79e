package session

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/cloudkeep/authd/services/account"
	"github.com/cloudkeep/authd/services/confirmation"
	"github.com/cloudkeep/authd/services/credentials"
	"github.com/cloudkeep/authd/services/devicetrust"
	"github.com/cloudkeep/authd/services/fingerprint"
	"github.com/cloudkeep/authd/services/logging"
	"github.com/cloudkeep/authd/services/mail"
	"github.com/cloudkeep/authd/services/tokens"
)

// Service ties credential verification, device trust and token issuance
// together. Every operation returns a terminal Result; unexpected store
// or signing failures surface as a generic 500 with the cause logged,
// never leaked.
type Service struct {
	accounts      *account.Service
	credentials   *credentials.Service
	trust         *devicetrust.Service
	confirmations *confirmation.Service
	tokens        *tokens.Service
	mail          *mail.Service
	logger        *logging.Service
}

func NewService(
	accounts *account.Service,
	creds *credentials.Service,
	trust *devicetrust.Service,
	confirmations *confirmation.Service,
	tokenSvc *tokens.Service,
	mailSvc *mail.Service,
	logger *logging.Service,
) *Service {
	return &Service{
		accounts:      accounts,
		credentials:   creds,
		trust:         trust,
		confirmations: confirmations,
		tokens:        tokenSvc,
		mail:          mailSvc,
		logger:        logger,
	}
}

// Register creates a new account. No session is issued; the caller
// logs in afterwards, which will raise the first device challenge.
func (s *Service) Register(email, name, surname, password string) *Result {
	if !s.credentials.ValidEmail(email) {
		return &Result{Status: http.StatusBadRequest, Message: "invalid email address"}
	}

	if err := s.credentials.ValidatePassword(password); err != nil {
		return &Result{Status: http.StatusBadRequest, Message: err.Error()}
	}

	hash, err := s.credentials.HashPassword(password)
	if err != nil {
		return s.internalError("hash password", err)
	}

	acc, err := s.accounts.Create(email, name, surname, hash)
	if err != nil {
		if errors.Is(err, account.ErrEmailTaken) {
			return &Result{Status: http.StatusConflict, Message: "an account with this email already exists"}
		}
		return s.internalError("create account", err)
	}

	return &Result{
		Status:  http.StatusCreated,
		Message: "registration complete",
		Account: acc.Profile(),
	}
}

// Login verifies credentials and grants a session only when the request
// comes from an already-trusted device and address. Untrusted requests
// open (or renew) a pending confirmation and answer with a challenge
// instead; no trust state is persisted on this path.
func (s *Service) Login(email, password string, fp fingerprint.Fingerprint, address string) *Result {
	if !s.credentials.ValidEmail(email) {
		return &Result{Status: http.StatusBadRequest, Message: "invalid email address"}
	}

	if err := s.credentials.ValidatePassword(password); err != nil {
		return &Result{Status: http.StatusBadRequest, Message: err.Error()}
	}

	acc, err := s.accounts.FindByEmail(email)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return &Result{Status: http.StatusNotFound, Message: "account not found"}
		}
		return s.internalError("find account", err)
	}

	if err := s.credentials.VerifyPassword(acc.PasswordHash, password); err != nil {
		return &Result{Status: http.StatusForbidden, Message: "email or password is incorrect"}
	}

	record, err := s.trust.FindByAccount(acc.ID)
	if err != nil {
		return s.internalError("load trust record", err)
	}

	eval := s.trust.Evaluate(record, fp, address)

	if eval.RecordMissing {
		return s.challenge(acc, fp, address, ChallengeDeviceUnknown,
			"you are signing in from a device we do not recognize, please confirm your password")
	}

	if eval.NeedsUpdate {
		return s.challenge(acc, fp, address, ChallengeConfirmPassword,
			"you are signing in from an unknown device or address, please confirm your password")
	}

	return s.grant(acc)
}

// ConfirmDevice satisfies a pending confirmation: it re-verifies the
// password, persists the augmented trust lists and then grants a
// session exactly like a trusted login.
func (s *Service) ConfirmDevice(accountID, password string, fp fingerprint.Fingerprint, address string) *Result {
	acc, err := s.accounts.FindByID(accountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return &Result{Status: http.StatusNotFound, Message: "account not found"}
		}
		return s.internalError("find account", err)
	}

	if err := s.credentials.VerifyPassword(acc.PasswordHash, password); err != nil {
		return &Result{Status: http.StatusForbidden, Message: "email or password is incorrect"}
	}

	if _, err := s.confirmations.Require(acc.ID); err != nil {
		switch {
		case errors.Is(err, confirmation.ErrNotFound):
			return &Result{Status: http.StatusNotFound, Message: "no pending confirmation for this account"}
		case errors.Is(err, confirmation.ErrExpired):
			return &Result{
				Status:  http.StatusForbidden,
				Message: "confirmation window elapsed, please sign in again",
				Challenge: &Challenge{
					AccountID: acc.ID,
					Type:      ChallengeRepeatConfirm,
				},
			}
		default:
			return s.internalError("load pending confirmation", err)
		}
	}

	record, err := s.trust.FindByAccount(acc.ID)
	if err != nil {
		return s.internalError("load trust record", err)
	}

	eval := s.trust.Evaluate(record, fp, address)

	devices := eval.Devices
	addresses := eval.Addresses
	if eval.RecordMissing {
		devices = []fingerprint.Fingerprint{fp}
		addresses = []string{address}
	}

	if _, err := s.trust.Upsert(acc.ID, devices, addresses); err != nil {
		return s.internalError("persist trust record", err)
	}

	if err := s.confirmations.Consume(acc.ID); err != nil {
		return s.internalError("consume pending confirmation", err)
	}

	s.logger.Info("device confirmed",
		zap.String("account_id", acc.ID),
		zap.String("address", address))

	return s.grant(acc)
}

// Check validates a presented cookie pair. A valid refresh token with a
// missing or expired access token triggers a silent reissue of both
// tokens (sliding renewal); otherwise the session passes through
// unchanged.
func (s *Service) Check(accessToken, refreshToken string) *Result {
	acc, result := s.resolveRefresh(refreshToken)
	if result != nil {
		return result
	}

	if accessToken != "" {
		if _, err := s.tokens.ValidateKind(accessToken, tokens.KindAccess); err == nil {
			return &Result{
				Status:  http.StatusOK,
				Account: acc.Profile(),
			}
		}
	}

	pair, err := s.tokens.IssuePair(acc.ID, acc.Email)
	if err != nil {
		return s.internalError("issue token pair", err)
	}

	if err := s.accounts.SaveTokens(acc.ID, pair.AccessToken, pair.RefreshToken); err != nil {
		return s.internalError("persist token pair", err)
	}

	s.logger.Info("session tokens renewed", zap.String("account_id", acc.ID))

	return &Result{
		Status:  http.StatusOK,
		Message: "session tokens renewed",
		Account: acc.Profile(),
		Cookies: s.tokens.PairCookies(pair),
	}
}

// Logout validates the refresh token without renewal, clears the
// mirrored token pair when a session was found and always instructs the
// caller to erase both cookies.
func (s *Service) Logout(refreshToken string) *Result {
	acc, result := s.resolveRefresh(refreshToken)
	if result != nil {
		result.ClearCookies = true
		return result
	}

	if err := s.accounts.ClearTokens(acc.ID); err != nil {
		res := s.internalError("clear session tokens", err)
		res.ClearCookies = true
		return res
	}

	s.logger.Info("session closed", zap.String("account_id", acc.ID))

	return &Result{
		Status:       http.StatusOK,
		Message:      "signed out",
		ClearCookies: true,
	}
}

// resolveRefresh maps a presented refresh token to its account. A nil
// account with a non-nil result means the token did not resolve.
func (s *Service) resolveRefresh(refreshToken string) (*account.Account, *Result) {
	if refreshToken == "" {
		return nil, &Result{Status: http.StatusUnauthorized, Message: "not authenticated"}
	}

	claims, err := s.tokens.ValidateKind(refreshToken, tokens.KindRefresh)
	if err != nil {
		return nil, &Result{Status: http.StatusUnauthorized, Message: "not authenticated"}
	}

	acc, err := s.accounts.FindByID(claims.AccountID)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return nil, &Result{Status: http.StatusNotFound, Message: "account not found"}
		}
		return nil, s.internalError("find account", err)
	}

	// A presented refresh token older than the stored latest pair is
	// still cryptographically valid; it is detected here but not
	// rejected.
	if acc.RefreshToken != nil && *acc.RefreshToken != refreshToken {
		s.logger.Warn("superseded refresh token presented",
			zap.String("account_id", acc.ID))
	}

	return acc, nil
}

func (s *Service) challenge(acc *account.Account, fp fingerprint.Fingerprint, address, challengeType, message string) *Result {
	if err := s.confirmations.OpenOrRenew(acc.ID); err != nil {
		return s.internalError("open pending confirmation", err)
	}

	s.mail.NotifyUnknownDevice(acc.Email, fp, address)

	return &Result{
		Status:  http.StatusForbidden,
		Message: message,
		Challenge: &Challenge{
			AccountID: acc.ID,
			Type:      challengeType,
		},
	}
}

func (s *Service) grant(acc *account.Account) *Result {
	pair, err := s.tokens.IssuePair(acc.ID, acc.Email)
	if err != nil {
		return s.internalError("issue token pair", err)
	}

	stamp := account.FormatLastLogin(time.Now(), account.DefaultLastLoginPattern)
	if err := s.accounts.SaveSession(acc.ID, pair.AccessToken, pair.RefreshToken, stamp); err != nil {
		return s.internalError("persist session", err)
	}

	acc.LastLoginDate = stamp.Date
	acc.LastLoginPattern = stamp.Pattern

	s.logger.Info("session granted", zap.String("account_id", acc.ID))

	return &Result{
		Status:  http.StatusOK,
		Account: acc.Profile(),
		Cookies: s.tokens.PairCookies(pair),
	}
}

func (s *Service) internalError(op string, err error) *Result {
	s.logger.Error("session operation failed",
		zap.String("op", op),
		zap.Error(err))
	return &Result{
		Status:  http.StatusInternalServerError,
		Message: "an unexpected error occurred",
	}
}
