package session

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cloudkeep/authd/services/account"
	"github.com/cloudkeep/authd/services/confirmation"
	"github.com/cloudkeep/authd/services/credentials"
	"github.com/cloudkeep/authd/services/devicetrust"
	"github.com/cloudkeep/authd/services/fingerprint"
	"github.com/cloudkeep/authd/services/tokens"
	"github.com/cloudkeep/authd/testutils"
)

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
const firefoxUA = "Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0"

type fixture struct {
	svc           *Service
	accounts      *account.Service
	trust         *devicetrust.Service
	confirmations *confirmation.Service
	tokens        *tokens.Service
	db            *gorm.DB
}

func setup(t *testing.T) *fixture {
	t.Helper()

	cfg := testutils.GetTestConfig()
	db := testutils.SetupTestDB(t,
		&account.Account{},
		&devicetrust.TrustRecord{},
		&confirmation.PendingConfirmation{},
	)

	accounts := account.NewService(db, nil)
	creds := credentials.NewService(&cfg.Password, nil)
	trust := devicetrust.NewService(db, nil)
	confirmations := confirmation.NewService(db, &cfg.Confirmation, nil)
	tokenSvc := tokens.NewService(&cfg.JWT, nil)

	return &fixture{
		svc:           NewService(accounts, creds, trust, confirmations, tokenSvc, nil, nil),
		accounts:      accounts,
		trust:         trust,
		confirmations: confirmations,
		tokens:        tokenSvc,
		db:            db,
	}
}

func (f *fixture) register(t *testing.T) *account.Account {
	t.Helper()

	res := f.svc.Register("a@x.com", "Alex", "Stone", "Secret123")
	require.Equal(t, http.StatusCreated, res.Status, res.Message)

	acc, err := f.accounts.FindByEmail("a@x.com")
	require.NoError(t, err)
	return acc
}

func (f *fixture) confirmFirstDevice(t *testing.T, accID string, fp fingerprint.Fingerprint, addr string) {
	t.Helper()

	res := f.svc.ConfirmDevice(accID, "Secret123", fp, addr)
	require.Equal(t, http.StatusOK, res.Status, res.Message)
}

func TestRegister(t *testing.T) {
	f := setup(t)

	res := f.svc.Register("a@x.com", "Alex", "Stone", "Secret123")

	require.Equal(t, http.StatusCreated, res.Status)
	require.NotNil(t, res.Account)
	assert.Equal(t, "a@x.com", res.Account.Email)
	assert.Empty(t, res.Cookies, "registration issues no session")
}

func TestRegister_Rejections(t *testing.T) {
	f := setup(t)
	f.register(t)

	tests := []struct {
		name     string
		email    string
		password string
		status   int
	}{
		{"invalid email", "not-an-email", "Secret123", http.StatusBadRequest},
		{"short password", "b@x.com", "short", http.StatusBadRequest},
		{"cyrillic password", "b@x.com", "пароль123456", http.StatusBadRequest},
		{"duplicate email", "a@x.com", "Secret123", http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.svc.Register(tt.email, "Alex", "Stone", tt.password)
			assert.Equal(t, tt.status, res.Status)
		})
	}
}

func TestLogin_FirstLoginIsNeverGranted(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	res := f.svc.Login("a@x.com", "Secret123", fp, addr)

	require.Equal(t, http.StatusForbidden, res.Status)
	require.NotNil(t, res.Challenge)
	assert.Equal(t, ChallengeDeviceUnknown, res.Challenge.Type)
	assert.Equal(t, acc.ID, res.Challenge.AccountID)
	assert.Empty(t, res.Cookies)

	pending, err := f.confirmations.Require(acc.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), pending.Die, 5*time.Second)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := setup(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	res := f.svc.Login("missing@x.com", "Secret123", fp, addr)

	assert.Equal(t, http.StatusNotFound, res.Status)
	assert.Nil(t, res.Challenge)
}

func TestLogin_WrongPasswordHasNoSideEffects(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	res := f.svc.Login("a@x.com", "Wrong1234", fp, addr)

	assert.Equal(t, http.StatusForbidden, res.Status)
	assert.Nil(t, res.Challenge)

	_, err := f.confirmations.Require(acc.ID)
	assert.ErrorIs(t, err, confirmation.ErrNotFound, "no pending record created")

	record, err := f.trust.FindByAccount(acc.ID)
	require.NoError(t, err)
	assert.Nil(t, record, "no trust record created")
}

func TestLogin_ValidationRejections(t *testing.T) {
	f := setup(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	res := f.svc.Login("bad-email", "Secret123", fp, addr)
	assert.Equal(t, http.StatusBadRequest, res.Status)

	res = f.svc.Login("a@x.com", "short", fp, addr)
	assert.Equal(t, http.StatusBadRequest, res.Status)
}

func TestConfirmDevice_FullFlow(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	// first login: unknown device challenge
	res := f.svc.Login("a@x.com", "Secret123", fp, addr)
	require.Equal(t, http.StatusForbidden, res.Status)
	require.NotNil(t, res.Challenge)

	// confirm with the correct password: granted
	res = f.svc.ConfirmDevice(acc.ID, "Secret123", fp, addr)
	require.Equal(t, http.StatusOK, res.Status, res.Message)
	require.NotNil(t, res.Account)
	assert.Len(t, res.Cookies, 2)

	record, err := f.trust.FindByAccount(acc.ID)
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Len(t, record.Devices, 1)
	assert.Equal(t, []string{addr}, record.Addresses)

	// the pending record is consumed
	_, err = f.confirmations.Require(acc.ID)
	assert.ErrorIs(t, err, confirmation.ErrNotFound)

	// second confirm attempt fails with not found
	res = f.svc.ConfirmDevice(acc.ID, "Secret123", fp, addr)
	assert.Equal(t, http.StatusNotFound, res.Status)

	// second login from the same device and address: granted directly
	res = f.svc.Login("a@x.com", "Secret123", fp, addr)
	require.Equal(t, http.StatusOK, res.Status)
	assert.Nil(t, res.Challenge)
	assert.Len(t, res.Cookies, 2)

	record, err = f.trust.FindByAccount(acc.ID)
	require.NoError(t, err)
	assert.Len(t, record.Devices, 1, "re-login leaves list lengths unchanged")
	assert.Len(t, record.Addresses, 1)
}

func TestConfirmDevice_WrongPassword(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	f.svc.Login("a@x.com", "Secret123", fp, addr)

	res := f.svc.ConfirmDevice(acc.ID, "Wrong1234", fp, addr)

	assert.Equal(t, http.StatusForbidden, res.Status)

	// the pending record survives a failed confirmation
	_, err := f.confirmations.Require(acc.ID)
	assert.NoError(t, err)
}

func TestConfirmDevice_NoPendingRecord(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	res := f.svc.ConfirmDevice(acc.ID, "Secret123", fp, addr)

	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestConfirmDevice_ExpiredWindow(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	f.svc.Login("a@x.com", "Secret123", fp, addr)

	require.NoError(t, f.db.Model(&confirmation.PendingConfirmation{}).
		Where("account_id = ?", acc.ID).
		Update("die", time.Now().Add(-time.Second)).Error)

	res := f.svc.ConfirmDevice(acc.ID, "Secret123", fp, addr)

	require.Equal(t, http.StatusForbidden, res.Status)
	require.NotNil(t, res.Challenge)
	assert.Equal(t, ChallengeRepeatConfirm, res.Challenge.Type)

	// a repeated login renews the expired record in place
	res = f.svc.Login("a@x.com", "Secret123", fp, addr)
	require.Equal(t, http.StatusForbidden, res.Status)

	pending, err := f.confirmations.Require(acc.ID)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), pending.Die, 5*time.Second)
}

func TestLogin_NewAddressOnKnownDevice(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	f.svc.Login("a@x.com", "Secret123", fp, addr)
	f.confirmFirstDevice(t, acc.ID, fp, addr)

	// same browser, different network
	res := f.svc.Login("a@x.com", "Secret123", fp, "5.6.7.8")

	require.Equal(t, http.StatusForbidden, res.Status)
	require.NotNil(t, res.Challenge)
	assert.Equal(t, ChallengeConfirmPassword, res.Challenge.Type)

	res = f.svc.ConfirmDevice(acc.ID, "Secret123", fp, "5.6.7.8")
	require.Equal(t, http.StatusOK, res.Status)

	record, err := f.trust.FindByAccount(acc.ID)
	require.NoError(t, err)
	assert.Len(t, record.Devices, 1)
	assert.Equal(t, []string{addr, "5.6.7.8"}, record.Addresses)
}

func TestLogin_NewBrowserOnKnownAddress(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	f.svc.Login("a@x.com", "Secret123", fp, addr)
	f.confirmFirstDevice(t, acc.ID, fp, addr)

	otherFP, _ := fingerprint.Extract(firefoxUA, "1.2.3.4")
	res := f.svc.Login("a@x.com", "Secret123", otherFP, addr)

	require.Equal(t, http.StatusForbidden, res.Status)
	require.NotNil(t, res.Challenge)
	assert.Equal(t, ChallengeConfirmPassword, res.Challenge.Type)
}

func TestCheck_SlidingRenewal(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	f.svc.Login("a@x.com", "Secret123", fp, addr)
	f.confirmFirstDevice(t, acc.ID, fp, addr)

	granted := f.svc.Login("a@x.com", "Secret123", fp, addr)
	require.Equal(t, http.StatusOK, granted.Status)
	refresh := granted.Cookies[1].Value

	// missing access token: silent reissue
	res := f.svc.Check("", refresh)
	require.Equal(t, http.StatusOK, res.Status)
	require.NotNil(t, res.Account)
	assert.Equal(t, acc.ID, res.Account.ID)
	require.Len(t, res.Cookies, 2)
	assert.NotEqual(t, refresh, res.Cookies[1].Value)

	stored, err := f.accounts.FindByID(acc.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, res.Cookies[1].Value, *stored.RefreshToken)
}

func TestCheck_ValidAccessTokenPassesThrough(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	f.svc.Login("a@x.com", "Secret123", fp, addr)
	f.confirmFirstDevice(t, acc.ID, fp, addr)

	granted := f.svc.Login("a@x.com", "Secret123", fp, addr)
	require.Equal(t, http.StatusOK, granted.Status)

	res := f.svc.Check(granted.Cookies[0].Value, granted.Cookies[1].Value)

	require.Equal(t, http.StatusOK, res.Status)
	require.NotNil(t, res.Account)
	assert.Empty(t, res.Cookies, "no reissue when the access token is still valid")
}

func TestCheck_Unauthenticated(t *testing.T) {
	f := setup(t)

	res := f.svc.Check("", "")
	assert.Equal(t, http.StatusUnauthorized, res.Status)

	res = f.svc.Check("", "garbage-token")
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestCheck_ExpiredRefreshToken(t *testing.T) {
	f := setup(t)
	f.register(t)

	cfg := testutils.GetTestConfig()
	cfg.JWT.RefreshExpiry = -time.Minute
	expiredIssuer := tokens.NewService(&cfg.JWT, nil)

	acc, err := f.accounts.FindByEmail("a@x.com")
	require.NoError(t, err)
	expired, err := expiredIssuer.IssueRefreshToken(acc.ID, acc.Email)
	require.NoError(t, err)

	res := f.svc.Check("", expired)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestCheck_AccessTokenCannotActAsRefresh(t *testing.T) {
	f := setup(t)
	acc := f.register(t)

	access, err := f.tokens.IssueAccessToken(acc.ID, acc.Email)
	require.NoError(t, err)

	res := f.svc.Check("", access)
	assert.Equal(t, http.StatusUnauthorized, res.Status)
}

func TestCheck_DeletedAccount(t *testing.T) {
	f := setup(t)
	acc := f.register(t)

	refresh, err := f.tokens.IssueRefreshToken(acc.ID, acc.Email)
	require.NoError(t, err)

	require.NoError(t, f.db.Delete(&account.Account{}, "id = ?", acc.ID).Error)

	res := f.svc.Check("", refresh)
	assert.Equal(t, http.StatusNotFound, res.Status)
}

func TestLogout(t *testing.T) {
	f := setup(t)
	acc := f.register(t)
	fp, addr := fingerprint.Extract(chromeUA, "1.2.3.4")

	f.svc.Login("a@x.com", "Secret123", fp, addr)
	f.confirmFirstDevice(t, acc.ID, fp, addr)

	granted := f.svc.Login("a@x.com", "Secret123", fp, addr)
	require.Equal(t, http.StatusOK, granted.Status)

	res := f.svc.Logout(granted.Cookies[1].Value)

	require.Equal(t, http.StatusOK, res.Status)
	assert.True(t, res.ClearCookies)

	stored, err := f.accounts.FindByID(acc.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AccessToken)
	assert.Nil(t, stored.RefreshToken)
}

func TestLogout_NoRenewal(t *testing.T) {
	f := setup(t)
	acc := f.register(t)

	refresh, err := f.tokens.IssueRefreshToken(acc.ID, acc.Email)
	require.NoError(t, err)

	res := f.svc.Logout(refresh)

	require.Equal(t, http.StatusOK, res.Status)
	assert.Empty(t, res.Cookies, "logout never reissues tokens")
	assert.True(t, res.ClearCookies)
}

func TestLogout_InvalidTokenStillClearsCookies(t *testing.T) {
	f := setup(t)

	res := f.svc.Logout("")
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.True(t, res.ClearCookies)

	res = f.svc.Logout("garbage")
	assert.Equal(t, http.StatusUnauthorized, res.Status)
	assert.True(t, res.ClearCookies)
}
