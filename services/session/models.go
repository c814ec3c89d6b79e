package session

import (
	"net/http"

	"github.com/cloudkeep/authd/services/account"
)

const (
	ChallengeDeviceUnknown   = "device-unknown"
	ChallengeConfirmPassword = "confirm-password"
	ChallengeRepeatConfirm   = "repeat-confirm-password"
)

// Challenge asks the caller to re-confirm the account password before a
// session can be granted from the current device.
type Challenge struct {
	AccountID string `json:"account_id"`
	Type      string `json:"type"`
}

// Result is the outcome of a session operation, tagged with an
// HTTP-style status for the transport layer. Cookies carry freshly
// issued tokens; ClearCookies instructs the transport to erase both
// token cookies.
type Result struct {
	Status       int              `json:"-"`
	Message      string           `json:"message,omitempty"`
	Account      *account.Profile `json:"account,omitempty"`
	Challenge    *Challenge       `json:"challenge,omitempty"`
	Cookies      []*http.Cookie   `json:"-"`
	ClearCookies bool             `json:"-"`
}
