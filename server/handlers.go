package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cloudkeep/authd/middleware/authtoken"
	"github.com/cloudkeep/authd/services/account"
	"github.com/cloudkeep/authd/services/fingerprint"
	"github.com/cloudkeep/authd/services/session"
	"github.com/cloudkeep/authd/services/tokens"
)

// Handlers binds the transport to the session orchestrator. They only
// move payloads and cookies; all policy lives in the services.
type Handlers struct {
	sessions *session.Service
	accounts *account.Service
}

func NewHandlers(sessions *session.Service, accounts *account.Service) *Handlers {
	return &Handlers{
		sessions: sessions,
		accounts: accounts,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmDeviceRequest struct {
	AccountID string `json:"account_id"`
	Password  string `json:"password"`
}

func (h *Handlers) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
	}

	res := h.sessions.Register(req.Email, req.Name, req.Surname, req.Password)
	return writeResult(c, res)
}

func (h *Handlers) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
	}

	fp, addr := fingerprint.Extract(c.Request().UserAgent(), c.RealIP())

	res := h.sessions.Login(req.Email, req.Password, fp, addr)
	return writeResult(c, res)
}

func (h *Handlers) ConfirmDevice(c echo.Context) error {
	var req confirmDeviceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "invalid request payload"})
	}

	fp, addr := fingerprint.Extract(c.Request().UserAgent(), c.RealIP())

	res := h.sessions.ConfirmDevice(req.AccountID, req.Password, fp, addr)
	return writeResult(c, res)
}

func (h *Handlers) CheckSession(c echo.Context) error {
	res := h.sessions.Check(
		cookieValue(c, tokens.AccessCookieName),
		cookieValue(c, tokens.RefreshCookieName),
	)
	return writeResult(c, res)
}

func (h *Handlers) Logout(c echo.Context) error {
	res := h.sessions.Logout(cookieValue(c, tokens.RefreshCookieName))
	return writeResult(c, res)
}

// Me returns the profile of the authenticated account. Guarded by the
// access-token middleware.
func (h *Handlers) Me(c echo.Context) error {
	acc, err := h.accounts.FindByID(authtoken.GetAccountID(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "account not found")
	}

	return c.JSON(http.StatusOK, acc.Profile())
}

func cookieValue(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func writeResult(c echo.Context, res *session.Result) error {
	for _, cookie := range res.Cookies {
		c.SetCookie(cookie)
	}
	if res.ClearCookies {
		for _, cookie := range tokens.ClearCookies() {
			c.SetCookie(cookie)
		}
	}
	return c.JSON(res.Status, res)
}
